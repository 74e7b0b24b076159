package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
	"github.com/otherjamesbrown/matchmaker/pkg/matching"
)

// Format selects how a result is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Export is the structured form of a run.
type Export struct {
	RunID          string                  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Source         string                  `json:"source" yaml:"source"`
	Participants   []*matching.Participant `json:"participants" yaml:"participants"`
	Pairs          []matching.Pair         `json:"mutual_pairs" yaml:"mutual_pairs"`
	NonRespondents []string                `json:"non_respondents" yaml:"non_respondents"`
	Unmatched      []string                `json:"unmatched" yaml:"unmatched"`
	Diagnostics    []matching.Diagnostic   `json:"diagnostics" yaml:"diagnostics"`
}

// NewExport builds the structured form of res, with participants in name order.
func NewExport(runID, source string, res *matching.Result) *Export {
	e := &Export{
		RunID:          runID,
		Source:         source,
		Participants:   make([]*matching.Participant, 0, len(res.Participants)),
		Pairs:          res.Participants.Pairs(),
		NonRespondents: res.NonRespondents,
		Unmatched:      res.Unmatched,
	}
	for _, name := range res.Participants.Names() {
		e.Participants = append(e.Participants, res.Participants[name])
	}
	if res.Diagnostics != nil {
		e.Diagnostics = res.Diagnostics.Slice()
	}
	if e.Pairs == nil {
		e.Pairs = []matching.Pair{}
	}
	if e.NonRespondents == nil {
		e.NonRespondents = []string{}
	}
	if e.Unmatched == nil {
		e.Unmatched = []string{}
	}
	return e
}

// Write encodes e in the given format.
func (e *Export) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(e)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(e); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: export format %q", mmerrors.ErrUnsupportedFormat, format)
	}
}

// ParseFormat validates a format name. An empty name means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: output format %q (want text, json or yaml)", mmerrors.ErrUnsupportedFormat, s)
	}
}
