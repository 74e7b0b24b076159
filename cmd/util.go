package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/matchmaker/config"
	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
	"github.com/otherjamesbrown/matchmaker/pkg/logging"
	"github.com/otherjamesbrown/matchmaker/pkg/matching"
	"github.com/otherjamesbrown/matchmaker/pkg/observability"
	"github.com/otherjamesbrown/matchmaker/pkg/report"
)

// matchingOptions maps the configuration onto pipeline options.
func matchingOptions(cfg *config.Config, tracer *observability.Tracer) matching.Options {
	opts := matching.Options{
		NameColumn:     cfg.NameColumnHeader,
		InterestMarker: cfg.InterestMarker,
		Duplicates:     matching.DuplicatePolicy(cfg.Duplicates),
		Tracer:         tracer,
		Patterns:       map[matching.Category]string{},
	}
	if cfg.Regex != nil {
		opts.Patterns[matching.CategoryFindName] = cfg.Regex.FindName
		opts.Patterns[matching.CategoryContactMethods] = cfg.Regex.ContactMethods
		opts.Patterns[matching.CategoryIdentityFields] = cfg.Regex.IdentityFields
		opts.Patterns[matching.CategoryInterests] = cfg.Regex.Interests
		opts.PhonePattern = cfg.Regex.PhoneNumber
		opts.IdentityDelim = cfg.Regex.IdentityDelim
	}
	return opts
}

// messagesOf returns the notification texts of cfg.
func messagesOf(cfg *config.Config) report.Messages {
	var msgs report.Messages
	if cfg.Messages == nil {
		return msgs
	}
	msgs.NotMatched = cfg.Messages.NotMatchedText()
	if cfg.Messages.Matched != nil {
		msgs.MatchedPre = cfg.Messages.Matched.PreText()
		msgs.MatchedPost = cfg.Messages.Matched.PostText()
	}
	return msgs
}

// logClassification reports how the headers were classified.
func logClassification(log logging.Logger, c *matching.Classification) {
	if c == nil {
		return
	}
	for _, cat := range c.Categories() {
		log.Debug("Classified columns",
			logging.F("category", string(cat)),
			logging.F("fields", c.Fields(cat)))
	}
	if len(c.Unclassified) > 0 {
		log.Debug("Unclassified columns", logging.F("headers", c.Unclassified))
	}
}

// logCounts compares the guest list with the number of responses.
func logCounts(log logging.Logger, res *matching.Result) {
	msg := fmt.Sprintf("%d event participants and %d survey respondents", len(res.EventNames), res.Responses)
	fields := []logging.Field{
		logging.F("event_names", len(res.EventNames)),
		logging.F("responses", res.Responses),
		logging.F("participants", len(res.Participants)),
	}
	if len(res.EventNames) != res.Responses {
		log.Warn(msg, fields...)
		return
	}
	log.Info(msg, fields...)
}

// logDiagnostics writes one warning per row diagnostic.
func logDiagnostics(log logging.Logger, diags *matching.Diagnostics) {
	if diags == nil {
		return
	}
	for d := range diags.All() {
		fields := []logging.Field{
			logging.F("kind", string(d.Kind)),
			logging.F("row", d.Row),
		}
		if d.Name != "" {
			fields = append(fields, logging.F("name", d.Name))
		}
		if d.Field != "" {
			fields = append(fields, logging.F("field", d.Field))
		}
		if len(d.Suggestions) > 0 {
			fields = append(fields, logging.F("suggestions", d.Suggestions))
		}
		log.Warn(d.Message(), fields...)
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// errorType names an error for traces: its config error code when it has one.
func errorType(err error) string {
	if code := mmerrors.CodeOf(err); code != "" {
		return string(code)
	}
	return "internal"
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML writes v as YAML.
func outputYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}
