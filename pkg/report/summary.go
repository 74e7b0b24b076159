package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/otherjamesbrown/matchmaker/pkg/matching"
)

// ANSI styles used by the summary.
const (
	ansiReset   = "\033[0m"
	ansiBold    = "\033[1m"
	ansiYellow  = "\033[33m"
	ansiGreen   = "\033[32m"
	ansiMagenta = "\033[35m"
)

// Summary is the closing report of a run.
type Summary struct {
	EventNames     int
	Responses      int
	Participants   int
	MutualPairs    int
	NonRespondents []string
	Unmatched      []string
}

// NewSummary collects the summary of res with names in display form.
func (n *Notifier) NewSummary(res *matching.Result) *Summary {
	s := &Summary{
		EventNames:   len(res.EventNames),
		Responses:    res.Responses,
		Participants: len(res.Participants),
		MutualPairs:  res.MutualPairs,
	}
	for _, name := range res.NonRespondents {
		s.NonRespondents = append(s.NonRespondents, n.Title(name))
	}
	for _, name := range res.Unmatched {
		s.Unmatched = append(s.Unmatched, n.Title(name))
	}
	return s
}

// CountsAgree reports whether every event name produced exactly one response.
func (s *Summary) CountsAgree() bool {
	return s.EventNames == s.Responses
}

// Write prints the summary. Styling is omitted when noColor is set.
func (s *Summary) Write(w io.Writer, noColor bool) {
	style := func(code, text string) string {
		if noColor {
			return text
		}
		return code + text + ansiReset
	}
	info := style(ansiBold, "INFO:")

	if len(s.NonRespondents) > 0 {
		fmt.Fprintf(w, "%s The following people did not take the survey:\n", info)
		writeList(w, s.NonRespondents, func(name string) string { return style(ansiMagenta, name) })
	}

	if n := len(s.Unmatched); n > 0 {
		who := "people were"
		if n == 1 {
			who = "person was"
		}
		fmt.Fprintf(w, "%s %s %s not matched:\n", info, style(ansiYellow, fmt.Sprint(n)), who)
		writeList(w, s.Unmatched, func(name string) string { return name })
		return
	}
	if s.Participants > 0 {
		fmt.Fprintf(w, "%s %s\n", info, style(ansiGreen, "Congrats! Everyone had at least one match!"))
	}
}

func writeList(w io.Writer, items []string, render func(string) string) {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("   - ")
		b.WriteString(render(it))
		b.WriteString("\n")
	}
	io.WriteString(w, b.String())
}
