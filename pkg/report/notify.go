// Package report renders the outcome of a matching run: the per-participant
// notification file, structured JSON/YAML exports and the closing summary.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/otherjamesbrown/matchmaker/pkg/matching"
)

// Messages are the operator-supplied notification texts.
type Messages struct {
	MatchedPre  string
	MatchedPost string
	NotMatched  string
}

// Notifier writes one notification per participant.
type Notifier struct {
	messages Messages
	title    cases.Caser
}

// NewNotifier returns a Notifier using msgs.
func NewNotifier(msgs Messages) *Notifier {
	return &Notifier{
		messages: msgs,
		title:    cases.Title(language.English),
	}
}

// Title renders a canonical name for display.
func (n *Notifier) Title(name string) string {
	return n.title.String(name)
}

// Write renders every participant in name order. Each block opens with a
// SEND TO header addressed to the participant's email, followed either by
// the matched messages around one section per mutual friend, or by the
// not-matched message.
func (n *Notifier) Write(w io.Writer, ps matching.Participants) error {
	bw := bufio.NewWriter(w)
	for _, name := range ps.Names() {
		n.writeOne(bw, ps, ps[name])
	}
	return bw.Flush()
}

func (n *Notifier) writeOne(w *bufio.Writer, ps matching.Participants, p *matching.Participant) {
	fmt.Fprintf(w, "***SEND TO: \t%s\t***\n\n\n", SendTo(p))

	if len(p.MutualFriends) == 0 {
		w.WriteString(n.messages.NotMatched)
		if !strings.HasSuffix(n.messages.NotMatched, "\n") {
			w.WriteString("\n")
		}
		return
	}

	fmt.Fprintf(w, "%s\n", n.messages.MatchedPre)
	for _, name := range p.MutualFriends.Sorted() {
		friend, ok := ps[name]
		if !ok {
			continue
		}
		display := n.Title(friend.Name)
		fmt.Fprintf(w, "\n\n%s\n---\n", display)
		if len(friend.Identities) > 0 {
			fmt.Fprintf(w, "Identities: %s\n", strings.Join(friend.Identities.Sorted(), ", "))
		}
		if friend.DesiredRelationship != "" {
			fmt.Fprintf(w, "%s came to the event because they are interested in %s.\n---\n",
				display, strings.ToLower(strings.TrimSpace(friend.DesiredRelationship)))
		}
		for _, c := range friend.Contacts() {
			fmt.Fprintf(w, "%s: %s\n", n.Title(c.Method), c.Handle)
		}
	}
	fmt.Fprintf(w, "%s\n", n.messages.MatchedPost)
}

// SendTo returns the address a participant's notification goes to: the email
// contact when present, otherwise the first contact handle, otherwise the
// participant's name.
func SendTo(p *matching.Participant) string {
	if email := p.ContactMethods["email"]; email != "" {
		return email
	}
	if contacts := p.Contacts(); len(contacts) > 0 {
		return contacts[0].Handle
	}
	return p.Name
}
