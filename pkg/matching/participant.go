// Package matching turns survey rows into participants and resolves which
// pairs of participants asked to see each other again.
//
// The pipeline has three stages, each usable on its own:
//
//   - RuleSet.Classify partitions raw column headers into categories
//     (name-finder, contact, identity, interest columns) using configured
//     patterns, and extracts a canonical field name from every matched header.
//   - Builder.Build turns one row into a Participant, normalizing phone numbers
//     and reporting problems as Diagnostics instead of failing.
//   - Resolve fills every participant's MutualFriends with the names whose
//     interest was reciprocated.
//
// Run wires the three together for a whole table.
package matching

import (
	"encoding/json"
	"fmt"
	"sort"

	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
)

// NameSet is a set of canonical participant names.
type NameSet map[string]struct{}

// NewNameSet returns a set holding names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name into the set.
func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s NameSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// MarshalYAML encodes the set as a sorted sequence.
func (s NameSet) MarshalYAML() (interface{}, error) {
	return s.Sorted(), nil
}

// Contact is one way to reach a participant.
type Contact struct {
	Method string `json:"method" yaml:"method"`
	Handle string `json:"handle" yaml:"handle"`
}

// Participant is one respondent whose name matched a name-finder column.
type Participant struct {
	// Name is the canonical (normalized) name and the join key for matching.
	Name string `json:"name" yaml:"name"`

	// ContactMethods maps a method such as "email" or "phone" to its handle.
	ContactMethods map[string]string `json:"contact_methods" yaml:"contact_methods"`

	// PotentialFriends holds the names this participant said yes to.
	PotentialFriends NameSet `json:"potential_friends" yaml:"potential_friends"`

	// MutualFriends holds the potential friends who said yes back.
	MutualFriends NameSet `json:"mutual_friends" yaml:"mutual_friends"`

	// Identities holds self-described identity tags.
	Identities NameSet `json:"identities,omitempty" yaml:"identities,omitempty"`

	// DesiredRelationship is why the participant came to the event.
	DesiredRelationship string `json:"desired_relationship,omitempty" yaml:"desired_relationship,omitempty"`

	// Row is the 1-based data row the participant was built from.
	Row int `json:"row" yaml:"row"`

	contactOrder []string
}

// NewParticipant returns an empty participant for an already-normalized name.
func NewParticipant(name string) *Participant {
	return &Participant{
		Name:             name,
		ContactMethods:   make(map[string]string),
		PotentialFriends: make(NameSet),
		MutualFriends:    make(NameSet),
		Identities:       make(NameSet),
	}
}

// AddContactMethod records a handle, keeping first-seen method order.
func (p *Participant) AddContactMethod(method, handle string) {
	if _, ok := p.ContactMethods[method]; !ok {
		p.contactOrder = append(p.contactOrder, method)
	}
	p.ContactMethods[method] = handle
}

// Contacts returns contact methods in the order their columns appear.
func (p *Participant) Contacts() []Contact {
	out := make([]Contact, 0, len(p.contactOrder))
	for _, m := range p.contactOrder {
		out = append(out, Contact{Method: m, Handle: p.ContactMethods[m]})
	}
	return out
}

// AddPotentialFriend records interest in name. Self-interest is ignored.
func (p *Participant) AddPotentialFriend(name string) {
	if name == "" || name == p.Name {
		return
	}
	p.PotentialFriends.Add(name)
}

// AddIdentities unions tags into the participant's identities.
func (p *Participant) AddIdentities(tags ...string) {
	for _, t := range tags {
		if t != "" {
			p.Identities.Add(t)
		}
	}
}

// Participants is the run's participant collection keyed by canonical name.
type Participants map[string]*Participant

// Add inserts p unless a participant of the same name already exists, in
// which case the collection is unchanged and the error wraps ErrDuplicate.
func (ps Participants) Add(p *Participant) error {
	if _, ok := ps[p.Name]; ok {
		return fmt.Errorf("%w: %s", mmerrors.ErrDuplicate, p.Name)
	}
	ps[p.Name] = p
	return nil
}

// Names returns the participant names in lexical order.
func (ps Participants) Names() []string {
	out := make([]string, 0, len(ps))
	for n := range ps {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Unmatched returns, in lexical order, the participants with no mutual friend.
func (ps Participants) Unmatched() []string {
	var out []string
	for _, n := range ps.Names() {
		if len(ps[n].MutualFriends) == 0 {
			out = append(out, n)
		}
	}
	return out
}
