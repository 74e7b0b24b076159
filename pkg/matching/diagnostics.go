package matching

import (
	"fmt"
	"iter"
	"strings"
)

// DiagnosticKind classifies a non-fatal problem found while building participants.
type DiagnosticKind string

const (
	// KindUnknownRespondent: the typed name matches no name-finder column; row skipped.
	KindUnknownRespondent DiagnosticKind = "unknown_respondent"
	// KindBlankName: the name cell is empty; row skipped.
	KindBlankName DiagnosticKind = "blank_name"
	// KindMalformedContact: a contact value failed validation; the method is omitted.
	KindMalformedContact DiagnosticKind = "malformed_contact"
	// KindDuplicateRespondent: a second row claimed an existing name.
	KindDuplicateRespondent DiagnosticKind = "duplicate_respondent"
)

// Skips reports whether a diagnostic of this kind drops the whole row.
func (k DiagnosticKind) Skips() bool {
	return k == KindUnknownRespondent || k == KindBlankName
}

// Diagnostic is a structured warning about one row. Formatting and colour are
// left to whoever consumes it.
type Diagnostic struct {
	Kind DiagnosticKind `json:"kind" yaml:"kind"`

	// Row is the 1-based data row (header excluded).
	Row int `json:"row" yaml:"row"`

	// Name is the normalized respondent name, when known.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Field is the contact method or column involved.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`

	// Value is the offending cell value.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// Suggestions lists known names the respondent may have meant.
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`

	// Detail carries policy-specific context such as the action taken on a duplicate.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Message renders a one-line plain description.
func (d Diagnostic) Message() string {
	switch d.Kind {
	case KindUnknownRespondent:
		msg := fmt.Sprintf("the name %q does not match any names from the form; this person won't be matched", d.Name)
		if len(d.Suggestions) > 0 {
			msg += fmt.Sprintf(" (possibly: %s)", strings.Join(d.Suggestions, ", "))
		}
		return msg
	case KindBlankName:
		return "response has no name; this row won't be matched"
	case KindMalformedContact:
		return fmt.Sprintf("%s gave malformed contact information for %q: %q", d.Name, d.Field, d.Value)
	case KindDuplicateRespondent:
		return fmt.Sprintf("%s responded more than once (%s)", d.Name, d.Detail)
	default:
		return string(d.Kind)
	}
}

// Diagnostics accumulates warnings in the order they were found.
type Diagnostics struct {
	items []Diagnostic
}

// Add appends diagnostics.
func (d *Diagnostics) Add(items ...Diagnostic) {
	d.items = append(d.items, items...)
}

// Len returns the number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.items)
}

// Count returns the number of diagnostics of kind.
func (d *Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, it := range d.items {
		if it.Kind == kind {
			n++
		}
	}
	return n
}

// All yields the diagnostics in discovery order.
func (d *Diagnostics) All() iter.Seq[Diagnostic] {
	return func(yield func(Diagnostic) bool) {
		for _, it := range d.items {
			if !yield(it) {
				return
			}
		}
	}
}

// Slice returns a copy of the diagnostics.
func (d *Diagnostics) Slice() []Diagnostic {
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	return out
}
