package matching

import (
	"fmt"
	"regexp"
	"strings"

	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
)

// DefaultInterestMarker is the cell value that records interest in a person.
const DefaultInterestMarker = "Yes"

// PhoneMethod is the contact method whose values are reformatted.
const PhoneMethod = "phone"

// Default value patterns, used when the configuration leaves them out.
var (
	DefaultPhonePattern  = regexp.MustCompile(`^\+?1?[\s.-]*\(?(\d{3})\)?[\s.-]*(\d{3})[\s.-]*(\d{4})`)
	DefaultIdentityDelim = regexp.MustCompile(`\s*[,;]\s*`)
)

// BuilderConfig holds the per-row settings of a Builder.
type BuilderConfig struct {
	// NameColumn is the header of the respondent's own name.
	NameColumn string

	// InterestMarker is compared exactly against name-finder cells.
	InterestMarker string

	// PhonePattern captures area code, exchange and subscriber number.
	PhonePattern *regexp.Regexp

	// IdentityDelim splits identity cells into tags.
	IdentityDelim *regexp.Regexp
}

// CompilePhonePattern compiles a phone pattern, requiring three capture groups.
// An empty expression yields DefaultPhonePattern.
func CompilePhonePattern(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return DefaultPhonePattern, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, mmerrors.InvalidPattern("phone_number", err)
	}
	if re.NumSubexp() < 3 {
		return nil, mmerrors.InvalidPattern("phone_number",
			fmt.Errorf("pattern %q has %d capture groups, want 3 (area code, exchange, subscriber)", expr, re.NumSubexp()))
	}
	return re, nil
}

// CompileIdentityDelim compiles the identity delimiter. An empty expression
// yields DefaultIdentityDelim.
func CompileIdentityDelim(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return DefaultIdentityDelim, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, mmerrors.InvalidPattern("identity_delim", err)
	}
	return re, nil
}

// Builder turns table rows into participants.
type Builder struct {
	cfg        BuilderConfig
	columns    *Classification
	knownNames NameSet
}

// NewBuilder returns a Builder for rows classified by c.
func NewBuilder(c *Classification, cfg BuilderConfig) *Builder {
	if cfg.InterestMarker == "" {
		cfg.InterestMarker = DefaultInterestMarker
	}
	if cfg.PhonePattern == nil {
		cfg.PhonePattern = DefaultPhonePattern
	}
	if cfg.IdentityDelim == nil {
		cfg.IdentityDelim = DefaultIdentityDelim
	}
	return &Builder{
		cfg:        cfg,
		columns:    c,
		knownNames: c.FieldSet(CategoryFindName),
	}
}

// KnownNames returns the canonical names taken from the name-finder columns.
func (b *Builder) KnownNames() NameSet {
	return b.knownNames
}

// Build converts one row into a Participant. A nil participant means the row
// was skipped; the diagnostics say why. Problems with single fields are
// reported but never drop the row.
func (b *Builder) Build(row map[string]string, rowNum int) (*Participant, []Diagnostic) {
	name := NormalizeName(row[b.cfg.NameColumn])
	if name == "" {
		return nil, []Diagnostic{{Kind: KindBlankName, Row: rowNum}}
	}
	if !b.knownNames.Has(name) {
		return nil, []Diagnostic{{
			Kind:        KindUnknownRespondent,
			Row:         rowNum,
			Name:        name,
			Value:       row[b.cfg.NameColumn],
			Suggestions: Suggest(name, b.knownNames),
		}}
	}

	p := NewParticipant(name)
	p.Row = rowNum
	var diags []Diagnostic

	for _, col := range b.columns.Columns(CategoryContactMethods) {
		value := row[col.Header]
		if strings.TrimSpace(value) == "" {
			continue
		}
		if col.Field != PhoneMethod {
			p.AddContactMethod(col.Field, value)
			continue
		}
		phone, ok := FormatPhone(b.cfg.PhonePattern, value)
		if !ok {
			diags = append(diags, Diagnostic{
				Kind:  KindMalformedContact,
				Row:   rowNum,
				Name:  name,
				Field: col.Field,
				Value: value,
			})
			continue
		}
		p.AddContactMethod(col.Field, phone)
	}

	for _, col := range b.columns.Columns(CategoryFindName) {
		if row[col.Header] == b.cfg.InterestMarker {
			p.AddPotentialFriend(col.Field)
		}
	}

	for _, col := range b.columns.Columns(CategoryIdentityFields) {
		value := row[col.Header]
		if strings.TrimSpace(value) == "" {
			continue
		}
		for _, tag := range b.cfg.IdentityDelim.Split(value, -1) {
			p.AddIdentities(strings.TrimSpace(tag))
		}
	}

	for _, col := range b.columns.Columns(CategoryInterests) {
		if value := row[col.Header]; strings.TrimSpace(value) != "" {
			p.DesiredRelationship = value
		}
	}

	return p, diags
}

// FormatPhone matches value against pattern (anchored at the start) and
// renders the three captured groups as "(AAA) EEE-SSSS".
func FormatPhone(pattern *regexp.Regexp, value string) (string, bool) {
	value = strings.TrimSpace(value)
	m := pattern.FindStringSubmatchIndex(value)
	if m == nil || m[0] != 0 || len(m) < 8 {
		return "", false
	}
	groups := make([]string, 3)
	for i := range groups {
		start, end := m[2*(i+1)], m[2*(i+1)+1]
		if start < 0 {
			return "", false
		}
		groups[i] = value[start:end]
	}
	return fmt.Sprintf("(%s) %s-%s", groups[0], groups[1], groups[2]), true
}
