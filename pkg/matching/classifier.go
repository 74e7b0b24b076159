package matching

import (
	"fmt"
	"regexp"
	"strings"

	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
)

// Category is a semantic class of survey column.
type Category string

const (
	// CategoryFindName columns ask "would you like to see X again?"; the field is X.
	CategoryFindName Category = "find_name"
	// CategoryContactMethods columns hold a respondent's own contact handles.
	CategoryContactMethods Category = "contact_methods"
	// CategoryIdentityFields columns hold free-text identity tags.
	CategoryIdentityFields Category = "identity_fields"
	// CategoryInterests columns hold why the respondent attended.
	CategoryInterests Category = "interests"
)

// CategoryOrder is the order patterns are tried in. The first match wins.
var CategoryOrder = []Category{
	CategoryFindName,
	CategoryContactMethods,
	CategoryIdentityFields,
	CategoryInterests,
}

// RequiredCategories must each match at least one header.
var RequiredCategories = []Category{
	CategoryFindName,
	CategoryContactMethods,
}

// Rule extracts a canonical field name from headers of one category.
type Rule struct {
	Category Category
	Pattern  *regexp.Regexp
}

// RuleSet is a list of rules in evaluation order.
type RuleSet []Rule

// CompileRules compiles the configured header patterns in CategoryOrder.
// Categories without a pattern are skipped. Every pattern must carry exactly
// one capture group.
func CompileRules(patterns map[Category]string) (RuleSet, error) {
	var rules RuleSet
	for _, cat := range CategoryOrder {
		expr, ok := patterns[cat]
		if !ok || expr == "" {
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, mmerrors.InvalidPattern(string(cat), err)
		}
		if re.NumSubexp() != 1 {
			return nil, mmerrors.InvalidPattern(string(cat),
				fmt.Errorf("pattern %q has %d capture groups, want exactly 1", expr, re.NumSubexp()))
		}
		rules = append(rules, Rule{Category: cat, Pattern: re})
	}
	return rules, nil
}

// Column is one classified header.
type Column struct {
	Header string `json:"header" yaml:"header"`
	Field  string `json:"field" yaml:"field"`
}

// Classification is the result of running a RuleSet over a header row.
type Classification struct {
	columns      map[Category][]Column
	patterns     map[Category]string
	Unclassified []string
}

// Classify tests every header against the rules in order. Headers are
// lowercased before matching and a pattern must match at the start of the
// header. The first matching rule claims the header; headers no rule matches
// are kept in Unclassified.
func (rs RuleSet) Classify(headers []string) *Classification {
	c := &Classification{
		columns:  make(map[Category][]Column),
		patterns: make(map[Category]string),
	}
	for _, r := range rs {
		c.patterns[r.Category] = r.Pattern.String()
	}

	for _, h := range headers {
		field, cat, ok := rs.match(h)
		if !ok {
			c.Unclassified = append(c.Unclassified, h)
			continue
		}
		c.columns[cat] = append(c.columns[cat], Column{Header: h, Field: field})
	}
	return c
}

func (rs RuleSet) match(header string) (string, Category, bool) {
	lower := strings.ToLower(header)
	for _, r := range rs {
		m := r.Pattern.FindStringSubmatchIndex(lower)
		if m == nil || m[0] != 0 || m[2] < 0 {
			continue
		}
		field := lower[m[2]:m[3]]
		if r.Category == CategoryFindName {
			field = NormalizeName(field)
		} else {
			field = strings.TrimSpace(field)
		}
		if field == "" {
			continue
		}
		return field, r.Category, true
	}
	return "", "", false
}

// Columns returns the headers claimed by cat, in header order.
func (c *Classification) Columns(cat Category) []Column {
	return c.columns[cat]
}

// Fields returns the distinct canonical field names of cat, sorted.
func (c *Classification) Fields(cat Category) []string {
	return c.FieldSet(cat).Sorted()
}

// FieldSet returns the distinct canonical field names of cat.
func (c *Classification) FieldSet(cat Category) NameSet {
	s := make(NameSet)
	for _, col := range c.columns[cat] {
		s.Add(col.Field)
	}
	return s
}

// Categories returns the categories that claimed at least one header, in CategoryOrder.
func (c *Classification) Categories() []Category {
	var out []Category
	for _, cat := range CategoryOrder {
		if len(c.columns[cat]) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// Require fails with a configuration error for the first category that
// claimed no header.
func (c *Classification) Require(cats ...Category) error {
	for _, cat := range cats {
		if len(c.columns[cat]) == 0 {
			return mmerrors.EmptyCategory(string(cat), c.patterns[cat])
		}
	}
	return nil
}
