package matching

import (
	"context"
	"fmt"
	"time"

	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
	"github.com/otherjamesbrown/matchmaker/pkg/observability"
	"github.com/otherjamesbrown/matchmaker/pkg/survey"
)

// DuplicatePolicy decides what happens when two rows resolve to the same name.
type DuplicatePolicy string

const (
	// DuplicateOverwrite keeps the last row.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	// DuplicateKeepFirst keeps the first row.
	DuplicateKeepFirst DuplicatePolicy = "keep_first"
	// DuplicateReject drops every row sharing the name.
	DuplicateReject DuplicatePolicy = "reject"
)

// Options configures a matching run.
type Options struct {
	// NameColumn is the exact header of the respondent-name column.
	NameColumn string

	// Patterns maps each category to its header pattern.
	Patterns map[Category]string

	// PhonePattern and IdentityDelim are optional; defaults apply when empty.
	PhonePattern  string
	IdentityDelim string

	// InterestMarker defaults to DefaultInterestMarker.
	InterestMarker string

	// Duplicates defaults to DuplicateOverwrite.
	Duplicates DuplicatePolicy

	// Tracer is optional.
	Tracer *observability.Tracer

	// ObserveStage, when set, receives the duration of each classify, build and
	// resolve stage that completes.
	ObserveStage func(stage string, d time.Duration)
}

func (o Options) observe(stage string, started time.Time) {
	if o.ObserveStage != nil {
		o.ObserveStage(stage, time.Since(started))
	}
}

// Result is everything a run produced.
type Result struct {
	Participants   Participants    `json:"participants" yaml:"participants"`
	Classification *Classification `json:"-" yaml:"-"`
	Diagnostics    *Diagnostics    `json:"-" yaml:"-"`

	// EventNames are the names taken from the name-finder columns.
	EventNames NameSet `json:"event_names" yaml:"event_names"`

	// Responses is the number of data rows read.
	Responses int `json:"responses" yaml:"responses"`

	// NonRespondents are event names with no participant, sorted.
	NonRespondents []string `json:"non_respondents" yaml:"non_respondents"`

	// Unmatched are participants with no mutual friend, sorted.
	Unmatched []string `json:"unmatched" yaml:"unmatched"`

	// MutualPairs is the number of unordered mutual matches.
	MutualPairs int `json:"mutual_pairs" yaml:"mutual_pairs"`
}

// Inspect compiles the configured patterns and classifies the table's headers.
// Patterns that do not compile are returned as err. An absent name column and
// required categories that claim no header are returned as problems, in that
// order, alongside the classification.
func Inspect(table *survey.Table, opts Options) (c *Classification, problems []error, err error) {
	if opts.NameColumn == "" {
		return nil, nil, mmerrors.MissingKey("", "name_column_header")
	}
	rules, err := CompileRules(opts.Patterns)
	if err != nil {
		return nil, nil, err
	}
	c = rules.Classify(table.Headers)

	if !table.HasColumn(opts.NameColumn) {
		problems = append(problems, mmerrors.MissingColumn("name_column_header", opts.NameColumn))
	}
	for _, cat := range RequiredCategories {
		if err := c.Require(cat); err != nil {
			problems = append(problems, err)
		}
	}
	return c, problems, nil
}

// Prepare is Inspect for a run: the first problem aborts.
func Prepare(table *survey.Table, opts Options) (*Classification, error) {
	c, problems, err := Inspect(table, opts)
	if err != nil {
		return nil, err
	}
	if len(problems) > 0 {
		return nil, problems[0]
	}
	return c, nil
}

// Run classifies the table's headers, builds one participant per usable row
// and resolves mutual interest. Configuration problems are returned as
// errors; row problems end up in Result.Diagnostics.
func Run(ctx context.Context, table *survey.Table, opts Options) (*Result, error) {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = observability.NewTracer()
	}

	phone, err := CompilePhonePattern(opts.PhonePattern)
	if err != nil {
		return nil, err
	}
	delim, err := CompileIdentityDelim(opts.IdentityDelim)
	if err != nil {
		return nil, err
	}
	policy := opts.Duplicates
	if policy == "" {
		policy = DuplicateOverwrite
	}
	switch policy {
	case DuplicateOverwrite, DuplicateKeepFirst, DuplicateReject:
	default:
		return nil, fmt.Errorf("%w: unknown duplicate policy %q", mmerrors.ErrValidation, policy)
	}

	started := time.Now()
	_, span := tracer.StartStageSpan(ctx, observability.StageClassify)
	helper := observability.NewSpanHelper(span)
	helper.SetTable(len(table.Headers), table.Len())
	classification, err := Prepare(table, opts)
	if err != nil {
		helper.SetError(err, string(mmerrors.CodeOf(err)))
		span.End()
		return nil, err
	}
	helper.SetUnclassified(len(classification.Unclassified))
	span.End()
	opts.observe(observability.StageClassify, started)

	builder := NewBuilder(classification, BuilderConfig{
		NameColumn:     opts.NameColumn,
		InterestMarker: opts.InterestMarker,
		PhonePattern:   phone,
		IdentityDelim:  delim,
	})

	res := &Result{
		Participants:   make(Participants),
		Classification: classification,
		Diagnostics:    &Diagnostics{},
		EventNames:     builder.KnownNames(),
		Responses:      table.Len(),
	}

	started = time.Now()
	_, span = tracer.StartStageSpan(ctx, observability.StageBuild)
	rejected := make(NameSet)
	for i, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			span.End()
			return nil, err
		}
		p, diags := builder.Build(row, i+1)
		res.Diagnostics.Add(diags...)
		if p == nil {
			continue
		}
		res.addParticipant(p, policy, rejected)
	}
	observability.NewSpanHelper(span).SetBuildResult(len(res.Participants), res.Diagnostics.Len())
	span.End()
	opts.observe(observability.StageBuild, started)

	started = time.Now()
	_, span = tracer.StartStageSpan(ctx, observability.StageResolve)
	res.MutualPairs = Resolve(res.Participants)
	observability.NewSpanHelper(span).SetMutualPairs(res.MutualPairs)
	span.End()
	opts.observe(observability.StageResolve, started)

	for _, name := range res.EventNames.Sorted() {
		if _, ok := res.Participants[name]; !ok {
			res.NonRespondents = append(res.NonRespondents, name)
		}
	}
	res.Unmatched = res.Participants.Unmatched()
	return res, nil
}

func (r *Result) addParticipant(p *Participant, policy DuplicatePolicy, rejected NameSet) {
	if rejected.Has(p.Name) {
		r.Diagnostics.Add(duplicate(p, "rejected"))
		return
	}
	if err := r.Participants.Add(p); err == nil {
		return
	}
	prev := r.Participants[p.Name]
	switch policy {
	case DuplicateKeepFirst:
		r.Diagnostics.Add(duplicate(p, fmt.Sprintf("kept row %d", prev.Row)))
	case DuplicateReject:
		delete(r.Participants, p.Name)
		rejected.Add(p.Name)
		r.Diagnostics.Add(duplicate(p, fmt.Sprintf("rejected along with row %d", prev.Row)))
	default:
		r.Participants[p.Name] = p
		r.Diagnostics.Add(duplicate(p, fmt.Sprintf("replaced row %d", prev.Row)))
	}
}

func duplicate(p *Participant, detail string) Diagnostic {
	return Diagnostic{
		Kind:   KindDuplicateRespondent,
		Row:    p.Row,
		Name:   p.Name,
		Detail: detail,
	}
}
