package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
	"github.com/otherjamesbrown/matchmaker/pkg/observability"
	"github.com/otherjamesbrown/matchmaker/pkg/survey"
)

func TestRun_Scenario(t *testing.T) {
	res, err := Run(context.Background(), testTable(), testOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob", "carol"}, res.Participants.Names())
	assert.Equal(t, 4, res.Responses)
	assert.Equal(t, []string{"alice", "bob", "carol", "erin"}, res.EventNames.Sorted())
	assert.Equal(t, []string{"erin"}, res.NonRespondents)
	assert.Equal(t, []string{"carol"}, res.Unmatched)
	assert.Equal(t, 1, res.MutualPairs)

	assert.Equal(t, []string{"bob"}, res.Participants["alice"].MutualFriends.Sorted())
	assert.Equal(t, []string{"alice"}, res.Participants["bob"].MutualFriends.Sorted())
	assert.Equal(t, "(555) 123-4567", res.Participants["alice"].ContactMethods["phone"])
	assert.Equal(t, "(555) 987-6543", res.Participants["carol"].ContactMethods["phone"])

	got := res.Diagnostics.Slice()
	want := []Diagnostic{
		{Kind: KindMalformedContact, Row: 2, Name: "bob", Field: "phone", Value: "not a phone"},
		{Kind: KindUnknownRespondent, Row: 4, Name: "dave", Value: "Dave"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_RepeatedResolveIsStable(t *testing.T) {
	res, err := Run(context.Background(), testTable(), testOptions())
	require.NoError(t, err)

	before := res.Participants.Pairs()
	assert.Equal(t, res.MutualPairs, Resolve(res.Participants))
	assert.Equal(t, before, res.Participants.Pairs())
}

func TestRun_DuplicatePolicies(t *testing.T) {
	second := testRecord("alice", "", "", "Yes", "", "alice2@example.com", "", "", "")

	tests := []struct {
		policy       DuplicatePolicy
		wantEmail    string
		wantPresent  bool
		wantDetail   string
		wantUnmatchd []string
	}{
		{DuplicateOverwrite, "alice2@example.com", true, "replaced row 1", []string{"alice", "bob", "carol"}},
		{"", "alice2@example.com", true, "replaced row 1", []string{"alice", "bob", "carol"}},
		{DuplicateKeepFirst, "alice@example.com", true, "kept row 1", []string{"carol"}},
		{DuplicateReject, "", false, "rejected along with row 1", []string{"bob", "carol"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			opts := testOptions()
			opts.Duplicates = tt.policy

			res, err := Run(context.Background(), testTable(second), opts)
			require.NoError(t, err)

			alice, ok := res.Participants["alice"]
			assert.Equal(t, tt.wantPresent, ok)
			if ok {
				assert.Equal(t, tt.wantEmail, alice.ContactMethods["email"])
			}
			assert.Equal(t, 1, res.Diagnostics.Count(KindDuplicateRespondent))
			for d := range res.Diagnostics.All() {
				if d.Kind == KindDuplicateRespondent {
					assert.Equal(t, 5, d.Row)
					assert.Equal(t, "alice", d.Name)
					assert.Equal(t, tt.wantDetail, d.Detail)
				}
			}
			assert.Equal(t, tt.wantUnmatchd, res.Unmatched)
		})
	}
}

func TestRun_RejectDropsLaterRowsToo(t *testing.T) {
	opts := testOptions()
	opts.Duplicates = DuplicateReject
	dup := testRecord("Alice", "", "Yes", "", "", "", "", "", "")

	res, err := Run(context.Background(), testTable(dup, dup), opts)
	require.NoError(t, err)

	_, ok := res.Participants["alice"]
	assert.False(t, ok)
	assert.Equal(t, 2, res.Diagnostics.Count(KindDuplicateRespondent))
	assert.Contains(t, res.NonRespondents, "alice")
}

func TestRun_UnknownDuplicatePolicy(t *testing.T) {
	opts := testOptions()
	opts.Duplicates = "merge"

	_, err := Run(context.Background(), testTable(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mmerrors.ErrValidation))
}

func TestRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Options)
		headers  []string
		wantErr  error
		wantCode mmerrors.ErrorCode
	}{
		{
			name:     "name column missing from table",
			mutate:   func(o *Options) { o.NameColumn = "Name" },
			wantErr:  mmerrors.ErrMissingColumn,
			wantCode: mmerrors.CodeMissingColumn,
		},
		{
			name:     "name column not configured",
			mutate:   func(o *Options) { o.NameColumn = "" },
			wantErr:  mmerrors.ErrMissingKey,
			wantCode: mmerrors.CodeMissingKey,
		},
		{
			name:     "find_name matches nothing",
			mutate:   func(o *Options) { o.Patterns[CategoryFindName] = `nobody (.+)` },
			wantErr:  mmerrors.ErrEmptyCategory,
			wantCode: mmerrors.CodeEmptyCategory,
		},
		{
			name:     "pattern without group",
			mutate:   func(o *Options) { o.Patterns[CategoryContactMethods] = `contact` },
			wantErr:  mmerrors.ErrInvalidPattern,
			wantCode: mmerrors.CodeInvalidPattern,
		},
		{
			name:     "phone pattern with too few groups",
			mutate:   func(o *Options) { o.PhonePattern = `(\d+)` },
			wantErr:  mmerrors.ErrInvalidPattern,
			wantCode: mmerrors.CodeInvalidPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.mutate(&opts)

			res, err := Run(context.Background(), testTable(), opts)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, tt.wantCode, mmerrors.CodeOf(err))
		})
	}
}

func TestRun_EmptyTable(t *testing.T) {
	table := survey.NewTable("empty.csv", testHeaders, nil)

	res, err := Run(context.Background(), table, testOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Participants)
	assert.Zero(t, res.MutualPairs)
	assert.Equal(t, []string{"alice", "bob", "carol", "erin"}, res.NonRespondents)
	assert.Zero(t, res.Diagnostics.Len())
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testTable(), testOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrepare(t *testing.T) {
	c, err := Prepare(testTable(), testOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "phone"}, c.Fields(CategoryContactMethods))
}

func TestInspect(t *testing.T) {
	t.Run("clean configuration", func(t *testing.T) {
		c, problems, err := Inspect(testTable(), testOptions())
		require.NoError(t, err)
		assert.Empty(t, problems)
		assert.Equal(t, []string{"alice", "bob", "carol", "erin"}, c.Fields(CategoryFindName))
	})

	t.Run("problems still classify", func(t *testing.T) {
		opts := testOptions()
		opts.NameColumn = "Name"
		opts.Patterns[CategoryFindName] = `would you like to meet (.+?) again`

		c, problems, err := Inspect(testTable(), opts)
		require.NoError(t, err)
		require.Len(t, problems, 2)
		assert.Equal(t, mmerrors.CodeMissingColumn, mmerrors.CodeOf(problems[0]))
		assert.Equal(t, mmerrors.CodeEmptyCategory, mmerrors.CodeOf(problems[1]))
		assert.Contains(t, c.Unclassified, "Would you like to see Alice again?")
		assert.Equal(t, []string{"email", "phone"}, c.Fields(CategoryContactMethods))

		_, err = Prepare(testTable(), opts)
		assert.ErrorIs(t, err, mmerrors.ErrMissingColumn)
	})

	t.Run("bad pattern is fatal", func(t *testing.T) {
		opts := testOptions()
		opts.Patterns[CategoryContactMethods] = `contact`

		c, problems, err := Inspect(testTable(), opts)
		assert.ErrorIs(t, err, mmerrors.ErrInvalidPattern)
		assert.Nil(t, c)
		assert.Empty(t, problems)
	})
}

func TestRun_ObserveStage(t *testing.T) {
	var stages []string
	opts := testOptions()
	opts.ObserveStage = func(stage string, d time.Duration) {
		assert.GreaterOrEqual(t, d, time.Duration(0))
		stages = append(stages, stage)
	}

	_, err := Run(context.Background(), testTable(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{
		observability.StageClassify,
		observability.StageBuild,
		observability.StageResolve,
	}, stages)
}
