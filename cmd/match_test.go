package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
	"github.com/otherjamesbrown/matchmaker/pkg/logging"
	"github.com/otherjamesbrown/matchmaker/pkg/report"
)

const testConfigYAML = `csv_path: responses.csv
encoding: utf-8
name_column_header: "Your name"
regex:
  find_name: 'would you like to see (.+?) again'
  contact_methods: 'contact \[(.+)\]'
  identity_fields: 'identity \[(.+)\]'
  interests: 'interest \[(.+)\]'
messages:
  matched:
    pre: "You matched!"
    post: "Have fun."
  not_matched: "No matches this time."
`

const testCSV = `Timestamp,Your name,Would you like to see Alice again?,Would you like to see Bob again?,Would you like to see Carol again?,Would you like to see Erin again?,Contact [email],Contact [phone],Identity [gender],Interest [reason]
2024-05-01,Alice,,Yes,Yes,Yes,alice@example.com,555-123-4567,"woman, queer",friendship
2024-05-01,Bob,Yes,,,,bob@example.com,not a phone,,
2024-05-01,Carol,No,Yes,,,carol@example.com,,woman,dating
2024-05-01,Dave,Yes,Yes,Yes,,dave@example.com,,,
`

// writeFixture lays out a config and export in a temp dir and returns the config path.
func writeFixture(t *testing.T, extraConfig string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "responses.csv"), []byte(testCSV), 0o644))
	cfgPath := filepath.Join(dir, "event.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfigYAML+extraConfig), 0o644))
	return cfgPath
}

func testMatchDeps(logOut *bytes.Buffer) *MatchCommandDeps {
	deps := DefaultMatchDeps()
	deps.NewRunID = func() string { return "run-test" }
	deps.Logger = func() logging.Logger {
		return logging.NewLogger(&logging.Config{
			Level:      logging.LevelDebug,
			JSONFormat: true,
			Output:     logOut,
		})
	}
	fixed := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	deps.Now = func() time.Time { return fixed }
	return deps
}

func TestMatchCommand(t *testing.T) {
	cmd := NewMatchCommand(nil)

	assert.Equal(t, "match [config]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)

	for _, name := range []string{"output", "out-file", "metrics", "duplicates", "no-color"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing --%s flag", name)
	}
	assert.Equal(t, "o", cmd.Flags().Lookup("output").Shorthand)

	assert.NoError(t, cmd.Args(cmd, []string{}))
	assert.NoError(t, cmd.Args(cmd, []string{"event.yaml"}))
	assert.Error(t, cmd.Args(cmd, []string{"a.yaml", "b.yaml"}))
}

func TestRunMatch_Text(t *testing.T) {
	cfgPath := writeFixture(t, "")
	var logs, out bytes.Buffer

	run, err := runMatch(context.Background(), testMatchDeps(&logs), &matchFlags{noColor: true}, cfgPath, &out)
	require.NoError(t, err)

	assert.Equal(t, "run-test", run.RunID)
	assert.Equal(t, report.FormatText, run.Format)
	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "out.txt"), run.OutputPath)
	assert.Equal(t, 1, run.Result.MutualPairs)

	data, err := os.ReadFile(run.OutputPath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "***SEND TO: \talice@example.com\t***")
	assert.Contains(t, text, "\n\nBob\n---\nEmail: bob@example.com\n")
	assert.Contains(t, text, "Phone: (555) 123-4567\n")
	assert.Contains(t, text, "***SEND TO: \tcarol@example.com\t***\n\n\nNo matches this time.\n")
	assert.NotContains(t, text, "dave")

	assert.Equal(t,
		"INFO: The following people did not take the survey:\n   - Erin\n"+
			"INFO: 1 person was not matched:\n   - Carol\n",
		out.String())

	logText := logs.String()
	assert.Contains(t, logText, "No output_path given in config")
	assert.Contains(t, logText, `"run_id":"run-test"`)
	assert.Contains(t, logText, `"kind":"malformed_contact"`)
	assert.Contains(t, logText, `"kind":"unknown_respondent"`)
	assert.Contains(t, logText, "4 event participants and 4 survey respondents")
}

func TestRunMatch_JSONExport(t *testing.T) {
	cfgPath := writeFixture(t, "output_path: matches.json\n")
	var logs, out bytes.Buffer

	run, err := runMatch(context.Background(), testMatchDeps(&logs), &matchFlags{output: "json", noColor: true}, cfgPath, &out)
	require.NoError(t, err)
	assert.Equal(t, report.FormatJSON, run.Format)
	assert.NotContains(t, logs.String(), "No output_path given")

	data, err := os.ReadFile(run.OutputPath)
	require.NoError(t, err)

	var export struct {
		RunID     string   `json:"run_id"`
		Unmatched []string `json:"unmatched"`
		Pairs     []struct {
			A string `json:"a"`
			B string `json:"b"`
		} `json:"mutual_pairs"`
	}
	require.NoError(t, json.Unmarshal(data, &export))
	assert.Equal(t, "run-test", export.RunID)
	assert.Equal(t, []string{"carol"}, export.Unmatched)
	require.Len(t, export.Pairs, 1)
	assert.Equal(t, "alice", export.Pairs[0].A)
	assert.Equal(t, "bob", export.Pairs[0].B)
}

func TestRunMatch_Metrics(t *testing.T) {
	cfgPath := writeFixture(t, "metrics_path: run.prom\n")
	var logs, out bytes.Buffer

	_, err := runMatch(context.Background(), testMatchDeps(&logs), &matchFlags{noColor: true}, cfgPath, &out)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), "run.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "matchmaker_match_mutual_pairs")
	assert.Contains(t, string(data), "matchmaker_last_run_success 1")
	for _, stage := range []string{"read", "classify", "build", "resolve", "render"} {
		assert.Contains(t, string(data), `stage="`+stage+`"`)
	}
	assert.NotContains(t, string(data), `stage="match"`)
}

func TestRunMatch_OutFileRelativeToWorkingDir(t *testing.T) {
	cfgPath := writeFixture(t, "")
	wd := t.TempDir()
	t.Chdir(wd)

	var logs, out bytes.Buffer
	run, err := runMatch(context.Background(), testMatchDeps(&logs), &matchFlags{outFile: "notify.txt", noColor: true}, cfgPath, &out)
	require.NoError(t, err)
	assert.Equal(t, "notify.txt", run.OutputPath)

	_, err = os.Stat(filepath.Join(wd, "notify.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(cfgPath), "notify.txt"))
	assert.True(t, os.IsNotExist(err), "--out-file is not anchored at the config directory")
}

func TestRunMatch_DuplicatesFlag(t *testing.T) {
	cfgPath := writeFixture(t, "")
	csvPath := filepath.Join(filepath.Dir(cfgPath), "responses.csv")
	f, err := os.OpenFile(csvPath, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("2024-05-02,alice,,,Yes,,alice2@example.com,,,\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var logs, out bytes.Buffer
	run, err := runMatch(context.Background(), testMatchDeps(&logs), &matchFlags{duplicates: "keep_first", noColor: true}, cfgPath, &out)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", run.Result.Participants["alice"].ContactMethods["email"])
	assert.Contains(t, logs.String(), `"kind":"duplicate_respondent"`)
}

func TestRunMatch_ConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		flags    *matchFlags
		config   string
		wantCode mmerrors.ErrorCode
	}{
		{
			name:     "unknown duplicate policy",
			flags:    &matchFlags{duplicates: "merge"},
			wantCode: mmerrors.CodeInvalidValue,
		},
		{
			name:     "missing name column",
			flags:    &matchFlags{},
			config:   strings.Replace(testConfigYAML, `"Your name"`, `"Name"`, 1),
			wantCode: mmerrors.CodeMissingColumn,
		},
		{
			name:     "contact pattern matches nothing",
			flags:    &matchFlags{},
			config:   strings.Replace(testConfigYAML, `'contact \[(.+)\]'`, `'reach me \[(.+)\]'`, 1),
			wantCode: mmerrors.CodeEmptyCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := writeFixture(t, "")
			if tt.config != "" {
				require.NoError(t, os.WriteFile(cfgPath, []byte(tt.config), 0o644))
			}

			var logs, out bytes.Buffer
			run, err := runMatch(context.Background(), testMatchDeps(&logs), tt.flags, cfgPath, &out)
			require.Error(t, err)
			assert.Nil(t, run)
			assert.Equal(t, tt.wantCode, mmerrors.CodeOf(err))

			_, statErr := os.Stat(filepath.Join(filepath.Dir(cfgPath), "out.txt"))
			assert.True(t, os.IsNotExist(statErr), "no output is written on a config error")
		})
	}
}

func TestRunMatch_MissingConfig(t *testing.T) {
	var logs, out bytes.Buffer
	_, err := runMatch(context.Background(), testMatchDeps(&logs), &matchFlags{}, filepath.Join(t.TempDir(), "nope.yaml"), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, mmerrors.ErrNotFound)
}

func TestMatchCommand_Execute(t *testing.T) {
	cfgPath := writeFixture(t, "")
	var logs, out bytes.Buffer

	cmd := NewMatchCommand(testMatchDeps(&logs))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{cfgPath, "--no-color", "--out-file", filepath.Join(t.TempDir(), "notes.txt")})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "1 person was not matched")
}
