package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/matchmaker/config"
	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
	"github.com/otherjamesbrown/matchmaker/pkg/matching"
	"github.com/otherjamesbrown/matchmaker/pkg/report"
	"github.com/otherjamesbrown/matchmaker/pkg/survey"
)

// ColumnsCommandDeps holds the dependencies for the columns command.
type ColumnsCommandDeps struct {
	LoadConfig func(path string) (*config.Config, error)
	ReadTable  func(path string, opts survey.Options) (*survey.Table, error)
}

// DefaultColumnsDeps returns the default dependencies for production use.
func DefaultColumnsDeps() *ColumnsCommandDeps {
	return &ColumnsCommandDeps{
		LoadConfig: config.LoadConfig,
		ReadTable:  survey.ReadFile,
	}
}

// ColumnRow is one line of the columns report.
type ColumnRow struct {
	Category string `json:"category" yaml:"category"`
	Field    string `json:"field" yaml:"field"`
	Header   string `json:"header" yaml:"header"`
}

// ColumnProblem is a configuration problem that would abort 'matchmaker match'.
type ColumnProblem struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
	Detail      string `json:"detail" yaml:"detail"`
}

// ColumnsReport is the classification of an export's headers.
type ColumnsReport struct {
	Source       string          `json:"source" yaml:"source"`
	NameColumn   string          `json:"name_column" yaml:"name_column"`
	Columns      []ColumnRow     `json:"columns" yaml:"columns"`
	Unclassified []string        `json:"unclassified" yaml:"unclassified"`
	Problems     []ColumnProblem `json:"problems" yaml:"problems"`
}

// NewColumnsCommand creates the columns command.
func NewColumnsCommand(deps *ColumnsCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultColumnsDeps()
	}
	var output string

	cmd := &cobra.Command{
		Use:   "columns [config]",
		Short: "Show how the survey columns are classified",
		Long: `Read the survey export named by the config and show which headers each
pattern claims, with the field name extracted from every header.

No participants are built and nothing is written. Use this to tune the regex
section before running 'matchmaker match'. Headers are lowercased before
matching and a pattern must match from the start of the header.

A missing name column or a required pattern that claims no header is listed
under PROBLEMS instead of failing, so the raw headers can be compared with
the patterns. A pattern that does not compile is still an error.`,
		Example: `  # Show the classification table
  matchmaker columns event.yaml

  # As JSON
  matchmaker columns event.yaml -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			rep, err := runColumns(deps, path)
			if err != nil {
				return err
			}
			return writeColumnsReport(cmd.OutOrStdout(), rep, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")

	return cmd
}

func runColumns(deps *ColumnsCommandDeps, path string) (*ColumnsReport, error) {
	cfg, err := deps.LoadConfig(config.ResolvePath(path))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	table, err := deps.ReadTable(cfg.CSVPath, survey.Options{Encoding: cfg.Encoding, Sheet: cfg.Sheet})
	if err != nil {
		return nil, fmt.Errorf("reading survey: %w", err)
	}
	c, problems, err := matching.Inspect(table, matchingOptions(cfg, nil))
	if err != nil {
		return nil, err
	}

	rep := &ColumnsReport{
		Source:       table.Source,
		NameColumn:   cfg.NameColumnHeader,
		Columns:      []ColumnRow{},
		Unclassified: c.Unclassified,
		Problems:     []ColumnProblem{},
	}
	for _, p := range problems {
		code := mmerrors.CodeOf(p)
		rep.Problems = append(rep.Problems, ColumnProblem{
			Code:        string(code),
			Description: mmerrors.GetDescription(code),
			Detail:      p.Error(),
		})
	}
	for _, cat := range matching.CategoryOrder {
		for _, col := range c.Columns(cat) {
			rep.Columns = append(rep.Columns, ColumnRow{
				Category: string(cat),
				Field:    col.Field,
				Header:   col.Header,
			})
		}
	}
	if rep.Unclassified == nil {
		rep.Unclassified = []string{}
	}
	return rep, nil
}

func writeColumnsReport(out io.Writer, rep *ColumnsReport, format string) error {
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	switch f {
	case report.FormatJSON:
		return outputJSON(out, rep)
	case report.FormatYAML:
		return outputYAML(out, rep)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tFIELD\tHEADER")
	fmt.Fprintln(w, "--------\t-----\t------")
	for _, row := range rep.Columns {
		fmt.Fprintf(w, "%s\t%s\t%s\n", row.Category, row.Field, row.Header)
	}
	for _, h := range rep.Unclassified {
		name := "-"
		if h == rep.NameColumn {
			name = "(name)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", "unclassified", name, h)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(rep.Problems) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "PROBLEMS:")
		for _, p := range rep.Problems {
			fmt.Fprintf(out, "  - %s\n    %s\n", p.Description, p.Detail)
		}
	}
	return nil
}
