// Package main provides the matchmaker CLI entry point.
// matchmaker reads a post-event survey export and tells every participant
// which of the people they wanted to see again wanted to see them too.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/matchmaker/cmd"
	"github.com/otherjamesbrown/matchmaker/pkg/buildinfo"
	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
	"github.com/otherjamesbrown/matchmaker/pkg/logging"
)

// Global flags.
var (
	debug     bool
	logFormat string
	logColor  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "matchmaker",
	Short: "Mutual-match notifications from event survey responses",
	Long: `matchmaker turns a post-event survey export into mutual-match notifications.

Each respondent lists the people they would like to see again. A match is
made only when two people chose each other; everyone else gets the
not-matched message.

COMMON WORKFLOWS:
  Check the column patterns:  matchmaker columns event.yaml
  Write the notifications:    matchmaker match event.yaml
  Export matches as JSON:     matchmaker match event.yaml -o json

Diagnostics (unknown names, malformed phone numbers, duplicate responses)
are logged to stderr as warnings; they never stop a run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := logging.DefaultConfig()
		if debug || os.Getenv("MATCHMAKER_DEBUG") == "true" || os.Getenv("MATCHMAKER_DEBUG") == "1" {
			cfg.Level = logging.LevelDebug
		}
		switch logFormat {
		case "", "text":
		case "json":
			cfg.JSONFormat = true
		default:
			return fmt.Errorf("%w: log format %q (want text or json)", mmerrors.ErrValidation, logFormat)
		}
		switch logging.ColorMode(logColor) {
		case "":
		case logging.ColorAuto, logging.ColorAlways, logging.ColorNever:
			cfg.Color = logging.ColorMode(logColor)
		default:
			return fmt.Errorf("%w: color mode %q (want auto, always or never)", mmerrors.ErrValidation, logColor)
		}
		logging.SetGlobal(logging.NewLogger(cfg))
		return nil
	},
}

// Version command flags.
var versionOutput string

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit hash, and build time of matchmaker.

Examples:
  matchmaker version              Show version
  matchmaker version -o json      Output as JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return buildinfo.Get("matchmaker").Write(cmd.OutOrStdout(), versionOutput)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logColor, "color", "auto", "colour log output: auto, always, never")

	rootCmd.AddCommand(cmd.NewMatchCommand(nil))
	rootCmd.AddCommand(cmd.NewColumnsCommand(nil))

	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", "", "Output format: text, json, yaml")
	rootCmd.AddCommand(versionCmd)
}

// printError writes err with the suggested action for its error code.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if code := mmerrors.CodeOf(err); code != "" {
		fmt.Fprintf(w, "  %s\n", mmerrors.GetSuggestedAction(code))
	} else if errors.Is(err, mmerrors.ErrNotFound) {
		fmt.Fprintln(w, "  Pass the config path as an argument or set MATCHMAKER_CONFIG")
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
