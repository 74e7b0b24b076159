// Package config provides configuration management for the matchmaker command-line tool.
// A run is described by one file (YAML, or the JSON layout used by earlier event
// scripts) overlaid with environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
)

// OutputFormat defines the supported formats for the results file.
type OutputFormat string

const (
	// OutputFormatText writes one notification per participant.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON writes the resolved participants as JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML writes the resolved participants as YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// Duplicate-name policies.
const (
	DuplicatesOverwrite = "overwrite"
	DuplicatesKeepFirst = "keep_first"
	DuplicatesReject    = "reject"
)

// Default configuration values.
const (
	DefaultOutputPath     = "out.txt"
	DefaultOutputFormat   = OutputFormatText
	DefaultEncoding       = "latin1"
	DefaultInterestMarker = "Yes"
	DefaultDuplicates     = DuplicatesOverwrite
	DefaultConfigFile     = "config.json"
)

// RegexConfig holds the header and value patterns. Column patterns carry exactly
// one capture group that yields the canonical field name.
type RegexConfig struct {
	// FindName matches the "do you want to see X again" columns; the group is X.
	FindName string `yaml:"find_name"`

	// ContactMethods matches the self-reported contact columns; the group is the method.
	ContactMethods string `yaml:"contact_methods"`

	// IdentityFields matches free-text identity columns.
	IdentityFields string `yaml:"identity_fields,omitempty"`

	// Interests matches the "why did you come" column.
	Interests string `yaml:"interests,omitempty"`

	// PhoneNumber captures area code, exchange and subscriber number.
	PhoneNumber string `yaml:"phone_number,omitempty"`

	// IdentityDelim splits identity cells into tags.
	IdentityDelim string `yaml:"identity_delim,omitempty"`
}

// MatchedMessages wraps the list of matches in a notification. The keys must
// be present but may hold empty strings.
type MatchedMessages struct {
	Pre  *string `yaml:"pre"`
	Post *string `yaml:"post"`
}

// PreText returns the text written before the matches.
func (m *MatchedMessages) PreText() string {
	return text(m.Pre)
}

// PostText returns the text written after the matches.
func (m *MatchedMessages) PostText() string {
	return text(m.Post)
}

// MessagesConfig holds the notification templates.
type MessagesConfig struct {
	Matched    *MatchedMessages `yaml:"matched"`
	NotMatched *string          `yaml:"not_matched"`
}

// NotMatchedText returns the text sent to participants without a match.
func (m *MessagesConfig) NotMatchedText() string {
	return text(m.NotMatched)
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Config holds one run's settings.
type Config struct {
	// CSVPath is the survey export (.csv or .xlsx). Relative paths resolve
	// against the directory of the config file.
	CSVPath string `yaml:"csv_path"`

	// Sheet selects the worksheet of an .xlsx export. Defaults to the first sheet.
	Sheet string `yaml:"sheet,omitempty"`

	// Encoding is the character set of a CSV export (latin1, utf-8, windows-1252).
	Encoding string `yaml:"encoding,omitempty"`

	// NameColumnHeader is the header of the respondent's own name column.
	NameColumnHeader string `yaml:"name_column_header"`

	Regex    *RegexConfig    `yaml:"regex"`
	Messages *MessagesConfig `yaml:"messages"`

	// OutputPath receives the notifications. Defaults to out.txt.
	OutputPath string `yaml:"output_path,omitempty"`

	// OutputFormat selects text notifications or a JSON/YAML export.
	OutputFormat OutputFormat `yaml:"output_format,omitempty"`

	// InterestMarker is the exact cell value that means "yes, I'm interested".
	InterestMarker string `yaml:"interest_marker,omitempty"`

	// Duplicates decides what happens when two rows share a name.
	Duplicates string `yaml:"duplicates,omitempty"`

	// MetricsPath, when set, receives run metrics in Prometheus text format.
	MetricsPath string `yaml:"metrics_path,omitempty"`

	// Debug enables verbose logging.
	Debug bool `yaml:"debug,omitempty"`

	// OutputPathDefaulted is set when no output_path was configured anywhere.
	OutputPathDefaulted bool `yaml:"-"`

	path string
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// DefaultConfig returns a Config with default values and no required keys set.
func DefaultConfig() *Config {
	return &Config{
		Encoding:       DefaultEncoding,
		OutputFormat:   DefaultOutputFormat,
		InterestMarker: DefaultInterestMarker,
		Duplicates:     DefaultDuplicates,
	}
}

// ResolvePath picks the config file: explicit argument, then $MATCHMAKER_CONFIG,
// then config.json in the working directory.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("MATCHMAKER_CONFIG"); v != "" {
		return v
	}
	return DefaultConfigFile
}

// LoadConfig loads a run configuration.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file at path
// 3. Environment variables (MATCHMAKER_CSV_PATH, MATCHMAKER_OUTPUT_PATH, ...)
//
// Relative paths in the file resolve against the file's directory, as does the
// default output path. Relative paths from the environment resolve against the
// working directory.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	cfg.resolvePaths()

	loadFromEnv(cfg)

	if cfg.OutputPath == "" {
		cfg.OutputPath = anchor(filepath.Dir(cfg.path), DefaultOutputPath)
		cfg.OutputPathDefaulted = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML or JSON file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("config file %s: %w", path, mmerrors.ErrNotFound)
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	cfg.path = path

	// Explicit empty values in the file fall back to defaults.
	if cfg.Encoding == "" {
		cfg.Encoding = DefaultEncoding
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = DefaultOutputFormat
	}
	if cfg.InterestMarker == "" {
		cfg.InterestMarker = DefaultInterestMarker
	}
	if cfg.Duplicates == "" {
		cfg.Duplicates = DefaultDuplicates
	}

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("MATCHMAKER_CSV_PATH"); v != "" {
		cfg.CSVPath = ExpandPath(v)
	}

	if v := os.Getenv("MATCHMAKER_OUTPUT_PATH"); v != "" {
		cfg.OutputPath = ExpandPath(v)
	}

	if v := os.Getenv("MATCHMAKER_ENCODING"); v != "" {
		cfg.Encoding = v
	}

	if v := os.Getenv("MATCHMAKER_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("MATCHMAKER_METRICS_PATH"); v != "" {
		cfg.MetricsPath = ExpandPath(v)
	}

	if v := os.Getenv("MATCHMAKER_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}
}

// resolvePaths expands ~ and anchors relative file paths at the config file's directory.
func (c *Config) resolvePaths() {
	base := ""
	if c.path != "" {
		base = filepath.Dir(c.path)
	}
	c.CSVPath = anchor(base, c.CSVPath)
	c.OutputPath = anchor(base, c.OutputPath)
	c.MetricsPath = anchor(base, c.MetricsPath)
}

func anchor(base, path string) string {
	if path == "" {
		return ""
	}
	path = ExpandPath(path)
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks that every key the pipeline needs is present.
// The returned error is a *mmerrors.ConfigError naming the key and section.
func (c *Config) Validate() error {
	if c.CSVPath == "" {
		return mmerrors.MissingKey("", "csv_path")
	}
	if c.NameColumnHeader == "" {
		return mmerrors.MissingKey("", "name_column_header")
	}
	if c.Regex == nil {
		return mmerrors.MissingSection("regex")
	}
	if c.Messages == nil {
		return mmerrors.MissingSection("messages")
	}

	if c.Regex.FindName == "" {
		return mmerrors.MissingKey("regex", "find_name")
	}
	if c.Regex.ContactMethods == "" {
		return mmerrors.MissingKey("regex", "contact_methods")
	}

	if c.Messages.Matched == nil {
		return mmerrors.MissingKey("messages", "matched")
	}
	if c.Messages.NotMatched == nil {
		return mmerrors.MissingKey("messages", "not_matched")
	}
	if c.Messages.Matched.Pre == nil {
		return mmerrors.MissingKey("matched", "pre")
	}
	if c.Messages.Matched.Post == nil {
		return mmerrors.MissingKey("matched", "post")
	}

	if !c.OutputFormat.IsValid() {
		return invalidValue("output_format", string(c.OutputFormat), "text, json, or yaml")
	}

	switch c.Duplicates {
	case DuplicatesOverwrite, DuplicatesKeepFirst, DuplicatesReject:
	default:
		return invalidValue("duplicates", c.Duplicates, "overwrite, keep_first, or reject")
	}

	return nil
}

func invalidValue(key, got, want string) error {
	return &mmerrors.ConfigError{
		Code:    mmerrors.CodeInvalidValue,
		Key:     key,
		Message: fmt.Sprintf("invalid value %q (must be %s)", got, want),
		Cause:   mmerrors.ErrValidation,
	}
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}
