package buildinfo

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestGet_ReturnsCorrectDefaults(t *testing.T) {
	info := Get("matchmaker")

	if info.Name != "matchmaker" {
		t.Errorf("expected Name='matchmaker', got %q", info.Name)
	}
	if info.Version != "dev" {
		t.Errorf("expected Version='dev', got %q", info.Version)
	}
	if info.Commit == "" {
		t.Error("expected Commit to be non-empty")
	}
	if info.BuildTime != "unknown" {
		t.Errorf("expected BuildTime='unknown', got %q", info.BuildTime)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected GoVersion=%q, got %q", runtime.Version(), info.GoVersion)
	}
}

func TestGet_StampedCommitWins(t *testing.T) {
	origCommit := Commit
	defer func() { Commit = origCommit }()

	Commit = "abc123d"
	if got := Get("matchmaker").Commit; got != "abc123d" {
		t.Errorf("expected Commit='abc123d', got %q", got)
	}
}

func TestString_DefaultFormat(t *testing.T) {
	result := String()
	expected := "dev (unknown, unknown)"

	if result != expected {
		t.Errorf("expected String()=%q, got %q", expected, result)
	}
}

func TestString_CustomValues(t *testing.T) {
	// Save original values
	origVersion := Version
	origCommit := Commit
	origBuildTime := BuildTime

	// Restore after test
	defer func() {
		Version = origVersion
		Commit = origCommit
		BuildTime = origBuildTime
	}()

	// Set custom values
	Version = "v1.2.3"
	Commit = "abc123d"
	BuildTime = "2026-02-07T10:30:00Z"

	result := String()
	expected := "v1.2.3 (abc123d, 2026-02-07T10:30:00Z)"

	if result != expected {
		t.Errorf("expected String()=%q, got %q", expected, result)
	}
}

func TestInfo_JSONSerialization(t *testing.T) {
	info := Info{
		Name:      "matchmaker",
		Version:   "v1.0.0",
		Commit:    "abcd1234",
		BuildTime: "2026-01-01T00:00:00Z",
		GoVersion: "go1.24.0",
	}

	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("failed to marshal Info: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v", err)
	}

	expectedKeys := map[string]string{
		"name":       "matchmaker",
		"version":    "v1.0.0",
		"commit":     "abcd1234",
		"build_time": "2026-01-01T00:00:00Z",
		"go_version": "go1.24.0",
	}

	for key, expectedValue := range expectedKeys {
		value, ok := decoded[key]
		if !ok {
			t.Errorf("missing key %q in JSON output", key)
			continue
		}
		if value != expectedValue {
			t.Errorf("key %q: expected %q, got %v", key, expectedValue, value)
		}
	}

	// Verify no extra keys
	if len(decoded) != len(expectedKeys) {
		t.Errorf("expected %d keys in JSON, got %d", len(expectedKeys), len(decoded))
	}
}

func TestInfo_Write(t *testing.T) {
	info := Info{
		Name:      "matchmaker",
		Version:   "v1.0.0",
		Commit:    "abcd1234",
		BuildTime: "2026-01-01T00:00:00Z",
		GoVersion: "go1.24.0",
	}

	var text bytes.Buffer
	if err := info.Write(&text, ""); err != nil {
		t.Fatalf("Write(text) error = %v", err)
	}
	expected := "matchmaker v1.0.0 (abcd1234, 2026-01-01T00:00:00Z, go1.24.0)\n"
	if text.String() != expected {
		t.Errorf("expected %q, got %q", expected, text.String())
	}

	var js bytes.Buffer
	if err := info.Write(&js, "json"); err != nil {
		t.Fatalf("Write(json) error = %v", err)
	}
	var fromJSON Info
	if err := json.Unmarshal(js.Bytes(), &fromJSON); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if fromJSON != info {
		t.Errorf("JSON decoded %+v, want %+v", fromJSON, info)
	}

	var ym bytes.Buffer
	if err := info.Write(&ym, "yaml"); err != nil {
		t.Fatalf("Write(yaml) error = %v", err)
	}
	if !strings.Contains(ym.String(), "build_time: \"2026-01-01T00:00:00Z\"") && !strings.Contains(ym.String(), "build_time: 2026-01-01T00:00:00Z") {
		t.Errorf("unexpected YAML output:\n%s", ym.String())
	}
	var fromYAML Info
	if err := yaml.Unmarshal(ym.Bytes(), &fromYAML); err != nil {
		t.Fatalf("failed to decode YAML: %v", err)
	}
	if fromYAML != info {
		t.Errorf("YAML decoded %+v, want %+v", fromYAML, info)
	}
}
