// Package integration provides CLI integration tests for takeoff.
package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	// takeoffBin is the path to the built takeoff binary.
	takeoffBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// SetTakeoffBin sets the path to the takeoff binary (called from TestMain).
func SetTakeoffBin(path string) {
	takeoffBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// TestEnv provides an isolated test environment with its own config and data directory.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build takeoff: %v", buildErr)
	}
	if takeoffBin == "" {
		t.Fatal("takeoff binary not built (takeoffBin is empty)")
	}

	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	configDir := filepath.Join(tempDir, "config")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	configContent := "backend: sqlite\ndata_dir: " + dataDir + "\nlog_level: error\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  configDir,
		DataDir: dataDir,
	}
}

// CmdResult holds the result of a takeoff command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunTakeoff executes the takeoff CLI with the given arguments.
func (e *TestEnv) RunTakeoff(args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.Config}, args...)
	cmd := exec.Command(takeoffBin, allArgs...)
	cmd.Env = append(os.Environ(), "TAKEOFF_DATA_DIR=", "TAKEOFF_CONFIG_DIR=")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run takeoff: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunTakeoff executes the takeoff CLI and fails the test if it returns non-zero.
func (e *TestEnv) MustRunTakeoff(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunTakeoff(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("takeoff %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// Boundary is the JSON shape of a boundary.
type Boundary struct {
	Name           string           `json:"name"`
	AttachmentPlan string           `json:"attachment_plan"`
	BaseColors     []int            `json:"base_colors"`
	Overrides      map[string][]int `json:"overrides"`
	Active         bool             `json:"active"`
}

// Resolution is the JSON shape of boundary resolve and diff output.
type Resolution struct {
	Boundary string `json:"boundary"`
	Colors   []int  `json:"colors"`
}

// Plan is the JSON shape of an attached plan.
type Plan struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Elevation string `json:"elevation"`
	Loaded    bool   `json:"loaded"`
	HostRef   string `json:"host_ref"`
}

// Report is the JSON shape of quantities output.
type Report struct {
	Rows []struct {
		Color    int     `json:"color"`
		Material string  `json:"material"`
		Quantity float64 `json:"quantity"`
		Total    string  `json:"total"`
	} `json:"rows"`
	Total string `json:"total"`
}

// ReadJSONLFile reads a JSONL file (one JSON object per line) and returns a slice.
func ReadJSONLFile[T any](t *testing.T, path string) []T {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open JSONL file %s: %v", path, err)
	}
	defer f.Close()

	var results []T
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record T
		if err := json.Unmarshal(line, &record); err != nil {
			t.Fatalf("failed to parse JSONL line in %s: %v", path, err)
		}
		results = append(results, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to scan JSONL file %s: %v", path, err)
	}
	return results
}
