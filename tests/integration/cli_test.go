// CLI integration tests for takeoff.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// TestMain builds the takeoff binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "takeoff-test-*")
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}
	binPath := filepath.Join(tmpDir, "takeoff")
	SetTakeoffBin(binPath)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/takeoff")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		SetBuildErr(&BuildError{Err: err, Output: string(output)})
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// mainHouse creates the MainHouse boundary: base {1,2}, A->{10}, G->{20},
// S->{30}.
func mainHouse(env *TestEnv) {
	env.MustRunTakeoff("boundary", "create", "MainHouse", "--plan", "Plan B")
	env.MustRunTakeoff("boundary", "base", "MainHouse", "1,2")
	env.MustRunTakeoff("boundary", "assign", "MainHouse", "A", "10")
	env.MustRunTakeoff("boundary", "assign", "MainHouse", "G", "20")
	env.MustRunTakeoff("boundary", "assign", "MainHouse", "S", "30")
}

func TestInit(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRunTakeoff("init")
	if !strings.Contains(result.Stdout, "initialized") {
		t.Errorf("unexpected init output: %q", result.Stdout)
	}

	for _, name := range []string{"boundaries.jsonl", "plans.jsonl", "assignments.jsonl", "takeoff.db"} {
		if _, err := os.Stat(filepath.Join(env.DataDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestVersion(t *testing.T) {
	env := NewTestEnv(t)
	result := env.MustRunTakeoff("version")
	if !strings.HasPrefix(result.Stdout, "takeoff v") {
		t.Errorf("unexpected version output: %q", result.Stdout)
	}
}

func TestBoundaryResolution(t *testing.T) {
	env := NewTestEnv(t)
	mainHouse(env)

	res := ParseJSON[Resolution](t, env.MustRunTakeoff("--json", "boundary", "resolve", "MainHouse", "AGS").Stdout)
	if want := []int{1, 2, 10, 20, 30}; !reflect.DeepEqual(res.Colors, want) {
		t.Errorf("AGS resolved to %v, want %v", res.Colors, want)
	}

	env.MustRunTakeoff("boundary", "assign", "MainHouse", "H", "40")
	res = ParseJSON[Resolution](t, env.MustRunTakeoff("--json", "boundary", "resolve", "MainHouse", "AGH").Stdout)
	if want := []int{1, 2, 10, 20, 40}; !reflect.DeepEqual(res.Colors, want) {
		t.Errorf("AGH resolved to %v, want %v", res.Colors, want)
	}

	diff := ParseJSON[Resolution](t, env.MustRunTakeoff("--json", "boundary", "diff", "MainHouse", "AGS", "AGH").Stdout)
	if want := []int{30, 40}; !reflect.DeepEqual(diff.Colors, want) {
		t.Errorf("diff = %v, want %v", diff.Colors, want)
	}

	self := ParseJSON[Resolution](t, env.MustRunTakeoff("--json", "boundary", "diff", "MainHouse", "AGS", "AGS").Stdout)
	if len(self.Colors) != 0 {
		t.Errorf("self diff should be empty, got %v", self.Colors)
	}

	records := ReadJSONLFile[Boundary](t, filepath.Join(env.DataDir, "boundaries.jsonl"))
	if len(records) != 1 || records[0].Name != "MainHouse" {
		t.Fatalf("unexpected boundaries.jsonl: %+v", records)
	}
	if got := records[0].Overrides["H"]; !reflect.DeepEqual(got, []int{40}) {
		t.Errorf("persisted H override = %v", got)
	}
}

func TestBoundaryLifecycle(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunTakeoff("boundary", "create", "Garage", "--plan", "Plan A")

	b := ParseJSON[Boundary](t, env.MustRunTakeoff("--json", "boundary", "deactivate", "Garage").Stdout)
	if b.Active {
		t.Error("Garage should be inactive")
	}

	list := ParseJSON[[]Boundary](t, env.MustRunTakeoff("--json", "boundary", "list", "--plan", "Plan A").Stdout)
	if len(list) != 1 {
		t.Fatalf("expected 1 boundary on Plan A, got %d", len(list))
	}

	env.MustRunTakeoff("boundary", "delete", "Garage")
	if r := env.RunTakeoff("boundary", "show", "Garage"); r.ExitCode != 1 {
		t.Errorf("show after delete: exit %d, want 1", r.ExitCode)
	}

	// The name is free again.
	env.MustRunTakeoff("boundary", "create", "Garage")
}

func TestUserErrorsExitOne(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunTakeoff("boundary", "create", "Den")

	tests := []struct {
		name string
		args []string
	}{
		{"duplicate boundary", []string{"boundary", "create", "Den"}},
		{"missing boundary", []string{"boundary", "resolve", "Attic", "AGS"}},
		{"bad color", []string{"boundary", "base", "Den", "1,300"}},
		{"bad component", []string{"boundary", "assign", "Den", "AB", "1"}},
		{"bad elevation", []string{"plan", "elevation", "Den", "XYZ"}},
		{"unassigned color", []string{"color", "remove", "9"}},
		{"missing arguments", []string{"boundary", "show"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.RunTakeoff(tt.args...)
			if r.ExitCode != 1 {
				t.Errorf("exit code %d, want 1 (stderr: %s)", r.ExitCode, r.Stderr)
			}
		})
	}
}

func TestPlans(t *testing.T) {
	env := NewTestEnv(t)

	p := ParseJSON[Plan](t, env.MustRunTakeoff("--json", "plan", "attach", "First Floor", "/plans/first.dwg").Stdout)
	if p.Elevation != "AGS" || !p.Loaded || p.HostRef == "" {
		t.Errorf("unexpected attached plan: %+v", p)
	}

	toggled := ParseJSON[map[string]any](t, env.MustRunTakeoff("--json", "plan", "toggle", "First Floor").Stdout)
	if toggled["loaded"] != false {
		t.Errorf("toggle should unload, got %v", toggled)
	}

	vis := ParseJSON[map[string]bool](t, env.MustRunTakeoff("--json", "plan", "elevation", "First Floor", "HNB").Stdout)
	if !vis["FRAMING_ROOF_HIP"] || vis["FRAMING_GARAGE"] || !vis["SIDING_BRICK"] || vis["SIDING_STUCCO"] {
		t.Errorf("unexpected visibility: %v", vis)
	}

	plans := ParseJSON[[]Plan](t, env.MustRunTakeoff("--json", "plan", "list").Stdout)
	if len(plans) != 1 || plans[0].Elevation != "HNB" || plans[0].Loaded {
		t.Errorf("unexpected plans: %+v", plans)
	}
}

func TestQuantitiesAndExport(t *testing.T) {
	env := NewTestEnv(t)
	mainHouse(env)
	env.MustRunTakeoff("color", "assign", "1", "Drywall", "--measure", "SF", "--cost", "2", "--cell", "B2")
	env.MustRunTakeoff("color", "assign", "10", "Roofing", "--measure", "LF_HIP", "--cost", "1", "--cell", "B3")
	env.MustRunTakeoff("color", "assign", "30", "Stucco", "--cost", "4", "--inactive")

	source := filepath.Join(env.TempDir, "measured.json")
	if err := os.WriteFile(source, []byte(`{"1": 50, "10": 10, "30": 7}`), 0644); err != nil {
		t.Fatal(err)
	}

	report := ParseJSON[Report](t, env.MustRunTakeoff("--json", "quantities", "MainHouse", "AGS", "--source", source).Stdout)
	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 rows (inactive stucco skipped), got %+v", report.Rows)
	}
	if report.Rows[0].Color != 1 || report.Rows[0].Quantity != 50 || report.Rows[0].Total != "100" {
		t.Errorf("unexpected drywall row: %+v", report.Rows[0])
	}
	if report.Rows[1].Color != 10 || report.Rows[1].Quantity <= 14.14 || report.Rows[1].Quantity >= 14.15 {
		t.Errorf("unexpected hip row: %+v", report.Rows[1])
	}

	workbook := filepath.Join(env.TempDir, "feeder.xlsx")
	out := ParseJSON[map[string]any](t, env.MustRunTakeoff("--json", "export", workbook,
		"--boundary", "MainHouse", "--version", "AGS", "--source", source).Stdout)
	if out["written"] != float64(2) {
		t.Errorf("expected 2 cells written, got %v", out["written"])
	}
	if _, err := os.Stat(workbook); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestPresetRoundTrip(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunTakeoff("color", "assign", "5", "Framing", "--measure", "LF", "--cost", "3.25")
	preset := filepath.Join(env.TempDir, "colors.csv")
	env.MustRunTakeoff("color", "preset-save", preset)

	env.MustRunTakeoff("color", "remove", "5")
	env.MustRunTakeoff("color", "preset-load", preset)

	list := ParseJSON[[]map[string]any](t, env.MustRunTakeoff("--json", "color", "list").Stdout)
	if len(list) != 1 || list[0]["material_name"] != "Framing" || list[0]["unit_cost"] != "3.25" {
		t.Errorf("unexpected assignments after preset load: %v", list)
	}
}
