package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/liftplan/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
)

const squatYAML = `name: Block 1
exercises:
  - name: Squat
    trainingMax: 225
    weekDetails:
      - {pct: 85, sets: 3, reps: 5}
      - {pct: 90, sets: 3, reps: 3}
      - {pct: 95, sets: 1, reps: 1}
  - name: Bench
    trainingMax: "185"
    weekDetails:
      - {pct: 85, sets: 3, reps: 5}
      - {pct: 90, sets: 3, reps: 3}
      - {pct: 95, sets: 1, reps: 1}
`

// TestDecodePlanFile verifies documents and bare lists decode the same way
// in both formats, numbers and strings alike.
func TestDecodePlanFile(t *testing.T) {
	squat := models.Exercise{
		Name:        "Squat",
		TrainingMax: "225",
		WeekDetails: []models.WeekDetail{{Pct: "85", Sets: "3", Reps: "5"}},
	}

	tests := []struct {
		name     string
		ext      string
		data     string
		wantName string
	}{
		{"json document", ".json", `{"name":"Block 1","exercises":[{"name":"Squat","trainingMax":225,"weekDetails":[{"pct":85,"sets":"3","reps":5}]}]}`, "Block 1"},
		{"json list", ".json", ` [{"name":"Squat","trainingMax":"225","weekDetails":[{"pct":"85","sets":3,"reps":"5"}]}]`, ""},
		{"yaml document", ".yaml", "name: Block 1\nexercises:\n  - name: Squat\n    trainingMax: 225\n    weekDetails:\n      - {pct: 85, sets: 3, reps: 5}\n", "Block 1"},
		{"yaml list", ".yml", "- name: Squat\n  trainingMax: 225\n  weekDetails:\n    - {pct: 85, sets: 3, reps: 5}\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf, err := DecodePlanFile([]byte(tt.data), tt.ext)
			if err != nil {
				t.Fatal(err)
			}
			if pf.Name != tt.wantName {
				t.Errorf("name = %q, want %q", pf.Name, tt.wantName)
			}
			if len(pf.Exercises) != 1 {
				t.Fatalf("exercises = %d, want 1", len(pf.Exercises))
			}
			if pf.Exercises[0].ID == uuid.Nil {
				t.Error("exercise ID not assigned")
			}
			if diff := cmp.Diff(squat, pf.Exercises[0], cmpopts.IgnoreFields(models.Exercise{}, "ID")); diff != "" {
				t.Errorf("exercise (-want +got):\n%s", diff)
			}
		})
	}
}

// TestDecodePlanFileEmpty verifies an empty file is an empty plan, not an
// error.
func TestDecodePlanFileEmpty(t *testing.T) {
	for _, ext := range []string{".json", ".yaml"} {
		pf, err := DecodePlanFile([]byte("\n"), ext)
		if err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
		if len(pf.Exercises) != 0 {
			t.Errorf("%s: exercises = %d, want 0", ext, len(pf.Exercises))
		}
	}
}

// TestReadPlanFile verifies the file name stands in for a missing plan
// name and that other extensions are refused.
func TestReadPlanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deload.yaml")
	if err := os.WriteFile(path, []byte("- name: Squat\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	pf, err := ReadPlanFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if pf.Name != "deload" {
		t.Errorf("name = %q, want deload", pf.Name)
	}

	if _, err := ReadPlanFile(filepath.Join(dir, "notes.txt")); !errors.Is(err, ErrUnsupportedFile) {
		t.Errorf("err = %v, want ErrUnsupportedFile", err)
	}
}

// TestReadPlanFileMalformed verifies a parse error names the file.
func TestReadPlanFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"exercises": [`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPlanFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIsPlanFile(t *testing.T) {
	tests := map[string]bool{
		"plan.json":        true,
		"plan.YAML":        true,
		"dir/plan.yml":     true,
		"plan.xlsx":        false,
		".plan.yaml.swp":   false,
		".hidden.yaml":     false,
		"workout_plan.txt": false,
	}
	for path, want := range tests {
		if got := IsPlanFile(path); got != want {
			t.Errorf("IsPlanFile(%q) = %v, want %v", path, got, want)
		}
	}
}
