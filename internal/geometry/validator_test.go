package geometry

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nadhir/smartsign/internal/detector"
)

func TestValidate_NoRuleForLabel(t *testing.T) {
	v := NewValidator(nil)

	result := v.Validate(detector.FistDetection().Landmarks, "RUMAH", 0.8)

	if !result.Validated {
		t.Error("unruled labels should always validate")
	}
	if result.GeometryScore != 1.0 {
		t.Errorf("expected score 1.0, got %v", result.GeometryScore)
	}
	if result.AdjustedConfidence != 0.8 {
		t.Errorf("confidence should pass through untouched, got %v", result.AdjustedConfidence)
	}
}

func TestValidate_OpenPalmMatchesTolong(t *testing.T) {
	v := NewValidator(nil)

	result := v.Validate(detector.OpenPalmDetection().Landmarks, "TOLONG", 0.7)

	if !result.Validated {
		t.Fatalf("open palm should validate TOLONG: %+v", result)
	}
	if result.GeometryScore != 1.0 {
		t.Errorf("expected perfect score, got %v", result.GeometryScore)
	}
	if result.AdjustedConfidence != 0.7 {
		t.Errorf("perfect match should not change confidence, got %v", result.AdjustedConfidence)
	}
}

func TestValidate_FistMismatchesTolong(t *testing.T) {
	v := NewValidator(nil)

	result := v.Validate(detector.FistDetection().Landmarks, "TOLONG", 0.7)

	if result.Validated {
		t.Fatalf("fist should not validate TOLONG: %+v", result)
	}
	if result.GeometryScore > 0.5 {
		t.Errorf("mismatch score should be at most 0.5, got %v", result.GeometryScore)
	}
	if result.AdjustedConfidence >= 0.7 {
		t.Errorf("mismatch should reduce confidence, got %v", result.AdjustedConfidence)
	}
}

func TestValidate_PointingIndexMatchesSaya(t *testing.T) {
	v := NewValidator(nil)

	result := v.Validate(detector.PointingIndexDetection().Landmarks, "SAYA", 0.6)

	if !result.Validated {
		t.Fatalf("pointing index should validate SAYA: %+v", result)
	}
}

func TestValidate_LowVisibilityDiscount(t *testing.T) {
	v := NewValidator(nil)

	result := v.Validate(detector.LowVisibilityDetection().Landmarks, "TOLONG", 0.8)

	if !result.Validated {
		t.Error("low visibility should skip strict validation")
	}
	if result.GeometryScore != 0.9 {
		t.Errorf("expected discount score 0.9, got %v", result.GeometryScore)
	}
	if math.Abs(result.AdjustedConfidence-0.72) > 1e-9 {
		t.Errorf("expected 0.8*0.9=0.72, got %v", result.AdjustedConfidence)
	}
}

func TestValidate_LowercaseLabelNormalized(t *testing.T) {
	v := NewValidator(nil)

	upper := v.Validate(detector.OpenPalmDetection().Landmarks, "TOLONG", 0.7)
	lower := v.Validate(detector.OpenPalmDetection().Landmarks, "tolong", 0.7)

	if upper != lower {
		t.Errorf("label case should not matter: %+v vs %+v", upper, lower)
	}
}

func TestLoadRules_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")

	content := `
MAKAN:
  fingers_extended: [1, 1, 0, 0, 0]
TOLONG:
  openness_min: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}

	makan, ok := rules["MAKAN"]
	if !ok {
		t.Fatal("expected MAKAN rule from file")
	}
	if makan.FingersExtended == nil || *makan.FingersExtended != [5]int{1, 1, 0, 0, 0} {
		t.Errorf("unexpected MAKAN pattern: %+v", makan.FingersExtended)
	}

	// File entry replaces the default wholesale
	tolong := rules["TOLONG"]
	if tolong.OpennessMin == nil || *tolong.OpennessMin != 0.5 {
		t.Errorf("expected overridden openness_min 0.5, got %+v", tolong.OpennessMin)
	}
	if tolong.FingersExtended != nil {
		t.Error("file rule should replace the default entirely")
	}

	// Untouched defaults still present
	if _, ok := rules["SAYA"]; !ok {
		t.Error("default SAYA rule should survive the merge")
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing rules file")
	}
}
