package geometry

import (
	"testing"

	"github.com/nadhir/smartsign/internal/detector"
)

func TestExtractFeatures_OpenPalm(t *testing.T) {
	f := ExtractFeatures(detector.OpenPalmDetection().Landmarks)

	if f.InsufficientVisibility {
		t.Fatal("open palm fixture should have sufficient visibility")
	}
	for i, extended := range f.FingersExtended {
		if extended != 1 {
			t.Errorf("finger %d should be extended, got %v", i, f.FingersExtended)
			break
		}
	}
	if f.HandOpenness <= 0.6 {
		t.Errorf("open palm openness should exceed 0.6, got %v", f.HandOpenness)
	}
}

func TestExtractFeatures_Fist(t *testing.T) {
	f := ExtractFeatures(detector.FistDetection().Landmarks)

	if f.InsufficientVisibility {
		t.Fatal("fist fixture should have sufficient visibility")
	}
	for i, extended := range f.FingersExtended {
		if extended != 0 {
			t.Errorf("finger %d should be bent, got %v", i, f.FingersExtended)
			break
		}
	}
	if f.HandOpenness >= 0.3 {
		t.Errorf("fist openness should be below 0.3, got %v", f.HandOpenness)
	}
}

func TestExtractFeatures_PointingIndex(t *testing.T) {
	f := ExtractFeatures(detector.PointingIndexDetection().Landmarks)

	want := [5]int{0, 1, 0, 0, 0}
	if f.FingersExtended != want {
		t.Errorf("expected pattern %v, got %v", want, f.FingersExtended)
	}
}

func TestExtractFeatures_LowVisibility(t *testing.T) {
	f := ExtractFeatures(detector.LowVisibilityDetection().Landmarks)

	if !f.InsufficientVisibility {
		t.Error("expected insufficient visibility flag")
	}
}

func TestExtractFeatures_Deterministic(t *testing.T) {
	landmarks := detector.OpenPalmDetection().Landmarks

	first := ExtractFeatures(landmarks)
	second := ExtractFeatures(landmarks)

	if first != second {
		t.Errorf("identical landmarks produced different features: %+v vs %+v", first, second)
	}
}
