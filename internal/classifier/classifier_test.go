package classifier

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/nadhir/smartsign/internal/detector"
	"github.com/nadhir/smartsign/internal/geometry"
)

// stubClient returns canned predictions per model ID.
type stubClient struct {
	responses map[string][]Prediction
	errs      map[string]error
	calls     []string
}

func (s *stubClient) Infer(ctx context.Context, imageJPEG []byte, modelID string) ([]Prediction, error) {
	s.calls = append(s.calls, modelID)
	if err, ok := s.errs[modelID]; ok {
		return nil, err
	}
	return s.responses[modelID], nil
}

func singleModel() []ModelConfig {
	return []ModelConfig{{ID: "model-a/1", Name: "Model A", Color: "#00FFD1", Boost: 1.0}}
}

func TestClassify_MatchedInVocabulary(t *testing.T) {
	client := &stubClient{responses: map[string][]Prediction{
		"model-a/1": {{Class: "tolong", Confidence: 0.8}},
	}}
	c := New(client, singleModel(), 0, nil, nil)

	outcome := c.Classify(context.Background(), []byte("jpeg"), nil)

	if outcome.Status != StatusMatched {
		t.Fatalf("expected matched outcome, got %v (%s)", outcome.Status, outcome.Reason)
	}

	cand := outcome.Candidate
	if cand.Label != "TOLONG" {
		t.Errorf("expected normalized label TOLONG, got %q", cand.Label)
	}
	if !cand.InVocabulary {
		t.Error("TOLONG should be in vocabulary")
	}
	if cand.RawConfidence != 0.8 {
		t.Errorf("raw confidence should be preserved, got %v", cand.RawConfidence)
	}
	if math.Abs(cand.Confidence-0.8*VocabularyBoost) > 1e-9 {
		t.Errorf("expected boosted confidence %v, got %v", 0.8*VocabularyBoost, cand.Confidence)
	}
	if len(cand.Adjustments) != 1 || cand.Adjustments[0].Name != "vocabulary_boost" {
		t.Errorf("expected one vocabulary_boost adjustment, got %+v", cand.Adjustments)
	}
}

func TestClassify_BoostCappedAtOne(t *testing.T) {
	client := &stubClient{responses: map[string][]Prediction{
		"model-a/1": {{Class: "SAYA", Confidence: 0.95}},
	}}
	c := New(client, singleModel(), 0, nil, nil)

	outcome := c.Classify(context.Background(), []byte("jpeg"), nil)

	if outcome.Candidate.Confidence != 1.0 {
		t.Errorf("boosted confidence should clamp at 1.0, got %v", outcome.Candidate.Confidence)
	}
}

func TestClassify_FiltersFalsePositives(t *testing.T) {
	for _, label := range []string{"THE", "IMPORTANT", "hear"} {
		t.Run(label, func(t *testing.T) {
			client := &stubClient{responses: map[string][]Prediction{
				"model-a/1": {{Class: label, Confidence: 0.9}},
			}}
			c := New(client, singleModel(), 0, nil, nil)

			outcome := c.Classify(context.Background(), []byte("jpeg"), nil)

			if outcome.Status != StatusFiltered {
				t.Errorf("expected %q filtered, got %v", label, outcome.Status)
			}
			if outcome.Candidate != nil {
				t.Error("filtered outcome should carry no candidate")
			}
			if outcome.Reason == "" {
				t.Error("filtered outcome should name a reason")
			}
		})
	}
}

func TestClassify_BelowThresholdIsEmpty(t *testing.T) {
	client := &stubClient{responses: map[string][]Prediction{
		"model-a/1": {{Class: "TOLONG", Confidence: 0.1}},
	}}
	c := New(client, singleModel(), 0, nil, nil)

	outcome := c.Classify(context.Background(), []byte("jpeg"), nil)

	if outcome.Status != StatusEmpty {
		t.Errorf("expected empty outcome below threshold, got %v", outcome.Status)
	}
}

func TestClassify_ModelFailureAbsorbed(t *testing.T) {
	models := []ModelConfig{
		{ID: "broken/1", Name: "Broken", Color: "#FF0000", Boost: 1.0},
		{ID: "working/1", Name: "Working", Color: "#00FF00", Boost: 1.0},
	}
	client := &stubClient{
		responses: map[string][]Prediction{
			"working/1": {{Class: "SAYA", Confidence: 0.7}},
		},
		errs: map[string]error{
			"broken/1": errors.New("inference timeout"),
		},
	}
	c := New(client, models, 0, nil, nil)

	outcome := c.Classify(context.Background(), []byte("jpeg"), nil)

	if outcome.Status != StatusMatched {
		t.Fatalf("one broken model should not prevent classification, got %v", outcome.Status)
	}
	if outcome.Candidate.ModelName != "Working" {
		t.Errorf("expected result from working model, got %q", outcome.Candidate.ModelName)
	}
	if len(client.calls) != 2 {
		t.Errorf("both models should be queried, got calls %v", client.calls)
	}
}

func TestClassify_AllModelsFailIsEmpty(t *testing.T) {
	client := &stubClient{errs: map[string]error{
		"model-a/1": errors.New("down"),
	}}
	c := New(client, singleModel(), 0, nil, nil)

	outcome := c.Classify(context.Background(), []byte("jpeg"), nil)

	if outcome.Status != StatusEmpty {
		t.Errorf("expected empty outcome when every model fails, got %v", outcome.Status)
	}
}

func TestClassify_SelectionUsesBoostedScore(t *testing.T) {
	models := []ModelConfig{
		{ID: "plain/1", Name: "Plain", Color: "#111111", Boost: 1.0},
		{ID: "boosted/1", Name: "Boosted", Color: "#222222", Boost: 1.3},
	}
	client := &stubClient{responses: map[string][]Prediction{
		"plain/1":   {{Class: "SAYA", Confidence: 0.75}},
		"boosted/1": {{Class: "TOLONG", Confidence: 0.70}},
	}}
	c := New(client, models, 0, nil, nil)

	outcome := c.Classify(context.Background(), []byte("jpeg"), nil)

	// 0.70*1.3 beats 0.75*1.0, but the kept confidence is raw
	if outcome.Candidate.Label != "TOLONG" {
		t.Fatalf("expected boosted model to win, got %q", outcome.Candidate.Label)
	}
	if outcome.Candidate.RawConfidence != 0.70 {
		t.Errorf("kept confidence should be the raw value, got %v", outcome.Candidate.RawConfidence)
	}
}

func TestClassify_TieKeepsFirstModel(t *testing.T) {
	models := []ModelConfig{
		{ID: "first/1", Name: "First", Color: "#111111", Boost: 1.0},
		{ID: "second/1", Name: "Second", Color: "#222222", Boost: 1.0},
	}
	client := &stubClient{responses: map[string][]Prediction{
		"first/1":  {{Class: "SAYA", Confidence: 0.7}},
		"second/1": {{Class: "TOLONG", Confidence: 0.7}},
	}}
	c := New(client, models, 0, nil, nil)

	outcome := c.Classify(context.Background(), []byte("jpeg"), nil)

	if outcome.Candidate.ModelName != "First" {
		t.Errorf("ties should keep the first model's result, got %q", outcome.Candidate.ModelName)
	}
}

func TestClassify_GeometryPenaltyOnMismatch(t *testing.T) {
	client := &stubClient{responses: map[string][]Prediction{
		"model-a/1": {{Class: "TOLONG", Confidence: 0.8}},
	}}
	c := New(client, singleModel(), 0, geometry.NewValidator(nil), nil)

	// Fist landmarks against the open-palm TOLONG signature
	landmarks := detector.FistDetection().Landmarks
	outcome := c.Classify(context.Background(), []byte("jpeg"), &landmarks)

	if outcome.Status != StatusMatched {
		t.Fatalf("geometry mismatch should reduce, not reject: %v", outcome.Status)
	}

	cand := outcome.Candidate
	if cand.Validated {
		t.Error("fist should not validate TOLONG")
	}

	last := cand.Adjustments[len(cand.Adjustments)-1]
	if last.Name != "geometry_penalty" || last.Factor != GeometryPenalty {
		t.Errorf("expected geometry_penalty %v, got %+v", GeometryPenalty, last)
	}

	want := 0.8 * VocabularyBoost * GeometryPenalty
	if math.Abs(cand.Confidence-want) > 1e-9 {
		t.Errorf("expected confidence %v, got %v", want, cand.Confidence)
	}
}

func TestClassify_GeometryMatchLeavesConfidence(t *testing.T) {
	client := &stubClient{responses: map[string][]Prediction{
		"model-a/1": {{Class: "TOLONG", Confidence: 0.8}},
	}}
	c := New(client, singleModel(), 0, geometry.NewValidator(nil), nil)

	landmarks := detector.OpenPalmDetection().Landmarks
	outcome := c.Classify(context.Background(), []byte("jpeg"), &landmarks)

	cand := outcome.Candidate
	if !cand.Validated || cand.GeometryScore != 1.0 {
		t.Fatalf("open palm should fully validate TOLONG: %+v", cand)
	}

	// Only the vocabulary boost applies
	want := 0.8 * VocabularyBoost
	if math.Abs(cand.Confidence-want) > 1e-9 {
		t.Errorf("expected confidence %v, got %v", want, cand.Confidence)
	}
}
