package geometry

import (
	"strings"

	"github.com/nadhir/smartsign/internal/detector"
)

const (
	// validationThreshold is the minimum match score for a prediction to
	// count as geometrically validated.
	validationThreshold = 0.5

	// lowVisibilityDiscount is applied instead of strict validation when
	// too few landmarks are visible. Unreliable geometry is not
	// necessarily wrong geometry.
	lowVisibilityDiscount = 0.9
)

// Result is the outcome of cross-checking one prediction against landmark
// geometry. AdjustedConfidence and GeometryScore are always in [0,1].
type Result struct {
	Validated          bool    `json:"validated"`
	GeometryScore      float64 `json:"geometry_score"`
	AdjustedConfidence float64 `json:"adjusted_confidence"`
	Reason             string  `json:"reason"`
}

// Validator scores classifier predictions against a table of expected
// geometric signatures. It is stateless after construction and safe for
// concurrent use.
type Validator struct {
	rules map[string]Rule
}

// NewValidator creates a Validator with the given rule table. A nil table
// uses the built-in defaults.
func NewValidator(rules map[string]Rule) *Validator {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Validator{rules: rules}
}

// Validate scores how well the landmarks' geometric features match the
// predicted label's expected signature and adjusts the confidence
// accordingly. Labels without a rule pass through untouched.
func (v *Validator) Validate(landmarks [detector.NumLandmarks]detector.Landmark, predictedLabel string, confidence float64) Result {
	rule, ok := v.rules[strings.ToUpper(predictedLabel)]
	if !ok {
		return Result{
			Validated:          true,
			GeometryScore:      1.0,
			AdjustedConfidence: clamp01(confidence),
			Reason:             "no geometric rules defined",
		}
	}

	features := ExtractFeatures(landmarks)
	if features.InsufficientVisibility {
		return Result{
			Validated:          true,
			GeometryScore:      lowVisibilityDiscount,
			AdjustedConfidence: clamp01(confidence * lowVisibilityDiscount),
			Reason:             "low visibility, skipping validation",
		}
	}

	score := matchScore(features, rule)
	validated := score > validationThreshold

	reason := "geometry match"
	if !validated {
		reason = "geometry mismatch"
	}

	return Result{
		Validated:          validated,
		GeometryScore:      score,
		AdjustedConfidence: clamp01(confidence * score),
		Reason:             reason,
	}
}

// matchScore averages the per-aspect scores of the rule: the fraction of
// matching finger-extension bits, and 1.0 when openness is inside the
// allowed bound or a proportional penalty when outside.
func matchScore(features Features, rule Rule) float64 {
	var scores []float64

	if rule.FingersExtended != nil {
		matches := 0
		for i, expected := range rule.FingersExtended {
			if features.FingersExtended[i] == expected {
				matches++
			}
		}
		scores = append(scores, float64(matches)/5.0)
	}

	if rule.OpennessMin != nil {
		if features.HandOpenness >= *rule.OpennessMin {
			scores = append(scores, 1.0)
		} else {
			scores = append(scores, features.HandOpenness / *rule.OpennessMin)
		}
	}

	if rule.OpennessMax != nil {
		if features.HandOpenness <= *rule.OpennessMax {
			scores = append(scores, 1.0)
		} else {
			scores = append(scores, *rule.OpennessMax/features.HandOpenness)
		}
	}

	if len(scores) == 0 {
		return 1.0
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
