package classifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/nadhir/smartsign/internal/detector"
	"github.com/nadhir/smartsign/internal/geometry"
)

// Confidence adjustment factors.
const (
	// VocabularyBoost rewards in-vocabulary predictions.
	VocabularyBoost = 1.15
	// GeometryPenalty is applied on a geometry mismatch instead of
	// rejecting the candidate; recall wins over precision in a live demo.
	GeometryPenalty = 0.8
	// DefaultMinConfidence is deliberately low to keep recall high.
	DefaultMinConfidence = 0.15
)

// ModelConfig describes one hosted model used for classification.
type ModelConfig struct {
	ID    string
	Name  string
	Color string
	// Boost is the per-model multiplier applied during cross-model
	// selection only; the kept confidence is the model's raw value.
	Boost float64
}

// DefaultModels returns the demo model set: the primary BIM recognition
// model.
func DefaultModels() []ModelConfig {
	return []ModelConfig{
		{
			ID:    "bim-recognition-x7qsz/10",
			Name:  "BIM v10",
			Color: "#00FFD1",
			Boost: 1.0,
		},
	}
}

// Adjustment is one named step of the confidence pipeline, recorded so the
// final number is auditable stage by stage.
type Adjustment struct {
	Name   string  `json:"name"`
	Factor float64 `json:"factor"`
	After  float64 `json:"after"`
}

// Candidate is a post-processed classification result for one hand crop.
type Candidate struct {
	Label         string       `json:"label"`
	RawConfidence float64      `json:"raw_confidence"`
	Confidence    float64      `json:"confidence"`
	ModelID       string       `json:"model_id"`
	ModelName     string       `json:"model_name"`
	Color         string       `json:"color"`
	InVocabulary  bool         `json:"in_vocabulary"`
	Validated     bool         `json:"validated"`
	GeometryScore float64      `json:"geometry_score"`
	Adjustments   []Adjustment `json:"adjustments"`
}

// Status distinguishes the possible classification outcomes so callers can
// never mistake "no data" for an error.
type Status string

const (
	// StatusMatched means a candidate survived thresholding and filtering.
	StatusMatched Status = "matched"
	// StatusFiltered means the best prediction was a known false positive.
	StatusFiltered Status = "filtered"
	// StatusEmpty means no prediction cleared the confidence threshold
	// (or every configured model failed).
	StatusEmpty Status = "empty"
)

// Outcome is the explicit result of classifying one crop.
type Outcome struct {
	Status    Status
	Candidate *Candidate
	Reason    string
}

// Classifier turns hand crops into sign candidates via the hosted service,
// then filters and re-weights them with vocabulary and geometry knowledge.
// It is safe for concurrent use.
type Classifier struct {
	client        InferenceClient
	models        []ModelConfig
	minConfidence float64
	validator     *geometry.Validator
	log           *zap.Logger
}

// New creates a Classifier. A nil models slice uses DefaultModels, a zero
// minConfidence uses DefaultMinConfidence, and a nil validator disables
// geometric cross-checking.
func New(client InferenceClient, models []ModelConfig, minConfidence float64, validator *geometry.Validator, log *zap.Logger) *Classifier {
	if models == nil {
		models = DefaultModels()
	}
	if minConfidence == 0 {
		minConfidence = DefaultMinConfidence
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{
		client:        client,
		models:        models,
		minConfidence: minConfidence,
		validator:     validator,
		log:           log,
	}
}

// Models returns the configured model set.
func (c *Classifier) Models() []ModelConfig {
	return c.models
}

// Classify submits the crop to every configured model, keeps the single
// best prediction, and applies the post-processing pipeline: label
// normalization, false-positive filtering, vocabulary boost, and geometry
// validation when landmarks are available. Per-model failures are absorbed
// so one broken model never prevents evaluating the others; if every model
// fails the crop simply has no candidate.
func (c *Classifier) Classify(ctx context.Context, cropJPEG []byte, landmarks *[detector.NumLandmarks]detector.Landmark) Outcome {
	var (
		best      *Prediction
		bestModel *ModelConfig
		bestScore float64
	)

	for i := range c.models {
		model := &c.models[i]

		predictions, err := c.client.Infer(ctx, cropJPEG, model.ID)
		if err != nil {
			c.log.Warn("model inference failed",
				zap.String("model", model.Name),
				zap.Error(err))
			continue
		}

		for j := range predictions {
			p := &predictions[j]
			if p.Confidence < c.minConfidence {
				continue
			}
			boosted := p.Confidence * model.Boost
			// Strictly greater: ties keep the first result seen, so
			// selection is deterministic given model order.
			if boosted > bestScore {
				bestScore = boosted
				best = p
				bestModel = model
			}
		}
	}

	if best == nil {
		return Outcome{Status: StatusEmpty, Reason: "no confident predictions from any model"}
	}

	label := NormalizeLabel(best.Class)

	if reason := FilterReason(label); reason != "" {
		c.log.Info("filtered false positive",
			zap.String("label", label),
			zap.String("reason", reason))
		return Outcome{Status: StatusFiltered, Reason: reason}
	}

	cand := &Candidate{
		Label:         label,
		RawConfidence: best.Confidence,
		Confidence:    best.Confidence,
		ModelID:       bestModel.ID,
		ModelName:     bestModel.Name,
		Color:         bestModel.Color,
		Validated:     true,
		GeometryScore: 1.0,
	}

	if IsTargetSign(label) {
		cand.InVocabulary = true
		cand.apply("vocabulary_boost", VocabularyBoost)
	}

	if c.validator != nil && landmarks != nil {
		validation := c.validator.Validate(*landmarks, label, cand.Confidence)
		cand.Validated = validation.Validated
		cand.GeometryScore = validation.GeometryScore

		if validation.Validated {
			if validation.GeometryScore < 1.0 {
				cand.apply("geometry_score", validation.AdjustedConfidence/cand.Confidence)
			}
		} else {
			c.log.Warn("geometry mismatch, reducing confidence",
				zap.String("label", label),
				zap.Float64("geometry_score", validation.GeometryScore))
			cand.apply("geometry_penalty", GeometryPenalty)
		}
	}

	return Outcome{Status: StatusMatched, Candidate: cand}
}

// apply multiplies the running confidence by factor, clamps to [0,1], and
// records the step.
func (cand *Candidate) apply(name string, factor float64) {
	v := cand.Confidence * factor
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	cand.Confidence = v
	cand.Adjustments = append(cand.Adjustments, Adjustment{
		Name:   name,
		Factor: factor,
		After:  v,
	})
}
