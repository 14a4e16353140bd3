package detector

import "gocv.io/x/gocv"

// Extractor defines the interface for hand landmark extraction.
type Extractor interface {
	// Detect analyzes a decoded BGR image and returns detected hands.
	// Returns an empty slice if no hands clear the configured confidence
	// threshold; filtering happens inside the external model.
	Detect(image gocv.Mat) ([]HandDetection, error)

	// Close releases any resources held by the extractor.
	Close() error
}

// Config holds configuration options for hand landmark extraction.
type Config struct {
	// MaxHands is the maximum number of hands to detect.
	MaxHands int

	// MinConfidence is the minimum hand-presence confidence (0.0-1.0).
	MinConfidence float64
}

// DefaultConfig returns a Config matching the demo pipeline: up to two
// hands, presence threshold 0.6.
func DefaultConfig() Config {
	return Config{
		MaxHands:      2,
		MinConfidence: 0.6,
	}
}
