// Package detection composes landmark extraction, region cropping,
// classification, and geometric validation into the two demo detection
// pipelines.
package detection

import (
	"time"

	"github.com/nadhir/smartsign/internal/classifier"
	"github.com/nadhir/smartsign/internal/detector"
)

// Box colors for hands without a confident sign classification.
const (
	rightHandColor = "#00FF00"
	leftHandColor  = "#0000FF"
)

// BoundingBoxInfo annotates one detected hand for frontend rendering, in
// the classifier service's center+size convention.
type BoundingBoxInfo struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Color      string  `json:"color"`
	Hand       string  `json:"hand"`
}

// HandResult pairs one detected hand with its classification outcome.
type HandResult struct {
	Hand       detector.HandDetection `json:"hand"`
	Status     classifier.Status      `json:"status"`
	Candidate  *classifier.Candidate  `json:"candidate,omitempty"`
	Confidence float64                `json:"confidence"`
	Validated  bool                   `json:"validated"`
}

// Result is the aggregate outcome of one image submission. It is
// constructed fresh per request and always well-formed, even on failure.
type Result struct {
	Success        bool              `json:"success"`
	Label          string            `json:"label,omitempty"`
	Confidence     float64           `json:"confidence"`
	ModelUsed      string            `json:"model_used,omitempty"`
	Hand           string            `json:"hand,omitempty"`
	Hands          []HandResult      `json:"hands,omitempty"`
	BoundingBoxes  []BoundingBoxInfo `json:"bounding_boxes"`
	NumHands       int               `json:"num_hands"`
	ProcessingTime time.Duration     `json:"-"`
	FromCache      bool              `json:"from_cache"`
	Message        string            `json:"message,omitempty"`
}

// genericHandBox annotates a hand that produced no confident sign: green
// for the right hand, blue for the left.
func genericHandBox(hand detector.HandDetection) BoundingBoxInfo {
	color := leftHandColor
	if hand.Hand == "Right" {
		color = rightHandColor
	}
	return BoundingBoxInfo{
		X:          hand.Box.CenterX(),
		Y:          hand.Box.CenterY(),
		Width:      float64(hand.Box.Width()),
		Height:     float64(hand.Box.Height()),
		Class:      "Hand",
		Confidence: hand.Confidence,
		Color:      color,
		Hand:       hand.Hand,
	}
}

// classifiedHandBox annotates a hand with its recognized sign.
func classifiedHandBox(hand detector.HandDetection, cand *classifier.Candidate) BoundingBoxInfo {
	return BoundingBoxInfo{
		X:          hand.Box.CenterX(),
		Y:          hand.Box.CenterY(),
		Width:      float64(hand.Box.Width()),
		Height:     float64(hand.Box.Height()),
		Class:      cand.Label,
		Confidence: cand.Confidence,
		Color:      cand.Color,
		Hand:       hand.Hand,
	}
}
