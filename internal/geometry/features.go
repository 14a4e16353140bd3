// Package geometry validates classifier predictions against raw hand
// landmark geometry.
package geometry

import (
	"math"

	"github.com/nadhir/smartsign/internal/detector"
)

const (
	// extensionThreshold is the base-to-tip ratio above which a finger
	// counts as extended.
	extensionThreshold = 0.75

	// opennessReference normalizes the mean pairwise fingertip distance,
	// in pixels.
	opennessReference = 200.0

	// minVisibleLandmarks is the number of landmarks that must have
	// visibility above visibilityThreshold for features to be trusted.
	minVisibleLandmarks = 15

	visibilityThreshold = 0.5
)

// fingerTriples maps each finger to its (base, mid, tip) landmark indices,
// ordered thumb, index, middle, ring, pinky.
var fingerTriples = [5][3]int{
	{detector.ThumbCMC, detector.ThumbIP, detector.ThumbTip},
	{detector.IndexMCP, detector.IndexDIP, detector.IndexTip},
	{detector.MiddleMCP, detector.MiddleDIP, detector.MiddleTip},
	{detector.RingMCP, detector.RingDIP, detector.RingTip},
	{detector.PinkyMCP, detector.PinkyDIP, detector.PinkyTip},
}

var fingertipIndices = [5]int{
	detector.ThumbTip,
	detector.IndexTip,
	detector.MiddleTip,
	detector.RingTip,
	detector.PinkyTip,
}

// Features holds the geometric features derived from one hand's landmarks.
// When InsufficientVisibility is set the other fields are undefined.
type Features struct {
	// FingersExtended holds one bit per finger (thumb, index, middle,
	// ring, pinky): 1 extended, 0 bent.
	FingersExtended [5]int

	// HandOpenness is the normalized mean pairwise fingertip distance,
	// in [0,1]. 0 is a closed fist, 1 a fully spread hand.
	HandOpenness float64

	// InsufficientVisibility is set when fewer than 15 of the 21
	// landmarks have visibility above 0.5.
	InsufficientVisibility bool
}

// ExtractFeatures derives finger extension states and hand openness from a
// hand's landmarks. The computation is deterministic: identical landmarks
// always yield identical features.
func ExtractFeatures(landmarks [detector.NumLandmarks]detector.Landmark) Features {
	visible := 0
	for _, lm := range landmarks {
		if lm.Visibility > visibilityThreshold {
			visible++
		}
	}
	if visible < minVisibleLandmarks {
		return Features{InsufficientVisibility: true}
	}

	var f Features
	for i, triple := range fingerTriples {
		base := landmarks[triple[0]]
		mid := landmarks[triple[1]]
		tip := landmarks[triple[2]]

		fullDist := distance2D(base, tip)
		segmentDist := distance2D(base, mid) + distance2D(mid, tip)

		// The ratio approximates how unfolded the finger is without
		// 3-D pose normalization.
		ratio := fullDist / (segmentDist + 1e-6)
		if ratio > extensionThreshold {
			f.FingersExtended[i] = 1
		}
	}

	f.HandOpenness = handOpenness(landmarks)
	return f
}

// handOpenness is the mean pairwise 2-D distance between the five fingertip
// landmarks, normalized by opennessReference and clamped to [0,1].
func handOpenness(landmarks [detector.NumLandmarks]detector.Landmark) float64 {
	var sum float64
	var count int
	for i := 0; i < len(fingertipIndices); i++ {
		for j := i + 1; j < len(fingertipIndices); j++ {
			sum += distance2D(landmarks[fingertipIndices[i]], landmarks[fingertipIndices[j]])
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Min(sum/float64(count)/opennessReference, 1.0)
}

func distance2D(a, b detector.Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
