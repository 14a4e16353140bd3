package detector

import (
	"gocv.io/x/gocv"
)

// MockExtractor is a test implementation of the Extractor interface.
// It allows tests to control the detection results.
type MockExtractor struct {
	hands []HandDetection
	err   error
	calls int
}

// NewMockExtractor creates a new MockExtractor instance.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockExtractor) SetHands(hands []HandDetection) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockExtractor) SetError(err error) {
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockExtractor) Calls() int {
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockExtractor) Detect(image gocv.Mat) ([]HandDetection, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock extractor.
func (m *MockExtractor) Close() error {
	return nil
}

// Fixture dimensions for the preset detections below.
const (
	fixtureWidth  = 640
	fixtureHeight = 480
)

func fixtureDetection(hand string, points [NumLandmarks]Landmark) HandDetection {
	return HandDetection{
		Hand:       hand,
		Confidence: 0.95,
		Box:        BoxFromLandmarks(points, fixtureWidth, fixtureHeight),
		Landmarks:  points,
	}
}

// OpenPalmDetection returns a preset right-hand detection with all five
// fingers extended and fingertips spread wide (openness above 0.6). The
// finger base/mid/tip landmarks are collinear so the extension ratio is 1.0.
func OpenPalmDetection() HandDetection {
	var p [NumLandmarks]Landmark

	set := func(i int, x, y float64) {
		p[i] = Landmark{X: x, Y: y, Visibility: 1.0}
	}

	set(Wrist, 320, 420)

	// Thumb extended to the side
	set(ThumbCMC, 260, 380)
	set(ThumbMCP, 235, 330)
	set(ThumbIP, 210, 280)
	set(ThumbTip, 185, 230)

	// Index extended
	set(IndexMCP, 280, 300)
	set(IndexPIP, 275, 260)
	set(IndexDIP, 270, 220)
	set(IndexTip, 265, 180)

	// Middle extended
	set(MiddleMCP, 320, 295)
	set(MiddlePIP, 320, 250)
	set(MiddleDIP, 320, 205)
	set(MiddleTip, 320, 160)

	// Ring extended
	set(RingMCP, 360, 300)
	set(RingPIP, 365, 260)
	set(RingDIP, 370, 220)
	set(RingTip, 375, 180)

	// Pinky extended
	set(PinkyMCP, 395, 310)
	set(PinkyPIP, 405, 280)
	set(PinkyDIP, 415, 250)
	set(PinkyTip, 425, 220)

	return fixtureDetection("Right", p)
}

// FistDetection returns a preset right-hand detection with all fingers bent
// and fingertips clustered near the palm (openness below 0.3).
func FistDetection() HandDetection {
	var p [NumLandmarks]Landmark

	set := func(i int, x, y float64) {
		p[i] = Landmark{X: x, Y: y, Visibility: 1.0}
	}

	set(Wrist, 320, 420)

	// Thumb folded across the palm
	set(ThumbCMC, 270, 390)
	set(ThumbMCP, 285, 360)
	set(ThumbIP, 300, 340)
	set(ThumbTip, 312, 358)

	// Index curled, tip back near the knuckle
	set(IndexMCP, 285, 310)
	set(IndexPIP, 288, 270)
	set(IndexDIP, 295, 260)
	set(IndexTip, 308, 330)

	// Middle curled
	set(MiddleMCP, 320, 305)
	set(MiddlePIP, 322, 262)
	set(MiddleDIP, 326, 255)
	set(MiddleTip, 322, 335)

	// Ring curled
	set(RingMCP, 352, 310)
	set(RingPIP, 354, 268)
	set(RingDIP, 356, 262)
	set(RingTip, 332, 340)

	// Pinky curled
	set(PinkyMCP, 382, 318)
	set(PinkyPIP, 384, 284)
	set(PinkyDIP, 382, 278)
	set(PinkyTip, 340, 350)

	return fixtureDetection("Right", p)
}

// PointingIndexDetection returns a preset right-hand detection with only
// the index finger extended, matching the SAYA signature [0,1,0,0,0].
func PointingIndexDetection() HandDetection {
	p := FistDetection().Landmarks

	set := func(i int, x, y float64) {
		p[i] = Landmark{X: x, Y: y, Visibility: 1.0}
	}

	// Index extended straight up
	set(IndexMCP, 285, 310)
	set(IndexPIP, 283, 260)
	set(IndexDIP, 281, 210)
	set(IndexTip, 279, 160)

	return fixtureDetection("Right", p)
}

// LowVisibilityDetection returns an open-palm detection with most landmark
// visibilities below 0.5, so geometric features are flagged unreliable.
func LowVisibilityDetection() HandDetection {
	det := OpenPalmDetection()
	for i := 0; i < NumLandmarks-5; i++ {
		det.Landmarks[i].Visibility = 0.2
	}
	return det
}
