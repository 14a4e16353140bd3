// Package detector provides hand-region detection for BIM sign recognition.
package detector

import "math"

// Hand landmark indices following the MediaPipe hand landmarker convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// BoxPadding is the fraction of the bounding box width/height added on each
// side. The landmark model draws a tight box that tends to crop fingertips.
const BoxPadding = 0.2

// Landmark is a single tracked hand point in pixel coordinates. Z is depth
// scaled to pixels. Visibility is the model's confidence that the point is
// observable, in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// BoundingBox is an axis-aligned pixel rectangle. Boxes produced by
// BoxFromLandmarks always lie within image bounds.
type BoundingBox struct {
	XMin int `json:"x_min"`
	YMin int `json:"y_min"`
	XMax int `json:"x_max"`
	YMax int `json:"y_max"`
}

// Width returns the box width in pixels.
func (b BoundingBox) Width() int { return b.XMax - b.XMin }

// Height returns the box height in pixels.
func (b BoundingBox) Height() int { return b.YMax - b.YMin }

// CenterX returns the horizontal box center.
func (b BoundingBox) CenterX() float64 { return float64(b.XMin) + float64(b.Width())/2 }

// CenterY returns the vertical box center.
func (b BoundingBox) CenterY() float64 { return float64(b.YMin) + float64(b.Height())/2 }

// Empty reports whether the box has zero area.
func (b BoundingBox) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// HandDetection is a single detected hand: its side, the detector's
// confidence, the padded bounding box, and 21 ordered landmarks in pixel
// coordinates. Immutable after creation and owned by the request that
// produced it.
type HandDetection struct {
	Hand       string                 `json:"hand"` // "Left" or "Right"
	Confidence float64                `json:"confidence"`
	Box        BoundingBox            `json:"bbox"`
	Landmarks  [NumLandmarks]Landmark `json:"landmarks"`
}

// BoxFromLandmarks derives a bounding box from landmark pixel coordinates:
// the axis-aligned extent of all 21 points, expanded by BoxPadding of its
// own width/height on each side, then clamped to the image bounds.
func BoxFromLandmarks(points [NumLandmarks]Landmark, imageWidth, imageHeight int) BoundingBox {
	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)

	for _, p := range points {
		xMin = math.Min(xMin, p.X)
		xMax = math.Max(xMax, p.X)
		yMin = math.Min(yMin, p.Y)
		yMax = math.Max(yMax, p.Y)
	}

	padX := (xMax - xMin) * BoxPadding
	padY := (yMax - yMin) * BoxPadding

	box := BoundingBox{
		XMin: int(xMin - padX),
		YMin: int(yMin - padY),
		XMax: int(xMax + padX),
		YMax: int(yMax + padY),
	}

	if box.XMin < 0 {
		box.XMin = 0
	}
	if box.YMin < 0 {
		box.YMin = 0
	}
	if box.XMax > imageWidth {
		box.XMax = imageWidth
	}
	if box.YMax > imageHeight {
		box.YMax = imageHeight
	}

	return box
}
