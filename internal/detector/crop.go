package detector

import (
	"image"

	"gocv.io/x/gocv"
)

// Crop target resolutions per pipeline variant.
const (
	// FastCropSize keeps classifier payloads small on the cached path.
	FastCropSize = 224
	// AccurateCropSize preserves more finger detail for the multi-hand path.
	AccurateCropSize = 320
)

// Crop extracts the bounding box region from the image and resizes it to a
// size x size square using area-averaging interpolation, which reduces
// aliasing noise for the downstream classifier. A degenerate (zero-area) box
// yields a black placeholder of the target size so the classifier always
// receives a well-formed input. The caller owns the returned Mat.
func Crop(img gocv.Mat, box BoundingBox, size int) gocv.Mat {
	if box.Empty() {
		return gocv.NewMatWithSize(size, size, gocv.MatTypeCV8UC3)
	}

	region := img.Region(image.Rect(box.XMin, box.YMin, box.XMax, box.YMax))
	defer region.Close()

	resized := gocv.NewMat()
	gocv.Resize(region, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationArea)

	return resized
}

// EncodeJPEG re-encodes a crop as JPEG bytes at the given quality. Used both
// for the classifier payload and for content hashing on the cached path.
func EncodeJPEG(img gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(".jpg", img, []int{gocv.IMWriteJpegQuality, quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}
