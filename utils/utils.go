package utils

import (
	"image"

	"gocv.io/x/gocv"
)

// ClampRect shifts and, if needed, shrinks rect so that it lies inside an
// image of the given size. A rect larger than the image is cut to the image.
func ClampRect(rect image.Rectangle, imgWidth, imgHeight int) image.Rectangle {
	rect = rect.Canon()

	width := min(rect.Dx(), imgWidth)
	height := min(rect.Dy(), imgHeight)

	x := rect.Min.X
	y := rect.Min.Y

	// Ensure the rectangle stays within image bounds
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+width > imgWidth {
		x = imgWidth - width
	}
	if y+height > imgHeight {
		y = imgHeight - height
	}

	return image.Rect(x, y, x+width, y+height)
}

// CenteredRect returns a width x height rectangle centred on (cx, cy)
func CenteredRect(cx, cy, width, height int) image.Rectangle {
	halfWidth := width / 2
	halfHeight := height / 2
	return image.Rect(cx-halfWidth, cy-halfHeight, cx-halfWidth+width, cy-halfHeight+height)
}

// ToGray writes a single channel copy of src into dst. Frames that are
// already grayscale are copied as is.
func ToGray(src gocv.Mat, dst *gocv.Mat) {
	switch src.Channels() {
	case 1:
		src.CopyTo(dst)
	case 4:
		gocv.CvtColor(src, dst, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
	}
}

// Pt rounds a sub-pixel point to the nearest pixel
func Pt(p gocv.Point2f) image.Point {
	return image.Pt(round(p.X), round(p.Y))
}

func round(v float32) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
