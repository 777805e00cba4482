package utils

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

func TestClampRect(t *testing.T) {
	tests := []struct {
		name string
		in   image.Rectangle
		want image.Rectangle
	}{
		{"inside", image.Rect(10, 10, 30, 40), image.Rect(10, 10, 30, 40)},
		{"off top left", image.Rect(-5, -8, 15, 12), image.Rect(0, 0, 20, 20)},
		{"off bottom right", image.Rect(90, 70, 110, 90), image.Rect(80, 60, 100, 80)},
		{"larger than image", image.Rect(-10, -10, 200, 200), image.Rect(0, 0, 100, 80)},
		{"inverted", image.Rect(30, 40, 10, 10), image.Rect(10, 10, 30, 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampRect(tt.in, 100, 80))
		})
	}
}

func TestCenteredRect(t *testing.T) {
	assert.Equal(t, image.Rect(40, 30, 60, 50), CenteredRect(50, 40, 20, 20))
	assert.Equal(t, image.Rect(45, 39, 56, 42), CenteredRect(50, 40, 11, 3))
}

func TestPt(t *testing.T) {
	assert.Equal(t, image.Pt(12, 11), Pt(gocv.Point2f{X: 11.6, Y: 10.5}))
	assert.Equal(t, image.Pt(-2, 0), Pt(gocv.Point2f{X: -1.5, Y: 0.2}))
}

func TestToGray(t *testing.T) {
	color := gocv.NewMatWithSize(8, 6, gocv.MatTypeCV8UC3)
	defer color.Close()
	gray := gocv.NewMat()
	defer gray.Close()

	ToGray(color, &gray)
	assert.Equal(t, 1, gray.Channels())
	assert.Equal(t, 8, gray.Rows())
	assert.Equal(t, 6, gray.Cols())

	again := gocv.NewMat()
	defer again.Close()
	ToGray(gray, &again)
	assert.Equal(t, 1, again.Channels())
}
