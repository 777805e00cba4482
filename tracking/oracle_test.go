package tracking

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"objtracker/types"
	"objtracker/ui"
)

// squareFrame draws a filled white square with its top left corner at
// (x, y) on a black grayscale frame
func squareFrame(t *testing.T, x, y int) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160, gocv.MatTypeCV8UC1)
	_ = gocv.Rectangle(&frame, image.Rect(x, y, x+30, y+30), ui.White, -1)
	t.Cleanup(func() { frame.Close() })
	return frame
}

func TestShiTomasiFindsSquareCorners(t *testing.T) {
	frame := squareFrame(t, 50, 40)

	points := ShiTomasi{}.Detect(frame, 200, 0.001, 5)
	require.NotEmpty(t, points)
	assert.LessOrEqual(t, len(points), 200)

	for _, p := range points {
		assert.InDelta(t, 65, p.X, 20)
		assert.InDelta(t, 55, p.Y, 20)
	}
}

func TestShiTomasiEmptyImage(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	assert.Empty(t, ShiTomasi{}.Detect(empty, 200, 0.001, 5))
}

func TestLucasKanadeFollowsShift(t *testing.T) {
	prev := squareFrame(t, 50, 40)
	next := squareFrame(t, 53, 42)

	points := ShiTomasi{}.Detect(prev, 200, 0.001, 5)
	require.NotEmpty(t, points)

	result := LucasKanade{}.Correspond(prev, next, points)
	require.Len(t, result.Points, len(points))
	require.Len(t, result.Status, len(points))
	require.Len(t, result.Errors, len(points))

	followed := 0
	for i, p := range points {
		if !result.Status[i] {
			continue
		}
		dx := result.Points[i].X - p.X
		dy := result.Points[i].Y - p.Y
		if math.Abs(float64(dx-3)) < 1 && math.Abs(float64(dy-2)) < 1 {
			followed++
		}
	}
	assert.Positive(t, followed, "at least one corner follows the square")
}

func TestLucasKanadeEmptyQuery(t *testing.T) {
	prev := squareFrame(t, 50, 40)

	result := LucasKanade{}.Correspond(prev, prev, nil)
	assert.Empty(t, result.Points)
	assert.Empty(t, result.Status)
	assert.Empty(t, result.Errors)
}

func TestManagerFollowsMovingSquare(t *testing.T) {
	m := NewManager(types.DefaultFeatureConfig(), LucasKanade{}, ShiTomasi{}, ui.DefaultTrailStyle(types.DefaultUIConfig()))
	defer m.Close()

	frame := squareFrame(t, 40, 30)
	first := m.Step(&frame)
	require.True(t, first.Bootstrap)
	require.Positive(t, first.Tracked)

	moved := squareFrame(t, 43, 32)
	second := m.Step(&moved)
	assert.False(t, second.Bootstrap)
	assert.Positive(t, second.Tracked)
	assert.Equal(t, second.Tracked, m.Len())
	assert.Positive(t, second.MeanFlow.X, "the square moved right")
}
