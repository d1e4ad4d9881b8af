package sprite

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apply transforms the world point (x, y) by the row-major view matrix.
func apply(view [9]float32, x, y float32) (float32, float32) {
	return view[0]*x + view[1]*y + view[2],
		view[3]*x + view[4]*y + view[5]
}

func TestNewCameraFollowsAspect(t *testing.T) {
	c := NewCamera(800, 400, 2)
	w, h := c.Size()
	assert.Equal(t, float32(4), w)
	assert.Equal(t, float32(2), h)
}

func TestCameraViewMapsCenterToOrigin(t *testing.T) {
	c := NewCamera(800, 400, 2)
	c.SetPosition(3, -2)
	w, h := c.Size()
	view := c.View()

	x, y := apply(view, 3, -2)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	x, y = apply(view, 3+w/2, -2)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	x, y = apply(view, 3, -2+h/2)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)

	assert.InDelta(t, 1, view[8], 1e-6, "homogeneous row must stay (0 0 1)")
}

func TestCameraViewRotated(t *testing.T) {
	for _, rot := range []float32{math.Pi / 4, math.Pi / 2, math.Pi} {
		c := NewCamera(600, 600, 10)
		c.SetPosition(1, 1)
		c.SetViewRotation(rot)
		w, _ := c.Size()
		view := c.View()

		x, y := apply(view, 1, 1)
		assert.InDelta(t, 0, x, 1e-5)
		assert.InDelta(t, 0, y, 1e-5)

		// The point half a view width along the rotated x axis lands on
		// the right edge of clip space.
		s, co := math.Sincos(float64(rot))
		px := 1 + float32(co)*w/2
		py := 1 + float32(s)*w/2
		x, y = apply(view, px, py)
		assert.InDelta(t, 1, x, 1e-5, "rotation %v", rot)
		assert.InDelta(t, 0, y, 1e-5, "rotation %v", rot)
	}
}

func TestCameraViewCached(t *testing.T) {
	c := NewCamera(100, 100, 10)
	first := c.View()
	assert.Equal(t, first, c.View())

	c.MoveView(1, 0)
	moved := c.View()
	assert.NotEqual(t, first, moved)
	x, _ := apply(moved, 1, 0)
	assert.InDelta(t, 0, x, 1e-6)
}

func TestCameraResizeKeepsAspect(t *testing.T) {
	c := NewCamera(800, 600, 6)
	sizes := [][2]int{{1024, 768}, {300, 900}, {1920, 1080}, {500, 500}, {640, 1136}}
	for _, s := range sizes {
		c.Resize(s[0], s[1])
		w, h := c.Size()
		assert.InDelta(t, float64(s[0])/float64(s[1]), float64(w/h), 1e-5, "screen %dx%d", s[0], s[1])
	}
}

func TestCameraResizeKeepsMinorExtent(t *testing.T) {
	c := NewCamera(800, 400, 2)
	c.Resize(400, 800)
	w, h := c.Size()
	assert.Equal(t, float32(2), w)
	assert.Equal(t, float32(4), h)
}

func TestCameraSetWidthAndHeight(t *testing.T) {
	c := NewCamera(800, 400, 2)
	c.SetWidth(10)
	w, h := c.Size()
	assert.Equal(t, float32(10), w)
	assert.Equal(t, float32(5), h)

	c.SetHeight(1)
	w, h = c.Size()
	assert.Equal(t, float32(2), w)
	assert.Equal(t, float32(1), h)
}

func TestCameraScaleViewKeepsCenter(t *testing.T) {
	c := NewCamera(800, 400, 2)
	c.SetPosition(5, 5)
	c.ScaleView(2)

	x, y := c.Position()
	assert.Equal(t, float32(5), x)
	assert.Equal(t, float32(5), y)
	w, h := c.Size()
	assert.Equal(t, float32(8), w)
	assert.Equal(t, float32(4), h)
}

func TestCameraRotationNormalized(t *testing.T) {
	inputs := []float32{-7, -math.Pi, -0.001, 0, 1, 2 * math.Pi, 13, 100}
	c := NewCamera(100, 100, 1)
	for _, in := range inputs {
		c.SetViewRotation(in)
		r := c.Rotation()
		assert.GreaterOrEqual(t, r, float32(0), "input %v", in)
		assert.Less(t, r, float32(2*math.Pi), "input %v", in)

		// Same angle modulo 2π.
		d := math.Remainder(float64(r-in), 2*math.Pi)
		assert.InDelta(t, 0, d, 1e-4, "input %v", in)
	}

	c.SetViewRotation(0)
	c.RotateView(-math.Pi / 2)
	assert.InDelta(t, 3*math.Pi/2, c.Rotation(), 1e-5)
}

func TestVectorToWorldSpaceRoundTrip(t *testing.T) {
	for _, rot := range []float32{0, math.Pi / 4, math.Pi} {
		c := NewCamera(800, 600, 3)
		c.SetViewRotation(rot)
		w, h := c.Size()

		dx, dy := float32(37), float32(-12)
		wx, wy := c.VectorToWorldSpace(dx, dy)

		back := mgl32.Rotate2D(-rot).Mul2x1(mgl32.Vec2{wx, wy})
		assert.InDelta(t, dx, back[0]*800/w, 1e-3, "rotation %v", rot)
		assert.InDelta(t, dy, back[1]*600/h, 1e-3, "rotation %v", rot)
	}
}

func TestVectorToWorldSpaceUnrotated(t *testing.T) {
	c := NewCamera(800, 400, 2)
	x, y := c.VectorToWorldSpace(200, 100)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, 0.5, y, 1e-6)
}

func TestPositionToWorldSpace(t *testing.T) {
	c := NewCamera(800, 400, 2)
	c.SetPosition(10, 20)

	x, y := c.PositionToWorldSpace(400, 200)
	assert.InDelta(t, 10, x, 1e-6)
	assert.InDelta(t, 20, y, 1e-6)

	x, y = c.PositionToWorldSpace(0, 0)
	assert.InDelta(t, 8, x, 1e-6)
	assert.InDelta(t, 19, y, 1e-6)
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		got := normalizeAngle(tt.in)
		require.InDelta(t, tt.want, got, 1e-5, "normalizeAngle(%v)", tt.in)
	}
}
