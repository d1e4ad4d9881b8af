package sprite

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera encapsulates the view transform, providing methods to move, rotate
// or scale the visible region of the world.
//
// The camera is owned by the caller. The renderer only reads its view matrix
// during DrawSprites.
type Camera struct {
	x, y     float32
	width    float32
	height   float32
	rotation float32

	screenWidth  int
	screenHeight int

	view  [9]float32
	dirty bool
}

// NewCamera creates a camera centered at the origin showing viewHeight world
// units vertically. The width follows the screen aspect ratio.
func NewCamera(screenWidth, screenHeight int, viewHeight float32) *Camera {
	c := &Camera{
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		height:       viewHeight,
		view:         [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
		dirty:        true,
	}
	c.width = viewHeight * c.aspect()
	return c
}

func (c *Camera) aspect() float32 {
	if c.screenHeight == 0 {
		return 1
	}
	return float32(c.screenWidth) / float32(c.screenHeight)
}

// View returns the world to clip space transform as a row-major 3x3
// homogeneous matrix. It is recomputed only when the camera changed.
func (c *Camera) View() [9]float32 {
	if !c.dirty {
		return c.view
	}
	c.dirty = false

	scale := mgl32.Scale2D(2/c.width, 2/c.height)
	translate := mgl32.Translate2D(-c.x, -c.y)

	var m mgl32.Mat3
	if c.rotation == 0 {
		m = scale.Mul3(translate)
	} else {
		m = scale.Mul3(mgl32.HomogRotate2D(-c.rotation)).Mul3(translate)
	}
	// mgl32 stores column-major; the transpose's storage is the row-major form.
	c.view = m.Transpose()
	return c.view
}

// Resize updates the screen size. The smaller of the current view extents is
// kept and the other one is derived from the new aspect ratio, so the view
// is never distorted.
func (c *Camera) Resize(screenWidth, screenHeight int) {
	minor := min(c.width, c.height)
	c.screenWidth = screenWidth
	c.screenHeight = screenHeight
	c.SetMinorSize(minor)
}

// SetWidth sets the visible width in world units, keeping the screen proportion.
func (c *Camera) SetWidth(width float32) {
	c.width = width
	c.height = width / c.aspect()
	c.dirty = true
}

// SetHeight sets the visible height in world units, keeping the screen proportion.
func (c *Camera) SetHeight(height float32) {
	c.height = height
	c.width = height * c.aspect()
	c.dirty = true
}

// SetMinorSize sets the smaller of the two view extents, keeping the screen
// proportion.
func (c *Camera) SetMinorSize(size float32) {
	if c.screenWidth < c.screenHeight {
		c.SetWidth(size)
	} else {
		c.SetHeight(size)
	}
}

// Size returns the visible width and height in world units.
func (c *Camera) Size() (width, height float32) {
	return c.width, c.height
}

// Position returns the center of the view in world space.
func (c *Camera) Position() (x, y float32) {
	return c.x, c.y
}

// SetPosition sets the center of the view in world space.
func (c *Camera) SetPosition(x, y float32) {
	c.x = x
	c.y = y
	c.dirty = true
}

// MoveView translates the view center by (dx, dy) world units.
func (c *Camera) MoveView(dx, dy float32) {
	c.x += dx
	c.y += dy
	c.dirty = true
}

// Rotation returns the view rotation in radians, in [0, 2π).
func (c *Camera) Rotation() float32 {
	return c.rotation
}

// SetViewRotation sets the counterclockwise view rotation in radians.
func (c *Camera) SetViewRotation(radians float32) {
	c.rotation = normalizeAngle(radians)
	c.dirty = true
}

// RotateView rotates the view by radians, counterclockwise.
func (c *Camera) RotateView(radians float32) {
	c.rotation = normalizeAngle(c.rotation + radians)
	c.dirty = true
}

// ScaleView multiplies the visible height by factor around the current
// center. A factor greater than one zooms out.
func (c *Camera) ScaleView(factor float32) {
	c.SetHeight(c.height * factor)
}

// VectorToWorldSpace converts a displacement in screen pixels into world
// units. Use it for relative motion such as mouse drags.
func (c *Camera) VectorToWorldSpace(dx, dy float32) (float32, float32) {
	x := dx * c.width / float32(c.screenWidth)
	y := dy * c.height / float32(c.screenHeight)
	if c.rotation == 0 {
		return x, y
	}
	v := mgl32.Rotate2D(c.rotation).Mul2x1(mgl32.Vec2{x, y})
	return v[0], v[1]
}

// PositionToWorldSpace converts a screen pixel position (origin at the top
// left corner) into a world position. Use it for absolute positions such as
// the cursor.
func (c *Camera) PositionToWorldSpace(sx, sy float32) (float32, float32) {
	dx, dy := c.VectorToWorldSpace(
		sx-float32(c.screenWidth)/2,
		sy-float32(c.screenHeight)/2,
	)
	return c.x + dx, c.y + dy
}

// normalizeAngle returns the Euclidean remainder of a by 2π.
func normalizeAngle(a float32) float32 {
	const tau = 2 * math.Pi
	r := float32(math.Mod(float64(a), tau))
	if r < 0 {
		r += tau
	}
	if r >= tau {
		r = 0
	}
	return r
}
