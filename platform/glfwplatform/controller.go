package glfwplatform

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/sprite"
)

// Keys rotating the camera.
const (
	KeyRotateLeft  = glfw.KeyQ
	KeyRotateRight = glfw.KeyE
)

const (
	rotateStep = math.Pi / 32
	zoomStep   = 1.1
)

// CameraController drives a sprite.Camera from GLFW input: dragging with
// the left button pans, the wheel zooms around the cursor and Q/E rotate.
// It installs the window's cursor, button, scroll, key and framebuffer
// size callbacks.
type CameraController struct {
	window *Window
	camera *sprite.Camera

	dragging     bool
	lastX, lastY float64

	// OnResize, when set, is called after the camera followed a
	// framebuffer resize. Use it to resize the renderer.
	OnResize func(width, height int)
}

// NewCameraController attaches a controller for camera to window.
func NewCameraController(window *Window, camera *sprite.Camera) *CameraController {
	c := &CameraController{window: window, camera: camera}

	window.SetCursorPosCallback(c.cursorPosCallback)
	window.SetMouseButtonCallback(c.mouseButtonCallback)
	window.SetScrollCallback(c.scrollCallback)
	window.SetKeyCallback(c.keyCallback)
	window.SetFramebufferSizeCallback(c.framebufferSizeCallback)

	return c
}

// Camera returns the controlled camera.
func (c *CameraController) Camera() *sprite.Camera {
	return c.camera
}

// toPixels converts window coordinates to framebuffer pixels, the unit of
// the camera's screen size.
func (c *CameraController) toPixels(x, y float64) (float32, float32) {
	ww, wh := c.window.GetSize()
	fw, fh := c.window.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return float32(x), float32(y)
	}
	return float32(x * float64(fw) / float64(ww)), float32(y * float64(fh) / float64(wh))
}

func (c *CameraController) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	if c.dragging {
		dx, dy := c.toPixels(xpos-c.lastX, ypos-c.lastY)
		wx, wy := c.camera.VectorToWorldSpace(dx, dy)
		c.camera.MoveView(-wx, -wy)
	}
	c.lastX, c.lastY = xpos, ypos
}

func (c *CameraController) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	switch action {
	case glfw.Press:
		c.dragging = true
		c.lastX, c.lastY = w.GetCursorPos()
	case glfw.Release:
		c.dragging = false
	}
}

// scrollCallback zooms keeping the world point under the cursor fixed.
func (c *CameraController) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	sx, sy := c.toPixels(w.GetCursorPos())
	bx, by := c.camera.PositionToWorldSpace(sx, sy)
	c.camera.ScaleView(float32(math.Pow(zoomStep, -yoff)))
	ax, ay := c.camera.PositionToWorldSpace(sx, sy)
	c.camera.MoveView(bx-ax, by-ay)
}

func (c *CameraController) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}
	switch key {
	case KeyRotateLeft:
		c.camera.RotateView(-rotateStep)
	case KeyRotateRight:
		c.camera.RotateView(rotateStep)
	}
}

func (c *CameraController) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if width == 0 || height == 0 {
		return
	}
	c.camera.Resize(width, height)
	if c.OnResize != nil {
		c.OnResize(width, height)
	}
}
