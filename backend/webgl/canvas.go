//go:build js && wasm

package webgl

import (
	"errors"
	"fmt"
	"syscall/js"

	"github.com/go-theft-auto/sprite"
)

// ErrMultiWindowUnsupported is returned when a second context is requested.
// A page drives a single canvas.
var ErrMultiWindowUnsupported = errors.New("webgl: only one canvas is supported")

// Canvas is an HTML canvas element. It is both the sprite.Window and the
// sprite.Platform of the WebGL backend.
type Canvas struct {
	el js.Value
	gl js.Value
}

var (
	_ sprite.Window   = (*Canvas)(nil)
	_ sprite.Platform = (*Canvas)(nil)
)

// NewCanvas wraps the canvas with the given element id.
func NewCanvas(id string) (*Canvas, error) {
	el := js.Global().Get("document").Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		return nil, fmt.Errorf("webgl: no element %q", id)
	}
	return &Canvas{el: el}, nil
}

// ID returns the canvas window id. There is only one.
func (c *Canvas) ID() sprite.WindowID { return 1 }

// Size returns the drawing buffer size of the canvas.
func (c *Canvas) Size() (width, height int) {
	return c.el.Get("width").Int(), c.el.Get("height").Int()
}

// SetSize resizes the drawing buffer. Call SpriteRender.Resize afterwards.
func (c *Canvas) SetSize(width, height int) {
	c.el.Set("width", width)
	c.el.Set("height", height)
}

// CreateContext implements sprite.Platform. The first call obtains the
// WebGL 1.0 context of the canvas; later calls fail while it is alive.
func (c *Canvas) CreateContext(w sprite.Window, share sprite.Context, _ sprite.ContextConfig) (sprite.Context, error) {
	if share != nil || !c.gl.IsUndefined() || w.ID() != c.ID() {
		return nil, ErrMultiWindowUnsupported
	}
	attrs := map[string]any{
		"alpha":              false,
		"antialias":          false,
		"premultipliedAlpha": false,
	}
	gl := c.el.Call("getContext", "webgl", attrs)
	if gl.IsNull() || gl.IsUndefined() {
		return nil, errors.New("webgl: context is not available")
	}
	c.gl = gl
	return &context{canvas: c}, nil
}

// context is the WebGL context of a canvas. The browser presents the
// drawing buffer after each animation frame, so there is nothing to swap
// or to make current. A canvas hands out the same context on every
// getContext call, so Destroy only forgets it.
type context struct {
	canvas *Canvas
}

func (*context) MakeCurrent() error    { return nil }
func (*context) MakeNotCurrent() error { return nil }
func (*context) SwapBuffers() error    { return nil }

func (c *context) Destroy() {
	c.canvas.gl = js.Undefined()
}
