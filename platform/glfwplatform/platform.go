// Package glfwplatform creates windows and OpenGL or OpenGL ES contexts
// with GLFW for the sprite renderer.
//
// glfw.Init must have been called, and every function must run on the main
// thread (see runtime.LockOSThread).
package glfwplatform

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/sprite"
)

// API is the client API of the contexts a Platform creates.
type API int

const (
	// OpenGL requests a desktop OpenGL 4.1 core, forward compatible context,
	// for the opengl backend.
	OpenGL API = iota
	// OpenGLES requests an OpenGL ES 2.0 context, for the gles backend.
	OpenGLES
)

func (a API) String() string {
	if a == OpenGLES {
		return "gles"
	}
	return "opengl"
}

// ErrForeignWindow is returned when a context is requested for a window
// that was not created by the Platform.
var ErrForeignWindow = errors.New("glfwplatform: window was not created by this platform")

// ErrDestroyedShare is returned when a context is requested sharing with
// the context of a destroyed window.
var ErrDestroyedShare = errors.New("glfwplatform: share context belongs to a destroyed window")

// Platform implements sprite.Platform. GLFW creates a window and its
// context together, so windows are created here and their contexts handed
// to the renderer afterwards.
type Platform struct {
	api    API
	hidden bool
	// live windows in creation order; new ones share with the oldest.
	live   []*glfw.Window
	nextID sprite.WindowID
}

var _ sprite.Platform = (*Platform)(nil)

// New returns a platform creating contexts for api.
func New(api API) *Platform {
	return &Platform{api: api}
}

// SetHidden makes the windows created afterwards invisible, for offscreen
// rendering.
func (p *Platform) SetHidden(hidden bool) {
	p.hidden = hidden
}

func (p *Platform) hints() {
	glfw.DefaultWindowHints()
	if p.hidden {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}
	switch p.api {
	case OpenGLES:
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLESAPI)
		glfw.WindowHint(glfw.ContextVersionMajor, 2)
		glfw.WindowHint(glfw.ContextVersionMinor, 0)
	default:
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	}
}

// CreateWindow opens a window. Its context shares objects with the oldest
// window of the platform still open.
func (p *Platform) CreateWindow(width, height int, title string) (*Window, error) {
	p.hints()
	glw, err := glfw.CreateWindow(width, height, title, nil, p.shareTarget())
	if err != nil {
		return nil, fmt.Errorf("create window %q: %w", title, err)
	}
	// CreateWindow leaves no context current on this thread, which the
	// renderer's bookkeeping relies on.
	glfw.DetachCurrentContext()
	p.live = append(p.live, glw)
	p.nextID++
	return &Window{Window: glw, id: p.nextID, platform: p}, nil
}

func (p *Platform) shareTarget() *glfw.Window {
	if len(p.live) == 0 {
		return nil
	}
	return p.live[0]
}

func (p *Platform) isLive(glw *glfw.Window) bool {
	return slices.Contains(p.live, glw)
}

func (p *Platform) forget(glw *glfw.Window) {
	p.live = slices.DeleteFunc(p.live, func(w *glfw.Window) bool { return w == glw })
}

// CreateContext implements sprite.Platform. The context already exists and
// shares with every open window of the platform, share included, as long
// as share belongs to a window that is still open.
func (p *Platform) CreateContext(w sprite.Window, share sprite.Context, cfg sprite.ContextConfig) (sprite.Context, error) {
	win, ok := w.(*Window)
	if !ok || win.platform != p {
		return nil, ErrForeignWindow
	}
	if share != nil {
		sc, ok := share.(*context)
		if !ok {
			return nil, ErrForeignWindow
		}
		if !p.isLive(sc.window) {
			return nil, ErrDestroyedShare
		}
	}
	return &context{window: win.Window, vsync: cfg.VSync}, nil
}

// Window is a GLFW window usable as a sprite.Window.
type Window struct {
	*glfw.Window
	id       sprite.WindowID
	platform *Platform
}

var _ sprite.Window = (*Window)(nil)

func (w *Window) ID() sprite.WindowID { return w.id }

// Size returns the framebuffer size, which differs from the window size
// on high density displays.
func (w *Window) Size() (width, height int) {
	return w.GetFramebufferSize()
}

// Destroy closes the window. Remove it from the renderer first.
func (w *Window) Destroy() {
	w.platform.forget(w.Window)
	w.Window.Destroy()
}

type context struct {
	window   *glfw.Window
	vsync    bool
	interval bool
}

func (c *context) MakeCurrent() error {
	c.window.MakeContextCurrent()
	if !c.interval {
		// The swap interval applies to the current context.
		if c.vsync {
			glfw.SwapInterval(1)
		} else {
			glfw.SwapInterval(0)
		}
		c.interval = true
	}
	return nil
}

func (c *context) MakeNotCurrent() error {
	glfw.DetachCurrentContext()
	return nil
}

func (c *context) SwapBuffers() error {
	c.window.SwapBuffers()
	return nil
}

// Destroy is a no-op: the context lives as long as its window.
func (c *context) Destroy() {}
