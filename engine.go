package sprite

import (
	"errors"
	"fmt"
	"log/slog"
)

// sharedResources are the GPU objects every context of the sharing group
// reads. They exist only while at least one context is alive.
type sharedResources struct {
	program Handle
	buffer  *instanceBuffer
}

// Engine is the SpriteRender implementation driving a Device. The batching,
// texture unit allocation, buffer growth and context switching are shared
// by every backend; the Device only issues the API calls.
type Engine struct {
	platform Platform
	device   Device
	opts     options
	log      *slog.Logger

	info     DeviceInfo
	maxUnits int
	shared   *sharedResources
	contexts contextSet
	textures textureRegistry
	units    unitAllocator

	// session is bumped whenever the current context may change, which
	// invalidates the outstanding Renderer.
	session uint64
}

var _ SpriteRender = (*Engine)(nil)

// New creates an Engine drawing into window. The first context is created
// on window and made current, and the shared resources are built on it.
func New(platform Platform, device Device, window Window, opts ...Option) (*Engine, error) {
	o := applyOptions(opts)
	e := &Engine{
		platform: platform,
		device:   device,
		opts:     o,
		log:      o.logger,
		contexts: newContextSet(),
		textures: newTextureRegistry(),
	}
	if err := e.init(window); err != nil {
		return nil, err
	}
	return e, nil
}

// init creates the first context and every shared resource. It is the only
// path building shared state, used by both New and Resume.
func (e *Engine) init(w Window) error {
	width, height := w.Size()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("window %d is %dx%d: %w", w.ID(), width, height, ErrZeroSize)
	}

	ctx, err := e.platform.CreateContext(w, nil, ContextConfig{VSync: e.opts.vsync})
	if err != nil {
		return fmt.Errorf("create context: %w", err)
	}
	if err := ctx.MakeCurrent(); err != nil {
		ctx.Destroy()
		return fmt.Errorf("make context current: %w", err)
	}

	fail := func(err error) error {
		_ = ctx.MakeNotCurrent()
		ctx.Destroy()
		return err
	}

	info, err := e.device.Init()
	if err != nil {
		return fail(fmt.Errorf("init device: %w", err))
	}
	e.info = info
	e.maxUnits = info.MaxTextureUnits
	if e.opts.maxUnits > 0 && e.opts.maxUnits < e.maxUnits {
		e.maxUnits = e.opts.maxUnits
	}
	if e.maxUnits <= 0 {
		return fail(fmt.Errorf("init device: no texture units available"))
	}
	e.log.Info("graphics context created",
		"version", info.Version,
		"max_texture_units", info.MaxTextureUnits,
		"units", e.maxUnits,
		"layout", e.device.Layout())

	e.device.Configure()
	program, err := e.device.CreateProgram(e.maxUnits)
	if err != nil {
		return fail(fmt.Errorf("create sprite program: %w", err))
	}

	buf := newInstanceBuffer(e.device, e.device.Layout(), e.opts.writeAttempts)
	e.shared = &sharedResources{program: program, buffer: buf}
	e.units = newUnitAllocator(e.maxUnits, e.bindTexture)

	e.contexts.insertCurrent(w.ID(), ctx)
	e.contexts.current.vertexState = e.device.CreateVertexState(program, buf.vertices, buf.quad)
	e.device.Viewport(width, height)
	return nil
}

func (e *Engine) bindTexture(unit int, id TextureID) {
	e.device.BindTexture(unit, e.textures.handle(id))
}

// MaxTextureUnits returns the number of texture units one draw call can use.
func (e *Engine) MaxTextureUnits() int {
	return e.maxUnits
}

// Windows returns the ids of the windows with a context, in no particular
// order.
func (e *Engine) Windows() []WindowID {
	return e.contexts.ids()
}

func (e *Engine) invalidate() {
	e.session++
}

// AddWindow implements SpriteRender.
func (e *Engine) AddWindow(w Window) error {
	e.invalidate()
	if e.shared == nil {
		return fmt.Errorf("add window %d: %w", w.ID(), ErrNoContext)
	}
	if e.contexts.has(w.ID()) {
		e.log.Warn("window already has a context", "window", w.ID())
		return nil
	}

	ctx, err := e.platform.CreateContext(w, e.contexts.shareTarget(), ContextConfig{VSync: e.opts.vsync})
	if err != nil {
		return fmt.Errorf("add window %d: %w", w.ID(), err)
	}
	e.contexts.insert(w.ID(), ctx)
	if err := e.contexts.makeCurrent(w.ID()); err != nil {
		if nc, rerr := e.contexts.remove(w.ID()); rerr == nil {
			nc.ctx.Destroy()
		}
		return fmt.Errorf("add window: %w", err)
	}

	// Vertex states are per context and must be created on the new one.
	e.device.Configure()
	e.contexts.current.vertexState = e.device.CreateVertexState(
		e.shared.program, e.shared.buffer.vertices, e.shared.buffer.quad)
	e.device.Viewport(w.Size())
	e.log.Info("window added", "window", w.ID(), "windows", e.contexts.len())
	return nil
}

// RemoveWindow implements SpriteRender.
func (e *Engine) RemoveWindow(id WindowID) error {
	e.invalidate()
	if !e.contexts.has(id) {
		return fmt.Errorf("remove window %d: %w", id, ErrUnknownWindow)
	}
	if e.contexts.len() == 1 {
		e.Suspend()
		e.log.Info("last window removed", "window", id)
		return nil
	}

	if err := e.contexts.makeCurrent(id); err != nil {
		return fmt.Errorf("remove window: %w", err)
	}
	e.device.DeleteVertexState(e.contexts.current.vertexState)
	nc, err := e.contexts.remove(id)
	if nc.ctx != nil {
		nc.ctx.Destroy()
	}
	if err != nil {
		return err
	}
	e.log.Info("window removed", "window", id, "windows", e.contexts.len())

	if err := e.contexts.ensureCurrent(); err != nil {
		return fmt.Errorf("remove window %d: restore current context: %w", id, err)
	}
	return nil
}

// requireContext makes sure a context is current before touching shared
// objects.
func (e *Engine) requireContext() error {
	if e.shared == nil {
		return ErrNoContext
	}
	return e.contexts.ensureCurrent()
}

// NewTexture implements SpriteRender.
func (e *Engine) NewTexture(t Texture) (TextureID, error) {
	if err := e.requireContext(); err != nil {
		return NoTexture, fmt.Errorf("new texture: %w", err)
	}
	id, err := e.textures.create(e.device, t)
	if err != nil {
		return NoTexture, fmt.Errorf("new texture: %w", err)
	}
	e.log.Debug("texture created", "texture", id, "width", t.width, "height", t.height)
	return id, nil
}

// UpdateTexture implements SpriteRender.
func (e *Engine) UpdateTexture(id TextureID, data []byte, rect *Rect) error {
	if err := e.requireContext(); err != nil {
		return fmt.Errorf("update %v: %w", id, err)
	}
	return e.textures.update(e.device, id, data, rect)
}

// ResizeTexture implements SpriteRender.
func (e *Engine) ResizeTexture(id TextureID, width, height int, data []byte) error {
	if err := e.requireContext(); err != nil {
		return fmt.Errorf("resize %v: %w", id, err)
	}
	return e.textures.resize(e.device, id, width, height, data)
}

// DeleteTexture implements SpriteRender.
func (e *Engine) DeleteTexture(id TextureID) error {
	if err := e.requireContext(); err != nil {
		return fmt.Errorf("delete %v: %w", id, err)
	}
	return e.textures.remove(e.device, id)
}

// Render implements SpriteRender.
func (e *Engine) Render(id WindowID) (Renderer, error) {
	e.invalidate()
	if e.shared == nil {
		return nil, fmt.Errorf("render window %d: %w", id, ErrNoContext)
	}
	if err := e.contexts.makeCurrent(id); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &session{engine: e, seq: e.session}, nil
}

// Resize implements SpriteRender.
func (e *Engine) Resize(id WindowID, width, height int) error {
	e.invalidate()
	if e.shared == nil {
		return fmt.Errorf("resize window %d: %w", id, ErrNoContext)
	}
	if err := e.contexts.makeCurrent(id); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	e.device.Viewport(width, height)
	return nil
}

// Suspend implements SpriteRender.
func (e *Engine) Suspend() {
	e.invalidate()
	if e.shared == nil {
		return
	}

	// Vertex states belong to their context, so each one is deleted with
	// its context current.
	var errs []error
	for _, id := range e.contexts.ids() {
		if err := e.contexts.makeCurrent(id); err != nil {
			errs = append(errs, err)
			continue
		}
		e.device.DeleteVertexState(e.contexts.current.vertexState)
		e.contexts.current.vertexState = 0
	}
	if e.contexts.current != nil {
		e.textures.release(e.device)
		e.shared.buffer.release(e.device)
		e.device.DeleteProgram(e.shared.program)
	} else {
		e.textures.forget()
	}
	e.shared = nil

	for _, ctx := range e.contexts.clear() {
		ctx.Destroy()
	}
	if err := errors.Join(errs...); err != nil {
		e.log.Warn("context lost before suspend", "err", err)
	}
	e.log.Info("renderer suspended")
}

// Resume implements SpriteRender.
func (e *Engine) Resume(w Window) error {
	e.invalidate()
	if e.shared != nil {
		e.log.Info("renderer already resumed", "window", w.ID())
		return nil
	}
	if err := e.init(w); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	e.log.Info("renderer resumed", "window", w.ID())
	return nil
}
