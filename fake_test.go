package sprite

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeWindow is a Window with a fixed size.
type fakeWindow struct {
	id            WindowID
	width, height int
}

func (w fakeWindow) ID() WindowID     { return w.id }
func (w fakeWindow) Size() (int, int) { return w.width, w.height }

// fakePlatform tracks which fake context is current on the "thread".
type fakePlatform struct {
	contexts  []*fakeContext
	current   *fakeContext
	createErr error
	// makeCurrentErr is inherited by the contexts created afterwards.
	makeCurrentErr error
}

func (p *fakePlatform) CreateContext(w Window, share Context, cfg ContextConfig) (Context, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	c := &fakeContext{platform: p, window: w.ID(), vsync: cfg.VSync, makeCurrentErr: p.makeCurrentErr}
	if share != nil {
		c.share = share.(*fakeContext)
	}
	p.contexts = append(p.contexts, c)
	return c, nil
}

func (p *fakePlatform) alive() int {
	n := 0
	for _, c := range p.contexts {
		if !c.destroyed {
			n++
		}
	}
	return n
}

type fakeContext struct {
	platform *fakePlatform
	window   WindowID
	share    *fakeContext
	vsync    bool

	makeCurrentErr error
	madeCurrent    int
	releases       int
	swaps          int
	destroyed      bool
}

func (c *fakeContext) MakeCurrent() error {
	if c.makeCurrentErr != nil {
		return c.makeCurrentErr
	}
	if c.destroyed {
		return errors.New("context destroyed")
	}
	c.madeCurrent++
	c.platform.current = c
	return nil
}

func (c *fakeContext) MakeNotCurrent() error {
	c.releases++
	if c.platform.current == c {
		c.platform.current = nil
	}
	return nil
}

func (c *fakeContext) SwapBuffers() error {
	c.swaps++
	return nil
}

func (c *fakeContext) Destroy() {
	if c.platform.current == c {
		panic("fake: destroying the current context")
	}
	c.destroyed = true
}

type bindCall struct {
	unit int
	tex  Handle
}

type allocCall struct {
	target BufferTarget
	buf    Handle
	size   int
	data   []byte
}

// fakeDevice records the calls of the engine. Every GPU call checks that
// some context is current.
type fakeDevice struct {
	platform *fakePlatform
	layout   Layout
	units    int

	initErr    error
	programErr error
	// failWrites makes the next n WriteBuffer calls fail.
	failWrites int

	next Handle

	configured  int
	programs    map[Handle]int
	buffers     map[Handle]bool
	textures    map[Handle]TextureDesc
	states      map[Handle]*fakeContext
	statesMade  int
	binds       []bindCall
	allocs      []allocCall
	writes      [][]byte
	subImages   []Rect
	texImages   int
	draws       []DrawCall
	drawWindows []WindowID
	clears      [][4]float32
	viewports   [][2]int

	// violations lists GPU calls made without a current context or with
	// another context's vertex state.
	violations []string
}

func newFakeDevice(p *fakePlatform, layout Layout, units int) *fakeDevice {
	return &fakeDevice{
		platform: p,
		layout:   layout,
		units:    units,
		programs: make(map[Handle]int),
		buffers:  make(map[Handle]bool),
		textures: make(map[Handle]TextureDesc),
		states:   make(map[Handle]*fakeContext),
	}
}

func (d *fakeDevice) check(op string) {
	if d.platform.current == nil {
		d.violations = append(d.violations, op+": no current context")
	}
}

func (d *fakeDevice) handle() Handle {
	d.next++
	return d.next
}

func (d *fakeDevice) Init() (DeviceInfo, error) {
	d.check("init")
	if d.initErr != nil {
		return DeviceInfo{}, d.initErr
	}
	return DeviceInfo{Version: "fake 1.0", MaxTextureUnits: d.units}, nil
}

func (d *fakeDevice) Layout() Layout { return d.layout }

func (d *fakeDevice) Configure() {
	d.check("configure")
	d.configured++
}

func (d *fakeDevice) CreateProgram(units int) (Handle, error) {
	d.check("create program")
	if d.programErr != nil {
		return 0, d.programErr
	}
	h := d.handle()
	d.programs[h] = units
	return h, nil
}

func (d *fakeDevice) DeleteProgram(p Handle) {
	d.check("delete program")
	delete(d.programs, p)
}

func (d *fakeDevice) CreateBuffer() Handle {
	d.check("create buffer")
	h := d.handle()
	d.buffers[h] = true
	return h
}

func (d *fakeDevice) DeleteBuffer(buf Handle) {
	d.check("delete buffer")
	delete(d.buffers, buf)
}

func (d *fakeDevice) AllocBuffer(t BufferTarget, buf Handle, size int, data []byte) {
	d.check("alloc buffer")
	d.allocs = append(d.allocs, allocCall{target: t, buf: buf, size: size, data: data})
}

func (d *fakeDevice) WriteBuffer(t BufferTarget, buf Handle, data []byte) bool {
	d.check("write buffer")
	d.writes = append(d.writes, append([]byte(nil), data...))
	if d.failWrites > 0 {
		d.failWrites--
		return false
	}
	return true
}

func (d *fakeDevice) CreateVertexState(program, vertices, quad Handle) Handle {
	d.check("create vertex state")
	h := d.handle()
	d.states[h] = d.platform.current
	d.statesMade++
	return h
}

func (d *fakeDevice) DeleteVertexState(vs Handle) {
	d.check("delete vertex state")
	if owner := d.states[vs]; owner != d.platform.current {
		d.violations = append(d.violations, fmt.Sprintf("delete vertex state %d from another context", vs))
	}
	delete(d.states, vs)
}

func (d *fakeDevice) CreateTexture(desc TextureDesc) Handle {
	d.check("create texture")
	h := d.handle()
	d.textures[h] = desc
	return h
}

func (d *fakeDevice) TexImage(tex Handle, width, height int, data []byte) {
	d.check("tex image")
	desc := d.textures[tex]
	desc.Width, desc.Height, desc.Data = width, height, data
	d.textures[tex] = desc
	d.texImages++
}

func (d *fakeDevice) TexSubImage(tex Handle, r Rect, data []byte) {
	d.check("tex sub image")
	d.subImages = append(d.subImages, r)
}

func (d *fakeDevice) DeleteTexture(tex Handle) {
	d.check("delete texture")
	delete(d.textures, tex)
}

func (d *fakeDevice) BindTexture(unit int, tex Handle) {
	d.check("bind texture")
	d.binds = append(d.binds, bindCall{unit: unit, tex: tex})
}

func (d *fakeDevice) Viewport(width, height int) {
	d.check("viewport")
	d.viewports = append(d.viewports, [2]int{width, height})
}

func (d *fakeDevice) Clear(color [4]float32) {
	d.check("clear")
	d.clears = append(d.clears, color)
}

func (d *fakeDevice) Draw(call DrawCall) {
	d.check("draw")
	if owner := d.states[call.VertexState]; owner == nil || owner != d.platform.current {
		d.violations = append(d.violations, fmt.Sprintf("draw with vertex state %d of another context", call.VertexState))
	}
	d.draws = append(d.draws, call)
	if d.platform.current != nil {
		d.drawWindows = append(d.drawWindows, d.platform.current.window)
	}
}

// fixture is an engine on a fake platform and device.
type fixture struct {
	platform *fakePlatform
	device   *fakeDevice
	engine   *Engine
}

func newFixture(layout Layout, units int, window fakeWindow, opts ...Option) (*fixture, error) {
	p := &fakePlatform{}
	d := newFakeDevice(p, layout, units)
	e, err := New(p, d, window, append([]Option{WithLogger(discard)}, opts...)...)
	return &fixture{platform: p, device: d, engine: e}, err
}

// context returns the latest live context created for window id.
func (f *fixture) context(id WindowID) *fakeContext {
	for i := len(f.platform.contexts) - 1; i >= 0; i-- {
		if c := f.platform.contexts[i]; c.window == id {
			return c
		}
	}
	return nil
}

func solid(w, h int) []byte {
	data := make([]byte, w*h*4)
	for i := range data {
		data[i] = 0xff
	}
	return data
}
