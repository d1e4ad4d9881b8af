package sprite

// Handle is the name of a backend object (program, buffer, texture or
// vertex state). Zero means no object.
type Handle uint32

// Layout selects how sprites are serialized into the vertex buffer.
type Layout int

const (
	// LayoutInstanced writes one record per sprite and relies on attribute
	// divisors to expand a shared unit quad on the GPU.
	LayoutInstanced Layout = iota
	// LayoutExpanded writes four pre-transformed vertices per sprite and
	// draws them through a shared index buffer. Used where instancing is
	// not available (GLES 2.0, WebGL 1.0).
	LayoutExpanded
)

func (l Layout) String() string {
	switch l {
	case LayoutInstanced:
		return "instanced"
	case LayoutExpanded:
		return "expanded"
	}
	return "unknown"
}

// BufferTarget is the binding point of a buffer object.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// DeviceInfo holds the limits queried when a device is initialized.
type DeviceInfo struct {
	Version         string
	MaxTextureUnits int
}

// TextureDesc describes the storage of a texture. Data may be nil, in
// which case the contents are undefined.
type TextureDesc struct {
	Width, Height int
	Format        TextureFormat
	Filter        TextureFilter
	Data          []byte
}

// DrawCall is one batched draw of Count sprites.
type DrawCall struct {
	Program     Handle
	VertexState Handle
	Vertices    Handle
	Indices     Handle
	View        [9]float32
	Units       int
	Count       int
}

// Device is the set of primitive graphics operations one backend API
// supplies. All calls happen on the thread owning the current context.
//
// The batching, texture unit allocation and buffer growth policy live in
// the Engine; a Device only issues the raw API calls.
type Device interface {
	// Init loads the API entry points on the current context and queries
	// its limits.
	Init() (DeviceInfo, error)
	// Layout reports the vertex layout the device's program expects.
	Layout() Layout
	// Configure sets per-context state such as blending. It is called once
	// on every new context, right after it becomes current.
	Configure()

	// CreateProgram compiles and links the sprite program for the given
	// number of sampler units. Errors carry the driver info log.
	CreateProgram(units int) (Handle, error)
	DeleteProgram(program Handle)

	CreateBuffer() Handle
	DeleteBuffer(buf Handle)
	// AllocBuffer (re)creates the storage of buf with size bytes,
	// initialized from data when it is not nil.
	AllocBuffer(target BufferTarget, buf Handle, size int, data []byte)
	// WriteBuffer writes data at the start of buf. It returns false when
	// the driver reports a transient failure and the write must be redone.
	WriteBuffer(target BufferTarget, buf Handle, data []byte) bool

	// CreateVertexState creates the per-context attribute binding for the
	// program. quad is the shared unit quad for the instanced layout and
	// zero otherwise. Vertex states are not shared between contexts.
	CreateVertexState(program, vertices, quad Handle) Handle
	DeleteVertexState(vs Handle)

	CreateTexture(desc TextureDesc) Handle
	// TexImage reallocates the storage of a texture.
	TexImage(tex Handle, width, height int, data []byte)
	// TexSubImage overwrites a sub-rectangle of a texture.
	TexSubImage(tex Handle, rect Rect, data []byte)
	DeleteTexture(tex Handle)
	// BindTexture activates unit and binds tex to it.
	BindTexture(unit int, tex Handle)

	Viewport(width, height int)
	Clear(color [4]float32)
	Draw(call DrawCall)
}

// WindowID identifies a window. It is comparable and stable for the
// lifetime of the window.
type WindowID uint64

// Window is the part of a native window the renderer needs.
type Window interface {
	ID() WindowID
	// Size returns the drawable size in pixels.
	Size() (width, height int)
}

// Context is a native graphics context bound to one window surface.
type Context interface {
	MakeCurrent() error
	MakeNotCurrent() error
	SwapBuffers() error
	Destroy()
}

// ContextConfig holds the attributes requested for a new context.
type ContextConfig struct {
	VSync bool
}

// Platform creates native contexts.
type Platform interface {
	// CreateContext creates a context for w. When share is not nil the new
	// context shares its object namespace with share.
	CreateContext(w Window, share Context, cfg ContextConfig) (Context, error)
}
