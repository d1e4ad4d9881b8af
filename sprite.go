package sprite

// SpriteRender is a sprite renderer drawing into one or more windows.
//
// All methods must be called from the thread that owns the graphics
// contexts; see runtime.LockOSThread.
type SpriteRender interface {
	// AddWindow creates a context for w sharing textures and buffers with
	// the existing ones. Adding a window twice is a no-op.
	AddWindow(w Window) error
	// RemoveWindow destroys the context of id. Removing the last window
	// releases every GPU resource, as Suspend does.
	RemoveWindow(id WindowID) error

	// NewTexture uploads t and returns its id.
	NewTexture(t Texture) (TextureID, error)
	// UpdateTexture overwrites the pixels of a texture. A nil rect updates
	// the whole texture.
	UpdateTexture(id TextureID, data []byte, rect *Rect) error
	// ResizeTexture reallocates a texture. Previous contents are lost; data
	// may be nil.
	ResizeTexture(id TextureID, width, height int, data []byte) error
	// DeleteTexture releases a texture.
	DeleteTexture(id TextureID) error

	// Render starts a frame on the window id. The returned Renderer is
	// valid until the next call to Render, Resize, AddWindow, RemoveWindow,
	// Suspend or Resume.
	Render(id WindowID) (Renderer, error)
	// Resize updates the viewport of a window after its surface changed.
	Resize(id WindowID, width, height int) error

	// Suspend destroys every context together with the textures, buffers and
	// program. Textures must be recreated after Resume.
	Suspend()
	// Resume recreates the first context on w and the shared resources.
	Resume(w Window) error
}

// Renderer is one frame of drawing into one window.
type Renderer interface {
	// ClearScreen clears the window to an RGBA color.
	ClearScreen(color [4]float32) Renderer
	// DrawSprites draws sprites as seen by camera. The slice is only read
	// during the call.
	//
	// It panics with ErrTooManyTextures when sprites reference more distinct
	// textures than the backend has texture units.
	DrawSprites(camera *Camera, sprites []SpriteInstance) Renderer
	// Finish presents the frame.
	Finish() error
}
