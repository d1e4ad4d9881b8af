package sprite

import "fmt"

type textureEntry struct {
	handle Handle
	width  int
	height int
	format TextureFormat
	filter TextureFilter
}

// textureRegistry tracks the textures loaded in the shared context and
// maps stable TextureIDs to backend handles.
//
// Every operation validates its input before touching the device, so a
// failed call leaves both the registry and the GPU unchanged.
type textureRegistry struct {
	entries map[TextureID]*textureEntry
	next    TextureID
}

func newTextureRegistry() textureRegistry {
	return textureRegistry{
		entries: make(map[TextureID]*textureEntry),
		next:    1,
	}
}

// handle returns the backend texture for id, or zero when id is unknown.
func (r *textureRegistry) handle(id TextureID) Handle {
	if e, ok := r.entries[id]; ok {
		return e.handle
	}
	return 0
}

func (r *textureRegistry) len() int {
	return len(r.entries)
}

func (r *textureRegistry) create(dev Device, t Texture) (TextureID, error) {
	if err := t.validate(); err != nil {
		return NoTexture, err
	}

	id := t.id
	if id == NoTexture {
		id = r.next
	}
	if id >= r.next {
		r.next = id + 1
	}

	if old, ok := r.entries[id]; ok {
		dev.DeleteTexture(old.handle)
	}

	h := dev.CreateTexture(TextureDesc{
		Width:  t.width,
		Height: t.height,
		Format: t.format,
		Filter: t.filter,
		Data:   t.data,
	})
	r.entries[id] = &textureEntry{
		handle: h,
		width:  t.width,
		height: t.height,
		format: t.format,
		filter: t.filter,
	}
	return id, nil
}

func (r *textureRegistry) update(dev Device, id TextureID, data []byte, sub *Rect) error {
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("update %v: %w", id, ErrUnknownTexture)
	}

	rect := Rect{Width: e.width, Height: e.height}
	if sub != nil {
		rect = *sub
	}
	if rect.X < 0 || rect.Y < 0 || rect.Width < 0 || rect.Height < 0 ||
		rect.X+rect.Width > e.width || rect.Y+rect.Height > e.height {
		return fmt.Errorf("update %v with %+v in %dx%d: %w", id, rect, e.width, e.height, ErrOutOfBounds)
	}
	if err := checkLength(data, rect.Width, rect.Height, e.format); err != nil {
		return fmt.Errorf("update %v: %w", id, err)
	}

	if rect.Width == 0 || rect.Height == 0 {
		return nil
	}
	dev.TexSubImage(e.handle, rect, data)
	return nil
}

func (r *textureRegistry) resize(dev Device, id TextureID, width, height int, data []byte) error {
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("resize %v: %w", id, ErrUnknownTexture)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize %v to %dx%d: %w", id, width, height, ErrZeroSize)
	}
	if data != nil {
		if err := checkLength(data, width, height, e.format); err != nil {
			return fmt.Errorf("resize %v: %w", id, err)
		}
	}

	dev.TexImage(e.handle, width, height, data)
	e.width = width
	e.height = height
	return nil
}

func (r *textureRegistry) remove(dev Device, id TextureID) error {
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("delete %v: %w", id, ErrUnknownTexture)
	}
	dev.DeleteTexture(e.handle)
	delete(r.entries, id)
	return nil
}

// release deletes every texture. The id counter is kept so ids handed out
// before a context loss are never reused for a different texture.
func (r *textureRegistry) release(dev Device) {
	for id, e := range r.entries {
		dev.DeleteTexture(e.handle)
		delete(r.entries, id)
	}
}

// forget drops every entry without touching the device, for when no
// context is left to delete them on.
func (r *textureRegistry) forget() {
	clear(r.entries)
}
