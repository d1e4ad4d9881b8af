package sprite

// NoopSpriteRender is a SpriteRender that draws nothing. It validates
// texture data like a real renderer and hands out distinct ids, so it can
// stand in for a renderer whose initialization failed.
type NoopSpriteRender struct {
	next TextureID
}

var _ SpriteRender = (*NoopSpriteRender)(nil)

func (*NoopSpriteRender) AddWindow(Window) error { return nil }
func (*NoopSpriteRender) RemoveWindow(WindowID) error { return nil }
func (*NoopSpriteRender) Resize(WindowID, int, int) error { return nil }
func (*NoopSpriteRender) Suspend() {}
func (*NoopSpriteRender) Resume(Window) error { return nil }

func (n *NoopSpriteRender) NewTexture(t Texture) (TextureID, error) {
	if err := t.validate(); err != nil {
		return NoTexture, err
	}
	if t.id != NoTexture {
		if t.id > n.next {
			n.next = t.id
		}
		return t.id, nil
	}
	n.next++
	return n.next, nil
}

func (*NoopSpriteRender) UpdateTexture(TextureID, []byte, *Rect) error { return nil }
func (*NoopSpriteRender) ResizeTexture(TextureID, int, int, []byte) error { return nil }
func (*NoopSpriteRender) DeleteTexture(TextureID) error { return nil }
func (*NoopSpriteRender) Render(WindowID) (Renderer, error) { return noopRenderer{}, nil }

type noopRenderer struct{}

func (r noopRenderer) ClearScreen([4]float32) Renderer { return r }
func (r noopRenderer) DrawSprites(*Camera, []SpriteInstance) Renderer { return r }
func (noopRenderer) Finish() error { return nil }
