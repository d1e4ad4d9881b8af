package sprite

// SpriteInstance is the render state of one sprite.
//
// The renderer only reads a slice of instances during DrawSprites and never
// keeps a reference to it afterwards, so callers are free to mutate the slice
// between frames.
type SpriteInstance struct {
	// Scale is the size of the sprite in world units. Negative values flip it.
	Scale [2]float32
	// Angle is the counterclockwise rotation in radians.
	Angle float32
	// UVRect is (u, v, width, height) in the normalized texture space.
	UVRect [4]float32
	// Color multiplies the sampled texel, RGBA 0-255.
	Color [4]uint8
	// Pos is the world position of the sprite center.
	Pos [2]float32
	// Texture selects the texture sampled by the sprite.
	Texture TextureID
}

// NewSpriteInstance creates an opaque white sprite centered at (x, y).
func NewSpriteInstance(x, y, width, height float32, texture TextureID, uvRect [4]float32) SpriteInstance {
	return SpriteInstance{
		Scale:   [2]float32{width, height},
		UVRect:  uvRect,
		Color:   [4]uint8{255, 255, 255, 255},
		Pos:     [2]float32{x, y},
		Texture: texture,
	}
}

// WithPosition returns a copy of s centered at (x, y).
func (s SpriteInstance) WithPosition(x, y float32) SpriteInstance {
	s.Pos = [2]float32{x, y}
	return s
}

// WithScale returns a copy of s with the given size.
func (s SpriteInstance) WithScale(width, height float32) SpriteInstance {
	s.Scale = [2]float32{width, height}
	return s
}

// WithAngle returns a copy of s rotated by radians.
func (s SpriteInstance) WithAngle(radians float32) SpriteInstance {
	s.Angle = radians
	return s
}

// WithColor returns a copy of s tinted with color.
func (s SpriteInstance) WithColor(color [4]uint8) SpriteInstance {
	s.Color = color
	return s
}

// WithUVRect returns a copy of s sampling the given texture sub-rectangle.
func (s SpriteInstance) WithUVRect(uvRect [4]float32) SpriteInstance {
	s.UVRect = uvRect
	return s
}

// WithTexture returns a copy of s sampling texture.
func (s SpriteInstance) WithTexture(texture TextureID) SpriteInstance {
	s.Texture = texture
	return s
}

// SetPosition moves the sprite center to (x, y).
func (s *SpriteInstance) SetPosition(x, y float32) {
	s.Pos = [2]float32{x, y}
}

// SetAngle sets the sprite rotation in radians.
func (s *SpriteInstance) SetAngle(radians float32) {
	s.Angle = radians
}
