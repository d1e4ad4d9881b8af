package sprite

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// TextureID identifies a texture loaded in a SpriteRender.
// The zero value is NoTexture.
type TextureID uint32

// NoTexture is the reserved "no texture" id.
const NoTexture TextureID = 0

func (id TextureID) String() string {
	return fmt.Sprintf("texture#%d", uint32(id))
}

// TextureFormat is the pixel format of texture data.
type TextureFormat int

const (
	// FormatRGBA8888 stores each pixel as 4 bytes, red, green, blue and
	// alpha, in the sRGB color space. Data is row-major and tightly packed.
	FormatRGBA8888 TextureFormat = iota
)

// BytesPerPixel returns the size of one pixel in f.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA8888:
		return 4
	}
	panic(fmt.Sprintf("sprite: unknown texture format %d", f))
}

// TextureFilter is the interpolation used when sampling a texture.
type TextureFilter int

const (
	// FilterLinear interpolates linearly between the nearest samples.
	FilterLinear TextureFilter = iota
	// FilterNearest uses the nearest sample. Pixel art looks pixelated, as intended.
	FilterNearest
)

// Rect is a rectangle in texel coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Texture describes a texture to be created in a SpriteRender.
type Texture struct {
	id     TextureID
	width  int
	height int
	format TextureFormat
	filter TextureFilter
	data   []byte
}

// NewTexture describes a width x height RGBA8888 texture with linear
// filtering and undefined contents.
func NewTexture(width, height int) Texture {
	return Texture{
		width:  width,
		height: height,
		format: FormatRGBA8888,
		filter: FilterLinear,
	}
}

// WithID sets a stable id for the texture. Creating a texture with the id
// of an existing one replaces it; after a context loss the same id can be
// used to recreate it.
func (t Texture) WithID(id TextureID) Texture {
	t.id = id
	return t
}

// WithFormat sets the format of the texture data.
func (t Texture) WithFormat(f TextureFormat) Texture {
	t.format = f
	return t
}

// WithFilter sets the sampling filter.
func (t Texture) WithFilter(f TextureFilter) Texture {
	t.filter = f
	return t
}

// WithData sets the initial pixels. Its length must be
// width * height * format.BytesPerPixel().
func (t Texture) WithData(data []byte) Texture {
	t.data = data
	return t
}

// Size returns the texture dimensions.
func (t Texture) Size() (width, height int) {
	return t.width, t.height
}

// Create creates the texture in sr. Same as sr.NewTexture(t).
func (t Texture) Create(sr SpriteRender) (TextureID, error) {
	return sr.NewTexture(t)
}

func (t Texture) validate() error {
	if t.width <= 0 || t.height <= 0 {
		return fmt.Errorf("texture %dx%d: %w", t.width, t.height, ErrZeroSize)
	}
	if t.data == nil {
		return nil
	}
	return checkLength(t.data, t.width, t.height, t.format)
}

func checkLength(data []byte, width, height int, format TextureFormat) error {
	want := width * height * format.BytesPerPixel()
	if len(data) != want {
		return fmt.Errorf("%w: expected %dx%dx%d=%d bytes, got %d",
			ErrInvalidLength, width, height, format.BytesPerPixel(), want, len(data))
	}
	return nil
}

// TextureFromImage describes a texture holding the pixels of img, converted
// to tightly packed, non-premultiplied RGBA8888.
func TextureFromImage(img image.Image) Texture {
	b := img.Bounds()
	dst, ok := img.(*image.NRGBA)
	if !ok || dst.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Copy(dst, image.Point{}, img, b, draw.Src, nil)
	}
	return NewTexture(b.Dx(), b.Dy()).WithData(dst.Pix[:4*b.Dx()*b.Dy()])
}
