package sprite

import "errors"

var (
	// ErrInvalidLength is returned when texture data does not match the size
	// implied by its dimensions and format.
	ErrInvalidLength = errors.New("sprite: invalid texture data length")

	// ErrNoContext is returned when no rendering context exists, for example
	// between Suspend and Resume.
	ErrNoContext = errors.New("sprite: renderer context does not exist")

	// ErrUnknownTexture is returned for a TextureID the registry does not hold.
	ErrUnknownTexture = errors.New("sprite: unknown texture")

	// ErrUnknownWindow is returned for a WindowID without a context.
	ErrUnknownWindow = errors.New("sprite: unknown window")

	// ErrZeroSize is returned when a surface or texture has a zero dimension.
	ErrZeroSize = errors.New("sprite: zero-sized surface")

	// ErrOutOfBounds is returned when an update rectangle leaves the texture.
	ErrOutOfBounds = errors.New("sprite: rectangle out of texture bounds")

	// ErrStaleSession is the panic value raised when a Renderer is used after
	// the engine moved on to another frame or window.
	ErrStaleSession = errors.New("sprite: render session is no longer valid")

	// ErrTooManyTextures is the panic value raised when one DrawSprites call
	// references more distinct textures than the backend has texture units.
	// Splitting such a batch into several draw calls is not implemented.
	ErrTooManyTextures = errors.New("sprite: batch uses more textures than available texture units")
)
