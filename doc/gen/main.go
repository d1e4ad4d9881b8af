// Command gen renders sample sprite scenes in a hidden window, captures
// framebuffer pixels, and saves JPEG screenshots to doc/imgs/.
//
// Usage:
//
//	devbox shell
//	go run ./doc/gen/
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/sprite"
	"github.com/go-theft-auto/sprite/backend/opengl"
	"github.com/go-theft-auto/sprite/platform/glfwplatform"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// textures created once for every scene.
type textures struct {
	checker sprite.TextureID
	atlas   sprite.TextureID
	disc    sprite.TextureID
}

// screenshot defines a single scene to capture.
type screenshot struct {
	name       string  // filename without extension
	width      int     // viewport width
	height     int     // viewport height
	viewHeight float32 // world units visible vertically
	rotation   float32 // camera rotation in radians
	sprites    func(tx textures) []sprite.SpriteInstance
}

func run() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	platform := glfwplatform.New(glfwplatform.OpenGL)
	platform.SetHidden(true)
	window, err := platform.CreateWindow(800, 600, "screenshot-gen")
	if err != nil {
		return err
	}
	defer window.Destroy()

	sr, err := sprite.New(platform, opengl.NewDevice(), window, sprite.WithVSync(false))
	if err != nil {
		return fmt.Errorf("sprite renderer: %w", err)
	}
	defer sr.Suspend()

	tx, err := loadTextures(sr)
	if err != nil {
		return err
	}

	outDir := filepath.Join("doc", "imgs")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	shots := buildScreenshots()
	for _, s := range shots {
		if err := capture(sr, window.ID(), tx, s, outDir); err != nil {
			return fmt.Errorf("capture %s: %w", s.name, err)
		}
		fmt.Printf("  %s.jpg (%dx%d)\n", s.name, s.width, s.height)
	}

	fmt.Printf("\nGenerated %d screenshots in %s/\n", len(shots), outDir)
	return nil
}

func capture(sr *sprite.Engine, id sprite.WindowID, tx textures, s screenshot, outDir string) error {
	// Only the viewport changes. The hidden window stays at 800x600, larger
	// than every screenshot, because GLFW resizes asynchronously.
	if err := sr.Resize(id, s.width, s.height); err != nil {
		return err
	}
	camera := sprite.NewCamera(s.width, s.height, s.viewHeight)
	camera.SetViewRotation(s.rotation)

	r, err := sr.Render(id)
	if err != nil {
		return err
	}
	r.ClearScreen([4]float32{0.12, 0.12, 0.14, 1}).DrawSprites(camera, s.sprites(tx))

	// Read the back buffer before it is swapped.
	pixels := make([]byte, s.width*s.height*4)
	gl.ReadPixels(0, 0, int32(s.width), int32(s.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	if err := r.Finish(); err != nil {
		return err
	}

	// Flip vertically (OpenGL origin is bottom-left)
	rowLen := s.width * 4
	tmp := make([]byte, rowLen)
	for y := 0; y < s.height/2; y++ {
		top := y * rowLen
		bot := (s.height - 1 - y) * rowLen
		copy(tmp, pixels[top:top+rowLen])
		copy(pixels[top:top+rowLen], pixels[bot:bot+rowLen])
		copy(pixels[bot:bot+rowLen], tmp)
	}

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, pixels)

	path := filepath.Join(outDir, s.name+".jpg")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

func loadTextures(sr sprite.SpriteRender) (textures, error) {
	checker := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			c := color.NRGBA{0x30, 0x90, 0xe0, 0xff}
			if (x+y)%2 == 0 {
				c = color.NRGBA{0xf0, 0xf0, 0xf0, 0xff}
			}
			checker.SetNRGBA(x, y, c)
		}
	}

	// 2x2 cells of solid colors, sampled through uv rectangles.
	atlas := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	cells := []color.NRGBA{
		{0xe0, 0x40, 0x40, 0xff},
		{0x40, 0xe0, 0x40, 0xff},
		{0x40, 0x40, 0xe0, 0xff},
		{0xe0, 0xe0, 0x40, 0xff},
	}
	for y := range 32 {
		for x := range 32 {
			atlas.SetNRGBA(x, y, cells[(y/16)*2+x/16])
		}
	}

	const size = 64
	disc := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			dx, dy := float64(x)-size/2+0.5, float64(y)-size/2+0.5
			d := math.Hypot(dx, dy) / (size / 2)
			if d > 1 {
				continue
			}
			disc.SetNRGBA(x, y, color.NRGBA{0xff, 0xff, 0xff, uint8(255 * (1 - d*d))})
		}
	}

	var tx textures
	for _, t := range []struct {
		dst *sprite.TextureID
		tex sprite.Texture
	}{
		{&tx.checker, sprite.TextureFromImage(checker).WithFilter(sprite.FilterNearest)},
		{&tx.atlas, sprite.TextureFromImage(atlas).WithFilter(sprite.FilterNearest)},
		{&tx.disc, sprite.TextureFromImage(disc)},
	} {
		id, err := t.tex.Create(sr)
		if err != nil {
			return textures{}, fmt.Errorf("create texture: %w", err)
		}
		*t.dst = id
	}
	return tx, nil
}

var full = [4]float32{0, 0, 1, 1}

// buildScreenshots returns the list of all scenes to generate.
func buildScreenshots() []screenshot {
	return []screenshot{
		{
			name: "single", width: 300, height: 200, viewHeight: 2,
			sprites: func(tx textures) []sprite.SpriteInstance {
				return []sprite.SpriteInstance{
					sprite.NewSpriteInstance(0, 0, 1, 1, tx.checker, full),
				}
			},
		},
		{
			name: "rotation", width: 400, height: 200, viewHeight: 4,
			sprites: func(tx textures) []sprite.SpriteInstance {
				var out []sprite.SpriteInstance
				for i := range 5 {
					out = append(out, sprite.NewSpriteInstance(float32(i-2)*1.5, 0, 1, 1, tx.checker, full).
						WithAngle(float32(i)*math.Pi/8))
				}
				return out
			},
		},
		{
			name: "tint", width: 400, height: 200, viewHeight: 3,
			sprites: func(tx textures) []sprite.SpriteInstance {
				colors := [][4]uint8{
					{255, 255, 255, 255},
					{255, 80, 80, 255},
					{80, 255, 80, 255},
					{80, 80, 255, 128},
				}
				var out []sprite.SpriteInstance
				for i, c := range colors {
					out = append(out, sprite.NewSpriteInstance(float32(i)*1.4-2.1, 0, 1.2, 1.2, tx.disc, full).WithColor(c))
				}
				return out
			},
		},
		{
			name: "atlas", width: 400, height: 200, viewHeight: 2,
			sprites: func(tx textures) []sprite.SpriteInstance {
				var out []sprite.SpriteInstance
				for i := range 4 {
					uv := [4]float32{float32(i%2) / 2, float32(i/2) / 2, 0.5, 0.5}
					out = append(out, sprite.NewSpriteInstance(float32(i)*1.1-1.65, 0, 1, 1, tx.atlas, uv))
				}
				return out
			},
		},
		{
			name: "flip", width: 300, height: 200, viewHeight: 2,
			sprites: func(tx textures) []sprite.SpriteInstance {
				s := sprite.NewSpriteInstance(-0.7, 0, 1, 1, tx.atlas, full)
				return []sprite.SpriteInstance{s, s.WithPosition(0.7, 0).WithScale(-1, 1)}
			},
		},
		{
			name: "camera_rotation", width: 300, height: 300, viewHeight: 6, rotation: math.Pi / 6,
			sprites: func(tx textures) []sprite.SpriteInstance {
				var out []sprite.SpriteInstance
				for y := range 5 {
					for x := range 5 {
						out = append(out, sprite.NewSpriteInstance(float32(x-2), float32(y-2), 0.9, 0.9, tx.checker, full))
					}
				}
				return out
			},
		},
		{
			name: "mixed_textures", width: 500, height: 300, viewHeight: 6,
			sprites: func(tx textures) []sprite.SpriteInstance {
				ids := []sprite.TextureID{tx.checker, tx.atlas, tx.disc}
				var out []sprite.SpriteInstance
				for i := range 60 {
					x := float32(i%10) - 4.5
					y := float32(i/10) - 2.5
					out = append(out, sprite.NewSpriteInstance(x, y, 0.8, 0.8, ids[i%len(ids)], full).
						WithAngle(float32(i)*0.1))
				}
				return out
			},
		},
	}
}
