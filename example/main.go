// Example draws animated sprites into one or more windows sharing the same
// textures and buffers.
//
// Prerequisites:
//
//	Install devbox: https://www.jetify.com/devbox
//	devbox shell              # enter the dev environment (provides Go + OpenGL/X11 headers)
//	go run ./example/         # run this example
//
// Flags select the backend (opengl or gles), the number of windows and of
// sprites. Drag to pan, scroll to zoom, Q and E rotate the camera.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/sprite"
	"github.com/go-theft-auto/sprite/backend/gles"
	"github.com/go-theft-auto/sprite/backend/opengl"
	"github.com/go-theft-auto/sprite/platform/glfwplatform"
)

const (
	windowWidth  = 800
	windowHeight = 600
	viewHeight   = 10
)

func init() {
	// GLFW and the GL contexts must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	backend := flag.String("backend", "opengl", "graphics backend: opengl or gles")
	windows := flag.Int("windows", 2, "number of windows")
	sprites := flag.Int("sprites", 1000, "number of sprites")
	verbose := flag.Bool("verbose", false, "log every draw call")
	flag.Parse()

	sprite.SetVerbose(*verbose)
	if err := run(*backend, *windows, *sprites); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type view struct {
	window *glfwplatform.Window
	ctrl   *glfwplatform.CameraController
}

func run(backend string, windows, count int) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	var (
		platform *glfwplatform.Platform
		device   sprite.Device
	)
	switch backend {
	case "opengl":
		platform = glfwplatform.New(glfwplatform.OpenGL)
		device = opengl.NewDevice()
	case "gles":
		platform = glfwplatform.New(glfwplatform.OpenGLES)
		device = gles.NewDevice()
	default:
		return fmt.Errorf("unknown backend %q", backend)
	}

	views := make([]*view, 0, windows)
	for i := range max(windows, 1) {
		w, err := platform.CreateWindow(windowWidth, windowHeight, fmt.Sprintf("sprite example %d", i+1))
		if err != nil {
			return err
		}
		views = append(views, &view{window: w})
	}

	sr, err := sprite.New(platform, device, views[0].window)
	if err != nil {
		return fmt.Errorf("sprite renderer: %w", err)
	}
	for _, v := range views[1:] {
		if err := sr.AddWindow(v.window); err != nil {
			return err
		}
	}
	for _, v := range views {
		fw, fh := v.window.Size()
		v.ctrl = glfwplatform.NewCameraController(v.window, sprite.NewCamera(fw, fh, viewHeight))
		id := v.window.ID()
		v.ctrl.OnResize = func(width, height int) {
			if err := sr.Resize(id, width, height); err != nil {
				sprite.Logger().Warn("resize", "window", id, "err", err)
			}
		}
	}

	textures, err := loadTextures(sr)
	if err != nil {
		return err
	}
	instances, speeds := spawn(count, textures)

	start := time.Now()
	for len(views) > 0 {
		glfw.PollEvents()
		t := float32(time.Since(start).Seconds())
		for i := range instances {
			instances[i].SetAngle(t * speeds[i])
		}

		open := views[:0]
		for _, v := range views {
			if v.window.ShouldClose() {
				if err := sr.RemoveWindow(v.window.ID()); err != nil {
					return err
				}
				v.window.Destroy()
				continue
			}
			open = append(open, v)

			r, err := sr.Render(v.window.ID())
			if err != nil {
				return err
			}
			err = r.ClearScreen([4]float32{0.12, 0.12, 0.14, 1}).
				DrawSprites(v.ctrl.Camera(), instances).
				Finish()
			if err != nil {
				return err
			}
		}
		views = open
	}
	return nil
}

// loadTextures creates a checkerboard and a radial gradient.
func loadTextures(sr sprite.SpriteRender) ([]sprite.TextureID, error) {
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

	const size = 64
	disc := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			dx, dy := float64(x)-size/2+0.5, float64(y)-size/2+0.5
			d := math.Hypot(dx, dy) / (size / 2)
			if d > 1 {
				continue
			}
			disc.SetNRGBA(x, y, color.NRGBA{0xff, uint8(255 * (1 - d)), 0x40, uint8(255 * (1 - d*d))})
		}
	}

	var ids []sprite.TextureID
	for _, t := range []sprite.Texture{
		sprite.TextureFromImage(checker).WithFilter(sprite.FilterNearest),
		sprite.TextureFromImage(disc),
	} {
		id, err := t.Create(sr)
		if err != nil {
			return nil, fmt.Errorf("create texture: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func spawn(count int, textures []sprite.TextureID) ([]sprite.SpriteInstance, []float32) {
	instances := make([]sprite.SpriteInstance, count)
	speeds := make([]float32, count)
	full := [4]float32{0, 0, 1, 1}
	for i := range instances {
		size := 0.2 + rand.Float32()*0.6
		instances[i] = sprite.NewSpriteInstance(
			rand.Float32()*40-20, rand.Float32()*40-20,
			size, size,
			textures[i%len(textures)], full,
		).WithColor([4]uint8{
			uint8(128 + rand.IntN(128)),
			uint8(128 + rand.IntN(128)),
			uint8(128 + rand.IntN(128)),
			255,
		})
		speeds[i] = rand.Float32()*4 - 2
	}
	return instances, speeds
}
