/*
Package sprite provides a 2D sprite batch renderer drawing textured, tinted,
rotated quads into one or more windows through interchangeable graphics
backends.

# Overview

A frame is one DrawSprites call per batch: the whole slice of sprites is
serialized into a shared vertex buffer and drawn with a single draw call.
Textures are assigned to texture units per batch, so one batch may mix up
to MaxTextureUnits distinct textures.

The Engine holds everything that does not depend on the graphics API:
texture registry, unit allocation, buffer growth and context switching.
A Device issues the API calls. Three devices exist:

	backend/opengl   desktop OpenGL 4.1 core, instanced attributes
	backend/gles     OpenGL ES 2.0, pre-expanded vertices and indices
	backend/webgl    WebGL 1.0 in the browser (js/wasm), like gles

A Platform creates the native contexts; platform/glfwplatform does this
with GLFW for the opengl and gles backends, backend/webgl with a canvas.

# Quick Start

	// Setup
	platform := glfwplatform.New(glfwplatform.OpenGL)
	window, _ := platform.CreateWindow(800, 600, "sprites")
	sr, _ := sprite.New(platform, opengl.NewDevice(), window)
	camera := sprite.NewCamera(800, 600, 10)

	tex, _ := sprite.TextureFromImage(img).Create(sr)
	sprites := []sprite.SpriteInstance{
	    sprite.NewSpriteInstance(0, 0, 1, 1, tex, [4]float32{0, 0, 1, 1}),
	}

	// Game loop
	for !window.ShouldClose() {
	    glfw.PollEvents()
	    r, err := sr.Render(window.ID())
	    if err != nil {
	        break
	    }
	    r.ClearScreen([4]float32{0, 0, 0, 1}).
	        DrawSprites(camera, sprites).
	        Finish()
	}

# Coordinates

World space is continuous with y growing downwards, like screen
coordinates. The Camera maps the rectangle of its size centered at its
position to the whole viewport, turned around the center by its rotation.
Sprite positions are centers, angles are in radians and a negative scale
mirrors the sprite.

Texture coordinates are normalized: a UVRect of (u, v, w, h) samples the
w by h region starting at (u, v), with (0, 0) the first row of the
texture data.

# Windows and Contexts

Every window has its own context, all sharing textures, buffers and the
sprite program with the first one. Only one context is current at a time;
Render, Resize, AddWindow and RemoveWindow switch it as needed, which ends
the Renderer of the previous call. Using a Renderer after that panics with
ErrStaleSession.

Removing the last window suspends the renderer. Suspend releases every GPU
object and Resume rebuilds the shared state on a new window; textures must
then be created again, with their old ids when WithID was used.

# Errors

Recoverable errors are returned and wrap the Err* values of this package;
test them with errors.Is. Two conditions panic because the frame cannot be
drawn correctly: a batch referencing more distinct textures than texture
units (ErrTooManyTextures), and a buffer write the driver keeps rejecting.

# Logging

The package logs through log/slog. Engines use the logger given with
WithLogger, or the package logger (see SetLogger and SetVerbose). Buffer
reallocations and context changes log at Info, every batch at Debug.

# Threading

An Engine is not safe for concurrent use. All of its methods, and those
of the Renderer it returns, must be called from the thread owning the
contexts, usually the main thread locked with runtime.LockOSThread.
*/
package sprite
