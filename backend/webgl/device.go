//go:build js && wasm

// Package webgl provides the WebGL 1.0 backend of the sprite renderer for
// GOOS=js GOARCH=wasm. Like OpenGL ES 2.0 it draws pre-expanded vertices
// through a shared index buffer.
package webgl

import (
	"errors"
	"fmt"
	"syscall/js"

	"github.com/go-theft-auto/sprite"
	"github.com/go-theft-auto/sprite/backend/internal/glsl"
)

type glConsts struct {
	arrayBuffer        int
	elementArrayBuffer int
	staticDraw         int
	dynamicDraw        int
	floatType          int
	unsignedByte       int
	unsignedShort      int
	triangles          int
	texture2D          int
	texture0           int
	rgba               int
	textureMinFilter   int
	textureMagFilter   int
	textureWrapS       int
	textureWrapT       int
	linear             int
	nearest            int
	clampToEdge        int
	unpackAlignment    int
	colorBufferBit     int
	blend              int
	srcAlpha           int
	oneMinusSrcAlpha   int
	compileStatus      int
	linkStatus         int
	vertexShader       int
	fragmentShader     int
	maxTextureUnits    int
	version            int
	noError            int
}

type program struct {
	value                     js.Value
	view, text                js.Value
	position, uv, color, unit int
}

// Device implements sprite.Device with WebGL 1.0. WebGL objects are
// JavaScript values, so they are kept in a table indexed by Handle.
type Device struct {
	canvas *Canvas
	gl     js.Value
	consts glConsts

	objects map[sprite.Handle]js.Value
	next    sprite.Handle

	programs map[sprite.Handle]*program
	states   map[sprite.Handle]sprite.Handle
	samplers js.Value
}

var _ sprite.Device = (*Device)(nil)

// NewDevice returns a device drawing into canvas. Init must run after the
// canvas context was created.
func NewDevice(canvas *Canvas) *Device {
	return &Device{
		canvas:   canvas,
		objects:  make(map[sprite.Handle]js.Value),
		programs: make(map[sprite.Handle]*program),
		states:   make(map[sprite.Handle]sprite.Handle),
	}
}

func (d *Device) put(v js.Value) sprite.Handle {
	d.next++
	d.objects[d.next] = v
	return d.next
}

func (d *Device) get(h sprite.Handle) js.Value {
	if v, ok := d.objects[h]; ok {
		return v
	}
	return js.Null()
}

func (d *Device) Init() (sprite.DeviceInfo, error) {
	d.gl = d.canvas.gl
	if d.gl.IsUndefined() {
		return sprite.DeviceInfo{}, errors.New("webgl: canvas has no context")
	}
	gl := d.gl
	d.consts = glConsts{
		arrayBuffer:        gl.Get("ARRAY_BUFFER").Int(),
		elementArrayBuffer: gl.Get("ELEMENT_ARRAY_BUFFER").Int(),
		staticDraw:         gl.Get("STATIC_DRAW").Int(),
		dynamicDraw:        gl.Get("DYNAMIC_DRAW").Int(),
		floatType:          gl.Get("FLOAT").Int(),
		unsignedByte:       gl.Get("UNSIGNED_BYTE").Int(),
		unsignedShort:      gl.Get("UNSIGNED_SHORT").Int(),
		triangles:          gl.Get("TRIANGLES").Int(),
		texture2D:          gl.Get("TEXTURE_2D").Int(),
		texture0:           gl.Get("TEXTURE0").Int(),
		rgba:               gl.Get("RGBA").Int(),
		textureMinFilter:   gl.Get("TEXTURE_MIN_FILTER").Int(),
		textureMagFilter:   gl.Get("TEXTURE_MAG_FILTER").Int(),
		textureWrapS:       gl.Get("TEXTURE_WRAP_S").Int(),
		textureWrapT:       gl.Get("TEXTURE_WRAP_T").Int(),
		linear:             gl.Get("LINEAR").Int(),
		nearest:            gl.Get("NEAREST").Int(),
		clampToEdge:        gl.Get("CLAMP_TO_EDGE").Int(),
		unpackAlignment:    gl.Get("UNPACK_ALIGNMENT").Int(),
		colorBufferBit:     gl.Get("COLOR_BUFFER_BIT").Int(),
		blend:              gl.Get("BLEND").Int(),
		srcAlpha:           gl.Get("SRC_ALPHA").Int(),
		oneMinusSrcAlpha:   gl.Get("ONE_MINUS_SRC_ALPHA").Int(),
		compileStatus:      gl.Get("COMPILE_STATUS").Int(),
		linkStatus:         gl.Get("LINK_STATUS").Int(),
		vertexShader:       gl.Get("VERTEX_SHADER").Int(),
		fragmentShader:     gl.Get("FRAGMENT_SHADER").Int(),
		maxTextureUnits:    gl.Get("MAX_TEXTURE_IMAGE_UNITS").Int(),
		version:            gl.Get("VERSION").Int(),
		noError:            gl.Get("NO_ERROR").Int(),
	}
	return sprite.DeviceInfo{
		Version:         gl.Call("getParameter", d.consts.version).String(),
		MaxTextureUnits: gl.Call("getParameter", d.consts.maxTextureUnits).Int(),
	}, nil
}

func (d *Device) Layout() sprite.Layout {
	return sprite.LayoutExpanded
}

func (d *Device) Configure() {
	d.gl.Call("enable", d.consts.blend)
	d.gl.Call("blendFunc", d.consts.srcAlpha, d.consts.oneMinusSrcAlpha)
}

func (d *Device) CreateProgram(units int) (sprite.Handle, error) {
	vs, err := d.compileShader(d.consts.vertexShader, glsl.ES100Vertex)
	if err != nil {
		return 0, fmt.Errorf("vertex shader compilation failed: %w", err)
	}
	defer d.gl.Call("deleteShader", vs)
	fs, err := d.compileShader(d.consts.fragmentShader, glsl.ES100Fragment(units))
	if err != nil {
		return 0, fmt.Errorf("fragment shader compilation failed: %w", err)
	}
	defer d.gl.Call("deleteShader", fs)

	p := d.gl.Call("createProgram")
	d.gl.Call("attachShader", p, vs)
	d.gl.Call("attachShader", p, fs)
	d.gl.Call("linkProgram", p)
	if !d.gl.Call("getProgramParameter", p, d.consts.linkStatus).Bool() {
		log := d.gl.Call("getProgramInfoLog", p).String()
		d.gl.Call("deleteProgram", p)
		return 0, fmt.Errorf("shader program linking failed: %s", log)
	}

	attribs, err := glsl.AttribLocations(func(name string) int32 {
		return int32(d.gl.Call("getAttribLocation", p, name).Int())
	})
	if err != nil {
		d.gl.Call("deleteProgram", p)
		return 0, fmt.Errorf("shader program: %w", err)
	}

	h := d.put(p)
	d.programs[h] = &program{
		value:    p,
		view:     d.gl.Call("getUniformLocation", p, glsl.UniformView),
		text:     d.gl.Call("getUniformLocation", p, glsl.UniformText),
		position: int(attribs.Position),
		uv:       int(attribs.UV),
		color:    int(attribs.Color),
		unit:     int(attribs.Texture),
	}
	d.samplers = js.Global().Get("Int32Array").New(units)
	for i := range units {
		d.samplers.SetIndex(i, i)
	}
	return h, nil
}

func (d *Device) compileShader(kind int, source string) (js.Value, error) {
	shader := d.gl.Call("createShader", kind)
	d.gl.Call("shaderSource", shader, source)
	d.gl.Call("compileShader", shader)
	if !d.gl.Call("getShaderParameter", shader, d.consts.compileStatus).Bool() {
		log := d.gl.Call("getShaderInfoLog", shader).String()
		d.gl.Call("deleteShader", shader)
		return js.Null(), errors.New(log)
	}
	return shader, nil
}

func (d *Device) DeleteProgram(p sprite.Handle) {
	d.gl.Call("deleteProgram", d.get(p))
	delete(d.programs, p)
	delete(d.objects, p)
}

func (d *Device) CreateBuffer() sprite.Handle {
	return d.put(d.gl.Call("createBuffer"))
}

func (d *Device) DeleteBuffer(buf sprite.Handle) {
	d.gl.Call("deleteBuffer", d.get(buf))
	delete(d.objects, buf)
}

func (d *Device) target(t sprite.BufferTarget) int {
	if t == sprite.ElementArrayBuffer {
		return d.consts.elementArrayBuffer
	}
	return d.consts.arrayBuffer
}

func bytesToJS(data []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	return arr
}

func (d *Device) AllocBuffer(t sprite.BufferTarget, buf sprite.Handle, size int, data []byte) {
	tgt := d.target(t)
	d.gl.Call("bindBuffer", tgt, d.get(buf))
	if data != nil {
		d.gl.Call("bufferData", tgt, bytesToJS(data), d.consts.staticDraw)
	} else {
		d.gl.Call("bufferData", tgt, size, d.consts.dynamicDraw)
	}
	d.checkError("allocate buffer")
	d.gl.Call("bindBuffer", tgt, js.Null())
}

func (d *Device) WriteBuffer(t sprite.BufferTarget, buf sprite.Handle, data []byte) bool {
	tgt := d.target(t)
	d.gl.Call("bindBuffer", tgt, d.get(buf))
	d.gl.Call("bufferSubData", tgt, 0, bytesToJS(data))
	d.gl.Call("bindBuffer", tgt, js.Null())
	return d.checkError("write buffer")
}

func (d *Device) CreateVertexState(_, vertices, _ sprite.Handle) sprite.Handle {
	d.next++
	d.states[d.next] = vertices
	return d.next
}

func (d *Device) DeleteVertexState(vs sprite.Handle) {
	delete(d.states, vs)
}

func (d *Device) CreateTexture(desc sprite.TextureDesc) sprite.Handle {
	tex := d.gl.Call("createTexture")
	c := d.consts
	d.gl.Call("activeTexture", c.texture0)
	d.gl.Call("bindTexture", c.texture2D, tex)
	d.gl.Call("texParameteri", c.texture2D, c.textureWrapS, c.clampToEdge)
	d.gl.Call("texParameteri", c.texture2D, c.textureWrapT, c.clampToEdge)
	d.gl.Call("texParameteri", c.texture2D, c.textureMinFilter, c.linear)
	mag := c.linear
	if desc.Filter == sprite.FilterNearest {
		mag = c.nearest
	}
	d.gl.Call("texParameteri", c.texture2D, c.textureMagFilter, mag)
	d.texImage(desc.Width, desc.Height, desc.Data)
	d.gl.Call("bindTexture", c.texture2D, js.Null())
	d.checkError("create texture")
	return d.put(tex)
}

func (d *Device) texImage(width, height int, data []byte) {
	c := d.consts
	pixels := js.Null()
	if data != nil {
		pixels = bytesToJS(data)
	}
	d.gl.Call("pixelStorei", c.unpackAlignment, 1)
	d.gl.Call("texImage2D", c.texture2D, 0, c.rgba, width, height, 0, c.rgba, c.unsignedByte, pixels)
}

func (d *Device) TexImage(tex sprite.Handle, width, height int, data []byte) {
	d.gl.Call("activeTexture", d.consts.texture0)
	d.gl.Call("bindTexture", d.consts.texture2D, d.get(tex))
	d.texImage(width, height, data)
	d.gl.Call("bindTexture", d.consts.texture2D, js.Null())
	d.checkError("resize texture")
}

func (d *Device) TexSubImage(tex sprite.Handle, r sprite.Rect, data []byte) {
	c := d.consts
	d.gl.Call("activeTexture", c.texture0)
	d.gl.Call("bindTexture", c.texture2D, d.get(tex))
	d.gl.Call("pixelStorei", c.unpackAlignment, 1)
	d.gl.Call("texSubImage2D", c.texture2D, 0, r.X, r.Y, r.Width, r.Height, c.rgba, c.unsignedByte, bytesToJS(data))
	d.gl.Call("bindTexture", c.texture2D, js.Null())
	d.checkError("update texture")
}

func (d *Device) DeleteTexture(tex sprite.Handle) {
	d.gl.Call("deleteTexture", d.get(tex))
	delete(d.objects, tex)
}

func (d *Device) BindTexture(unit int, tex sprite.Handle) {
	d.gl.Call("activeTexture", d.consts.texture0+unit)
	d.gl.Call("bindTexture", d.consts.texture2D, d.get(tex))
}

func (d *Device) Viewport(width, height int) {
	d.gl.Call("viewport", 0, 0, width, height)
}

func (d *Device) Clear(c [4]float32) {
	d.gl.Call("clearColor", c[0], c[1], c[2], c[3])
	d.gl.Call("clear", d.consts.colorBufferBit)
}

func (d *Device) Draw(call sprite.DrawCall) {
	p := d.programs[call.Program]
	c := d.consts
	d.gl.Call("useProgram", p.value)
	d.gl.Call("uniform1iv", p.text, d.samplers)

	view := js.Global().Get("Float32Array").New(len(call.View))
	for i, v := range call.View {
		view.SetIndex(i, v)
	}
	d.gl.Call("uniformMatrix3fv", p.view, false, view)

	d.gl.Call("bindBuffer", c.arrayBuffer, d.get(d.states[call.VertexState]))
	d.setAttrib(p.position, 2, c.floatType, false, sprite.VertexPosOffset)
	d.setAttrib(p.uv, 2, c.floatType, false, sprite.VertexUVOffset)
	d.setAttrib(p.color, 4, c.unsignedByte, true, sprite.VertexColorOffset)
	d.setAttrib(p.unit, 1, c.unsignedShort, false, sprite.VertexUnitOffset)

	d.gl.Call("bindBuffer", c.elementArrayBuffer, d.get(call.Indices))
	d.gl.Call("drawElements", c.triangles, call.Count*sprite.IndicesPerSprite, c.unsignedShort, 0)
	d.gl.Call("bindBuffer", c.elementArrayBuffer, js.Null())
	d.gl.Call("bindBuffer", c.arrayBuffer, js.Null())
	d.checkError("draw sprites")
}

func (d *Device) setAttrib(index, size, xtype int, normalized bool, offset int) {
	d.gl.Call("enableVertexAttribArray", index)
	d.gl.Call("vertexAttribPointer", index, size, xtype, normalized, sprite.VertexStride, offset)
}

// checkError drains the WebGL error queue, logging every code. It reports
// whether the queue was empty.
func (d *Device) checkError(op string) bool {
	ok := true
	for code := d.gl.Call("getError").Int(); code != d.consts.noError; code = d.gl.Call("getError").Int() {
		sprite.Logger().Error("webgl error", "op", op, "code", code)
		ok = false
	}
	return ok
}
