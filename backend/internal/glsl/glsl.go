// Package glsl holds the sprite shader sources shared by the GL backends.
//
// All vertex shaders take the view matrix as a mat3 uploaded row-major
// without transposition, hence the vector-on-the-left product, and flip
// the y axis so world y grows downwards like screen coordinates.
package glsl

import (
	"errors"
	"fmt"
	"strings"
)

// Core410Vertex expands the instanced attributes over the unit quad.
const Core410Vertex = `
#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUv;

layout (location = 2) in vec2 aSize;
layout (location = 3) in float aAngle;
layout (location = 4) in vec4 aUvRect;
layout (location = 5) in vec4 aColor;
layout (location = 6) in vec2 aOffset;
layout (location = 7) in int aTextureIndex;

uniform mat3 view;

out vec4 color;
out vec2 texCoord;
flat out int textureIndex;

void main() {
    float s = sin(aAngle);
    float c = cos(aAngle);
    vec2 pos = aOffset + mat2(c, s, -s, c) * (aPos * aSize);
    gl_Position = vec4((vec3(pos, 1.0) * view).xy, 0.0, 1.0);
    gl_Position.y *= -1.0;
    color = aColor;
    texCoord = aUvRect.xy + aUv * aUvRect.zw;
    textureIndex = aTextureIndex;
}
`

// Core410Fragment returns the fragment shader for units samplers. Sampler
// arrays cannot be indexed by a varying in GLSL 4.10, so the unit is
// selected by an if-chain.
func Core410Fragment(units int) string {
	var sel strings.Builder
	for i := range units {
		fmt.Fprintf(&sel, "if (textureIndex == %d) textureColor = texture(text[%d], texCoord);\n    else ", i, i)
	}
	sel.WriteString("textureColor = vec4(0.0);")

	return fmt.Sprintf(`
#version 410 core
out vec4 FragColor;

in vec4 color;
in vec2 texCoord;
flat in int textureIndex;

uniform sampler2D text[%d];

void main() {
    vec4 textureColor;
    %s
    if (textureColor.a == 0.0 || color.a == 0.0) {
        discard;
    }
    FragColor = color * textureColor;
}
`, units, sel.String())
}

// ES100Vertex passes through pre-expanded vertices. Used by OpenGL ES 2.0
// and WebGL 1.0.
const ES100Vertex = `
#version 100
attribute vec2 position;
attribute vec2 uv;
attribute vec4 aColor;
attribute float aTexture;

uniform mat3 view;

varying vec4 color;
varying vec2 texCoord;
varying float textureIndex;

void main() {
    gl_Position = vec4((vec3(position, 1.0) * view).xy, 0.0, 1.0);
    gl_Position.y *= -1.0;
    color = aColor;
    texCoord = uv;
    textureIndex = aTexture;
}
`

// ES100 attribute names, looked up after linking.
const (
	AttribPosition = "position"
	AttribUV       = "uv"
	AttribColor    = "aColor"
	AttribTexture  = "aTexture"
)

// ErrMissingAttrib is returned when the linker dropped a vertex attribute.
var ErrMissingAttrib = errors.New("attribute not found in program")

// Attribs are the attribute locations of a linked ES100 program.
type Attribs struct {
	Position, UV, Color, Texture uint32
}

// AttribLocations looks up every ES100 attribute with lookup, which returns
// -1 for a name the program does not use.
func AttribLocations(lookup func(name string) int32) (Attribs, error) {
	var a Attribs
	for _, f := range []struct {
		name string
		dst  *uint32
	}{
		{AttribPosition, &a.Position},
		{AttribUV, &a.UV},
		{AttribColor, &a.Color},
		{AttribTexture, &a.Texture},
	} {
		loc := lookup(f.name)
		if loc < 0 {
			return Attribs{}, fmt.Errorf("%s: %w", f.name, ErrMissingAttrib)
		}
		*f.dst = uint32(loc)
	}
	return a, nil
}

// ES100Fragment returns the fragment shader for units samplers. GLSL ES
// 1.00 only indexes sampler arrays with loop indices.
func ES100Fragment(units int) string {
	return fmt.Sprintf(`
#version 100
#define MAX_TEXTURE_IMAGE_UNITS %d
precision mediump float;

uniform sampler2D text[MAX_TEXTURE_IMAGE_UNITS];

varying vec4 color;
varying vec2 texCoord;
varying float textureIndex;

void main() {
    int t = int(textureIndex + 0.5);
    vec4 textureColor = vec4(0.0);
    for (int i = 0; i < MAX_TEXTURE_IMAGE_UNITS; i++) {
        if (i == t) textureColor = texture2D(text[i], texCoord);
    }
    if (textureColor.a == 0.0 || color.a == 0.0) {
        discard;
    }
    gl_FragColor = textureColor * color;
}
`, units)
}

// Uniform names.
const (
	UniformView = "view"
	UniformText = "text"
)
