package opengl

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"
)

func TestErrorName(t *testing.T) {
	assert.Equal(t, "INVALID_OPERATION", errorName(gl.INVALID_OPERATION))
	assert.Equal(t, "OUT_OF_MEMORY", errorName(gl.OUT_OF_MEMORY))
	assert.Equal(t, "unknown GL error code", errorName(0xdead))
}
