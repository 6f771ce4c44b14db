package embedding

import (
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
)

func TestNewEmbedderDefaultsBatchSize(t *testing.T) {
	e := NewEmbedder(nil, 0)
	assert.Equal(t, DefaultBatchSize, e.batchSize)

	e = NewEmbedder(nil, -1)
	assert.Equal(t, DefaultBatchSize, e.batchSize)

	e = NewEmbedder(nil, 32)
	assert.Equal(t, 32, e.batchSize)

	assert.NotNil(t, e.logger, "retry notifications need a usable logger")
}

func TestToFloat32(t *testing.T) {
	out := toFloat32([]float64{0.5, -1.25, 0})
	assert.Equal(t, []float32{0.5, -1.25, 0}, out)

	assert.Empty(t, toFloat32(nil))
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, isRateLimitError(errors.New("plain error")))
	assert.False(t, isRateLimitError(&openai.Error{StatusCode: 500}))
	assert.True(t, isRateLimitError(&openai.Error{StatusCode: 429}))
}
