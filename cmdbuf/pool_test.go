package cmdbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vkcompute/graph/gpu/simgpu"
)

func TestPoolGetNewCmdReturnsWrappedBuffer(t *testing.T) {
	pool := NewPool(simgpu.New(), 2, 2, nil)

	cmd := pool.GetNewCmd(true)
	assert.Equal(t, StateNew, cmd.State())
	assert.True(t, cmd.Reusable())
}

func TestPoolFlushMakesBuffersAvailableAgain(t *testing.T) {
	pool := NewPool(simgpu.New(), 1, 1, nil)

	first := pool.GetNewCmd(false)
	assert.NotNil(t, first)

	pool.Flush()

	second := pool.GetNewCmd(false)
	assert.NotNil(t, second)
	assert.Equal(t, StateNew, second.State())
}

func TestPoolDestroyDoesNotPanic(t *testing.T) {
	pool := NewPool(simgpu.New(), 1, 1, nil)
	assert.NotPanics(t, func() {
		pool.Destroy()
	})
}
