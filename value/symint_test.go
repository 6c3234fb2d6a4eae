package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymIntSetWritesThroughToBoundMemory(t *testing.T) {
	sym := NewSymInt(5)
	assert.Equal(t, int64(5), sym.Get())

	backing := make([]byte, 4)
	sym.BindMemory(fakeMemoryAllocation{size: 4, host: backing})
	assert.Equal(t, byte(5), backing[0])

	const v = 300
	sym.Set(v)
	assert.Equal(t, int64(v), sym.Get())
	assert.Equal(t, byte(v%256), backing[0])
	assert.Equal(t, byte(v>>8), backing[1])
}

func TestSymIntSetWithoutBoundMemoryIsSafe(t *testing.T) {
	sym := NewSymInt(1)
	assert.NotPanics(t, func() {
		sym.Set(2)
	})
}
