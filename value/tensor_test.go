package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkcompute/graph/dtype"
)

func TestTensorNumelAndNBytes(t *testing.T) {
	tensor := NewTensor([]int64{2, 3, 4}, dtype.Float32, StorageBuffer, LayoutWidthPacked, nil)
	assert.Equal(t, int64(24), tensor.Numel())
	assert.Equal(t, int64(24*4), tensor.NBytes())
}

func TestTensorStridesRowMajor(t *testing.T) {
	tensor := NewTensor([]int64{2, 3, 4}, dtype.Float32, StorageBuffer, LayoutWidthPacked, nil)
	assert.Equal(t, []int64{12, 4, 1}, tensor.Strides())
}

func TestTensorVirtualResizeWithinCapacitySucceeds(t *testing.T) {
	tensor := NewTensor([]int64{4, 4}, dtype.Float32, StorageBuffer, LayoutWidthPacked, nil)
	tensor.BindMemory(fakeMemoryAllocation{size: 4 * 4 * 4})

	require.NoError(t, tensor.VirtualResize([]int64{2, 8}))
	assert.Equal(t, []int64{2, 8}, tensor.Sizes)
}

func TestTensorVirtualResizeExceedingCapacityFails(t *testing.T) {
	tensor := NewTensor([]int64{4, 4}, dtype.Float32, StorageBuffer, LayoutWidthPacked, nil)
	tensor.BindMemory(fakeMemoryAllocation{size: 4 * 4 * 4})

	err := tensor.VirtualResize([]int64{100, 100})
	assert.Error(t, err)
	assert.Equal(t, []int64{4, 4}, tensor.Sizes, "sizes must be unchanged on a rejected resize")
}

// fakeMemoryAllocation is a minimal gpu.MemoryAllocation stand-in for tests
// that only need Size()/HostPointer(), not a real adapter.
type fakeMemoryAllocation struct {
	size int64
	host []byte
}

func (f fakeMemoryAllocation) Size() int64        { return f.size }
func (f fakeMemoryAllocation) HostPointer() []byte { return f.host }
