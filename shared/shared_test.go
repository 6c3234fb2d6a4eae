package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkcompute/graph/dtype"
	"github.com/vkcompute/graph/gpu/simgpu"
	"github.com/vkcompute/graph/value"
)

func newTensor(sizes ...int64) *value.Tensor {
	return value.NewTensor(sizes, dtype.Float32, value.StorageBuffer, value.LayoutWidthPacked, nil)
}

func TestSharedObjectSizesToMaxDemandAndBindsAllUsers(t *testing.T) {
	pool := NewPool(nil)
	adapter := simgpu.New()

	idx := pool.NewIndex()
	small := newTensor(4, 4)   // 16 * 4 bytes
	large := newTensor(8, 8)   // 64 * 4 bytes
	pool.Declare(idx, small)
	pool.Declare(idx, large)

	pool.Prepare(adapter)

	require.NotNil(t, small.Mem())
	require.NotNil(t, large.Mem())
	assert.Same(t, small.Mem(), large.Mem(), "all users of a SharedObject bind the same allocation")
	assert.Equal(t, large.NBytes(), small.Mem().Size(), "region sized to the max demand, not the sum")
}

func TestSharedObjectAllocateIsIdempotent(t *testing.T) {
	pool := NewPool(nil)
	adapter := simgpu.New()

	idx := pool.NewIndex()
	tensor := newTensor(2, 2)
	pool.Declare(idx, tensor)

	pool.Prepare(adapter)
	first := tensor.Mem()

	pool.Prepare(adapter)
	assert.Same(t, first, tensor.Mem(), "a second prepare() must not reallocate")
}

func TestTmpTensorLIFOReuse(t *testing.T) {
	pool := NewPool(nil)

	outer := NewTmpTensor(pool, newTensor(4))
	inner := NewTmpTensor(pool, newTensor(4))

	assert.NotEqual(t, outer.SharedIndex(), inner.SharedIndex())

	inner.Close()
	// the next acquired index should reuse inner's just-released slot (LIFO).
	reused := NewTmpTensor(pool, newTensor(4))
	assert.Equal(t, inner.SharedIndex(), reused.SharedIndex())

	outer.Close()
	reused.Close()
}

func TestTmpTensorCloseIsIdempotent(t *testing.T) {
	pool := NewPool(nil)
	tt := NewTmpTensor(pool, newTensor(2))

	assert.NotPanics(t, func() {
		tt.Close()
		tt.Close()
	})
}

func TestDeclareOutOfRangeIndexPanics(t *testing.T) {
	pool := NewPool(nil)
	assert.Panics(t, func() {
		pool.Declare(0, newTensor(1))
	})
}

func TestUserCountTracksDeclarations(t *testing.T) {
	pool := NewPool(nil)
	idx := pool.NewIndex()
	assert.Equal(t, 0, pool.UserCount(idx))

	pool.Declare(idx, newTensor(1))
	pool.Declare(idx, newTensor(1))
	assert.Equal(t, 2, pool.UserCount(idx))
}
