// tensor.go - vTensor: GPU-gestuetzter Tensor mit virtueller
// Grossenaenderung, Groessen, Datentyp, Speichermodus,
// Packed-Dim/Axis-Map-Layout, eigene oder geteilte GPU-Allokation.
package value

import (
	"fmt"

	"github.com/vkcompute/graph/dtype"
	"github.com/vkcompute/graph/gpu"
)

// StorageType distinguishes texture-backed from linear-buffer-backed
// tensors.
type StorageType int

const (
	StorageTexture3D StorageType = iota
	StorageBuffer
)

// MemoryLayout names which logical dimension is packed into the
// innermost GPU-texel lane.
type MemoryLayout int

const (
	LayoutWidthPacked MemoryLayout = iota
	LayoutChannelsPacked
)

// Tensor is the runtime's vTensor: sizes, dtype, storage mode, packed-dim
// layout, and an owned-or-shared GPU allocation.
type Tensor struct {
	Sizes   []int64
	DType   dtype.DType
	Storage StorageType
	Layout  MemoryLayout
	AxisMap []int64

	// SharedIndex is the SharedObject index this tensor defers its
	// allocation to, or -1 for a private allocation.
	SharedIndex int

	mem gpu.MemoryAllocation
}

// NewTensor constructs a tensor with a private (non-shared) allocation
// slot; shared/ package callers set SharedIndex and bind Mem later.
func NewTensor(sizes []int64, dt dtype.DType, storage StorageType, layout MemoryLayout, axisMap []int64) *Tensor {
	return &Tensor{
		Sizes:       append([]int64(nil), sizes...),
		DType:       dt,
		Storage:     storage,
		Layout:      layout,
		AxisMap:     axisMap,
		SharedIndex: -1,
	}
}

// Mem returns the bound GPU allocation, or nil if unbound.
func (t *Tensor) Mem() gpu.MemoryAllocation { return t.mem }

// BindMemory attaches a GPU allocation to the tensor; called once by
// prepare() for private tensors, or by the SharedObject pool for shared
// ones.
func (t *Tensor) BindMemory(m gpu.MemoryAllocation) { t.mem = m }

// Numel returns the product of sizes.
func (t *Tensor) Numel() int64 {
	n := int64(1)
	for _, s := range t.Sizes {
		n *= s
	}
	return n
}

// NBytes is the packed byte footprint at the tensor's dtype.
func (t *Tensor) NBytes() int64 {
	return t.Numel() * t.DType.Size()
}

// Strides computes row-major strides over Sizes. Real axis-permutation /
// packed-dim stride math belongs to the external layout-math
// collaborator; this always returns contiguous strides, whether or not
// an axis map is set.
func (t *Tensor) Strides() []int64 {
	n := len(t.Sizes)
	strides := make([]int64, n)
	acc := int64(1)
	for i := n - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= t.Sizes[i]
	}
	return strides
}

// VirtualResize updates sizes (and therefore strides) in place without
// reallocating, provided the new footprint does not exceed the bound
// allocation's capacity.
func (t *Tensor) VirtualResize(sizes []int64) error {
	newNumel := int64(1)
	for _, s := range sizes {
		newNumel *= s
	}
	newBytes := newNumel * t.DType.Size()

	if t.mem != nil && newBytes > t.mem.Size() {
		return fmt.Errorf("value: virtual_resize to %v (%d bytes) exceeds bound allocation of %d bytes", sizes, newBytes, t.mem.Size())
	}

	t.Sizes = append([]int64(nil), sizes...)
	return nil
}
