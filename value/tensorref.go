// tensorref.go - TensorRef: nicht besitzende Beschreibung von Konstanten
// mit Groessen, Dtype und Zeiger auf Host-Bytes. Die Summe aller
// nbytes() wird ueber den Store hinweg verfolgt, um die
// Prepack-Spitzenlast-Strategie zu waehlen.
package value

import (
	"github.com/vkcompute/graph/dtype"
	"github.com/vkcompute/graph/gpu"
)

// TensorRef is a non-owning description of constant host-side data.
type TensorRef struct {
	Sizes []int64
	DType dtype.DType
	Data  []byte
}

func NewTensorRef(sizes []int64, dt dtype.DType, data []byte) *TensorRef {
	return &TensorRef{Sizes: append([]int64(nil), sizes...), DType: dt, Data: data}
}

func (t *TensorRef) Numel() int64 {
	n := int64(1)
	for _, s := range t.Sizes {
		n *= s
	}
	return n
}

func (t *TensorRef) NBytes() int64 {
	return int64(len(t.Data))
}

// Staging is a host-visible GPU buffer used to stream input/output
// tensor data.
type Staging struct {
	DType dtype.DType
	Numel int64
	mem   gpu.MemoryAllocation
}

func NewStaging(dt dtype.DType, numel int64) *Staging {
	return &Staging{DType: dt, Numel: numel}
}

func (s *Staging) BindMemory(m gpu.MemoryAllocation) {
	s.mem = m
}

func (s *Staging) NBytes() int64 { return s.Numel * s.DType.Size() }

// CopyInto writes host data into the staging buffer's mapped region.
func (s *Staging) CopyInto(host []byte) {
	if s.mem == nil {
		panic("value: staging buffer has no bound memory")
	}
	dst := s.mem.HostPointer()
	n := copy(dst, host)
	if int64(n) != s.NBytes() && int64(len(host)) != s.NBytes() {
		panic("value: CopyInto size mismatch")
	}
}

// CopyFrom reads the staging buffer's mapped region into host.
func (s *Staging) CopyFrom(host []byte) {
	if s.mem == nil {
		panic("value: staging buffer has no bound memory")
	}
	src := s.mem.HostPointer()
	copy(host, src)
}
