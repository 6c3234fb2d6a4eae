// symint.go - Symbolische Ganzzahl mit GPU-Uniform-Spiegel: set(v)
// aktualisiert Host+GPU, get() liest Host.
package value

import "github.com/vkcompute/graph/gpu"

// SymInt is a symbolic integer backed by a small GPU uniform buffer.
type SymInt struct {
	host int64
	mem  gpu.MemoryAllocation
}

func NewSymInt(initial int64) *SymInt {
	return &SymInt{host: initial}
}

func (s *SymInt) BindMemory(m gpu.MemoryAllocation) {
	s.mem = m
	s.writeThrough()
}

// Set updates the host value and, if bound, the mirrored GPU uniform.
func (s *SymInt) Set(v int64) {
	s.host = v
	s.writeThrough()
}

func (s *SymInt) Get() int64 { return s.host }

func (s *SymInt) writeThrough() {
	if s.mem == nil {
		return
	}
	dst := s.mem.HostPointer()
	if dst == nil {
		return
	}
	v := uint32(s.host)
	if len(dst) >= 4 {
		dst[0] = byte(v)
		dst[1] = byte(v >> 8)
		dst[2] = byte(v >> 16)
		dst[3] = byte(v >> 24)
	}
}
