// gpu.go - Schnittstellen zur GPU-API
// Dieses Modul beschreibt die externe Compute-API (Befehlspuffer, Pipelines,
// Deskriptorsaetze, Push-Konstanten, Fences), ohne eine konkrete Implementierung
// vorzuschreiben. Laden des Treibers, Geraete-/Adapterauswahl und der
// Speicher-Allocator bleiben ausserhalb dieses Pakets.
package gpu

import "context"

// Adapter represents an externally-owned GPU adapter/device handle. The
// runtime never discovers or enumerates adapters itself; one is always
// injected (graph.WithExternalAdapter) or defaulted to a fake adapter for
// tests and tooling (gpu/simgpu).
type Adapter interface {
	// APIVersion reports the compute API version this adapter implements,
	// e.g. "1.3.0", in a form comparable with golang.org/x/mod/semver.
	APIVersion() string

	NewCommandPool(initialSize, batchSize int) CommandPool
	NewDescriptorPool(cfg DescriptorPoolConfig) DescriptorPool
	NewQueryPool(count int) QueryPool

	// Allocate reserves a device memory region of the requested size.
	// Shared-storage assignment (shared/ package) calls this exactly once
	// per SharedObject.
	Allocate(nbytes int64, hostVisible bool) MemoryAllocation

	// RetrievePipeline returns a cached or newly-compiled pipeline for the
	// given layout/shader/spec-constant triple. Idempotent: the same
	// triple always returns the same handle.
	RetrievePipeline(desc PipelineDescriptor) Pipeline

	// RetrievePipelineLayout returns a cached pipeline layout for a shader
	// descriptor-set layout plus push-constant size.
	RetrievePipelineLayout(layout DescriptorSetLayout, pushConstantSize int) PipelineLayout

	Submit(ctx context.Context, cmd RawCommandBuffer, wait, signal Semaphore, fence Fence) error
	WaitFence(ctx context.Context, f Fence) error
	NewFence() Fence
	NewSemaphore() Semaphore
	FreeSemaphore(Semaphore)
}

// MemoryAllocation is an opaque device (or host-visible) memory region.
type MemoryAllocation interface {
	Size() int64
	// HostPointer returns a slice view over the mapped region, or nil if
	// the allocation is not host-visible.
	HostPointer() []byte
}

// DescriptorType enumerates the binding categories the runtime cares about.
type DescriptorType int

const (
	DescriptorUniformBuffer DescriptorType = iota
	DescriptorStorageBuffer
	DescriptorSampler
	DescriptorStorageImage
)

// DescriptorCounts tallies descriptor demand per type plus the number of
// descriptor sets ("max_sets") a single shader invocation needs.
type DescriptorCounts struct {
	Uniform      int
	Storage      int
	Sampler      int
	StorageImage int
	MaxSets      int
}

func (c *DescriptorCounts) Add(other DescriptorCounts) {
	c.Uniform += other.Uniform
	c.Storage += other.Storage
	c.Sampler += other.Sampler
	c.StorageImage += other.StorageImage
	c.MaxSets += other.MaxSets
}

// ByType returns the count for a single descriptor category, panicking on
// an unrecognized type (§7 Unsupported descriptor type).
func (c DescriptorCounts) ByType(t DescriptorType) int {
	switch t {
	case DescriptorUniformBuffer:
		return c.Uniform
	case DescriptorStorageBuffer:
		return c.Storage
	case DescriptorSampler:
		return c.Sampler
	case DescriptorStorageImage:
		return c.StorageImage
	default:
		panic("gpu: unsupported descriptor type")
	}
}

type DescriptorPoolConfig struct {
	MaxSets      int
	Uniform      int
	Storage      int
	Sampler      int
	StorageImage int
}

type DescriptorPool interface {
	AllocateSet(layout DescriptorSetLayout) DescriptorSet
	Config() DescriptorPoolConfig
}

type DescriptorSet interface {
	// Writing buffers/images into a set is left to node implementations
	// (out of scope here) and is not part of this interface; the runtime
	// only needs set identity for bind/elision tracking in cmdbuf.
	Handle() uintptr
}

type DescriptorSetLayout interface {
	Counts() DescriptorCounts
}

// SpecConstants is the ordered vector of specialization constants baked
// into a pipeline. Index 0-2 hold the local workgroup size when the caller
// builds the vector that way; the type does not enforce it, and the
// staging copy nodes in graph/io.go register their pipelines with an
// empty vector.
type SpecConstants []uint32

type PipelineDescriptor struct {
	Layout PipelineLayout
	Shader ShaderID
	Spec   SpecConstants
}

type ShaderID string

type PipelineLayout interface {
	Handle() uintptr
}

type Pipeline interface {
	Handle() uintptr
}

type Semaphore interface {
	Handle() uintptr
}

type Fence interface {
	Handle() uintptr
}

type QueryPool interface {
	Reset(cmd RawCommandBuffer)
	WriteTimestamp(cmd RawCommandBuffer, query int)
	Results() []uint64
}

// ImageInfo/BufferInfo describe blit/barrier endpoints; the runtime treats
// them opaquely and only forwards them to the adapter.
type ImageInfo struct {
	Handle uintptr
	Width  int
	Height int
	Depth  int
}

type Barrier struct {
	// Resource identifies the buffer or image the barrier guards; opaque
	// to the runtime.
	Resource uintptr
	IsImage  bool
}

// CommandPool allocates and recycles CommandBuffer + Semaphore pairs. The
// concrete implementation (gpu/simgpu or a real adapter) is responsible
// for the mutex-guarded pooling semantics; the cmdbuf package wraps
// whatever this returns with the state machine.
type CommandPool interface {
	// Acquire returns the next free raw command buffer, flagged one-time
	// submit when reusable is false.
	Acquire(reusable bool) RawCommandBuffer
	// Flush resets the underlying pool and marks all buffers free.
	Flush()
	Destroy()
}

// RawCommandBuffer is the literal GPU-API command buffer handle plus the
// signal semaphore the pool associated with it. cmdbuf.CommandBuffer wraps
// this with the recording state machine; nothing above this layer talks to
// the adapter directly except through these methods.
type RawCommandBuffer interface {
	Handle() uintptr
	Semaphore() Semaphore
	Reusable() bool

	Begin()
	BindPipeline(p Pipeline)
	BindDescriptorSet(s DescriptorSet)
	PushConstants(layout PipelineLayout, data []byte)
	InsertBarriers(barriers []Barrier)
	Dispatch(groupsX, groupsY, groupsZ int)
	Blit(src, dst ImageInfo)
	WriteTimestamp(qp QueryPool, query int)
	ResetQueryPool(qp QueryPool)
	End()
	// Invalidate marks the handle unusable for further recording or
	// resubmission; called by cmdbuf's get_submit_handle when the buffer
	// is non-reusable or the submit is marked final use.
	Invalidate()
}
