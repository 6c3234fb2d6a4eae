// simgpu.go - In-Prozess-Fake fuer die gpu.Adapter-Schnittstelle
// Dieses Paket implementiert gpu.Adapter ohne echten Treiber, analog dazu
// wie ml/backend/ggml die einzige konkrete ml.Backend-Implementierung des
// Lehrer-Repos ist. simgpu dient Tests und dem Debug-CLI/-Server.
package simgpu

import (
	"context"
	"fmt"
	"sync"

	"github.com/vkcompute/graph/gpu"
)

const apiVersion = "1.3.0"

// Adapter is a minimal fake of gpu.Adapter. It records every submission in
// order in Submits and caches pipelines and pipeline layouts by key, so
// tests can assert on submission order without asserting on GPU-specific
// side effects.
type Adapter struct {
	mu        sync.Mutex
	pipelines map[string]gpu.Pipeline
	layouts   map[string]gpu.PipelineLayout
	Submits   []SubmitRecord
}

type SubmitRecord struct {
	Cmd    gpu.RawCommandBuffer
	Signal gpu.Semaphore
	Wait   gpu.Semaphore
	Fence  gpu.Fence
}

func New() *Adapter {
	return &Adapter{
		pipelines: make(map[string]gpu.Pipeline),
		layouts:   make(map[string]gpu.PipelineLayout),
	}
}

func (a *Adapter) APIVersion() string { return apiVersion }

func (a *Adapter) NewCommandPool(initialSize, batchSize int) gpu.CommandPool {
	return newCommandPool(initialSize, batchSize)
}

func (a *Adapter) NewDescriptorPool(cfg gpu.DescriptorPoolConfig) gpu.DescriptorPool {
	return &descriptorPool{cfg: cfg}
}

func (a *Adapter) NewQueryPool(count int) gpu.QueryPool {
	return &queryPool{results: make([]uint64, count)}
}

func (a *Adapter) Allocate(nbytes int64, hostVisible bool) gpu.MemoryAllocation {
	var buf []byte
	if hostVisible {
		buf = make([]byte, nbytes)
	}
	return &memAlloc{size: nbytes, buf: buf}
}

func (a *Adapter) RetrievePipeline(desc gpu.PipelineDescriptor) gpu.Pipeline {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := pipelineKey(desc)
	if p, ok := a.pipelines[key]; ok {
		return p
	}
	p := &pipeline{key: key}
	a.pipelines[key] = p
	return p
}

func (a *Adapter) RetrievePipelineLayout(layout gpu.DescriptorSetLayout, pushConstantSize int) gpu.PipelineLayout {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := fmt.Sprintf("%v:%d", layout.Counts(), pushConstantSize)
	if l, ok := a.layouts[key]; ok {
		return l
	}
	l := &pipelineLayout{key: key}
	a.layouts[key] = l
	return l
}

func (a *Adapter) Submit(ctx context.Context, cmd gpu.RawCommandBuffer, wait, signal gpu.Semaphore, fence gpu.Fence) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	a.mu.Lock()
	a.Submits = append(a.Submits, SubmitRecord{Cmd: cmd, Signal: signal, Wait: wait, Fence: fence})
	a.mu.Unlock()

	if f, ok := fence.(*fenceHandle); ok {
		f.signal()
	}
	if s, ok := signal.(*semaphoreHandle); ok {
		s.signal()
	}
	return nil
}

func (a *Adapter) WaitFence(ctx context.Context, f gpu.Fence) error {
	fh, ok := f.(*fenceHandle)
	if !ok {
		return fmt.Errorf("simgpu: not a fence: %T", f)
	}
	select {
	case <-fh.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Adapter) NewFence() gpu.Fence {
	return &fenceHandle{done: make(chan struct{})}
}

func (a *Adapter) NewSemaphore() gpu.Semaphore {
	return &semaphoreHandle{}
}

func (a *Adapter) FreeSemaphore(gpu.Semaphore) {}

func pipelineKey(desc gpu.PipelineDescriptor) string {
	return fmt.Sprintf("%p:%s:%v", desc.Layout, desc.Shader, desc.Spec)
}

type pipeline struct{ key string }

func (p *pipeline) Handle() uintptr { return uintptr(len(p.key)) }

type pipelineLayout struct{ key string }

func (l *pipelineLayout) Handle() uintptr { return uintptr(len(l.key)) }

type memAlloc struct {
	size int64
	buf  []byte
}

func (m *memAlloc) Size() int64        { return m.size }
func (m *memAlloc) HostPointer() []byte { return m.buf }

type semaphoreHandle struct {
	mu     sync.Mutex
	signaled bool
}

func (s *semaphoreHandle) Handle() uintptr { return uintptr(0) }
func (s *semaphoreHandle) signal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signaled = true
}

type fenceHandle struct {
	once sync.Once
	done chan struct{}
}

func (f *fenceHandle) Handle() uintptr { return uintptr(0) }
func (f *fenceHandle) signal() {
	f.once.Do(func() { close(f.done) })
}

type descriptorPool struct {
	cfg   gpu.DescriptorPoolConfig
	count int
}

func (p *descriptorPool) Config() gpu.DescriptorPoolConfig { return p.cfg }
func (p *descriptorPool) AllocateSet(layout gpu.DescriptorSetLayout) gpu.DescriptorSet {
	p.count++
	return &descriptorSet{id: p.count}
}

type descriptorSet struct{ id int }

func (s *descriptorSet) Handle() uintptr { return uintptr(s.id) }

type queryPool struct {
	results []uint64
}

func (q *queryPool) Reset(gpu.RawCommandBuffer) {
	for i := range q.results {
		q.results[i] = 0
	}
}

func (q *queryPool) WriteTimestamp(cmd gpu.RawCommandBuffer, query int) {
	if query >= 0 && query < len(q.results) {
		q.results[query]++
	}
}

func (q *queryPool) Results() []uint64 { return q.results }
