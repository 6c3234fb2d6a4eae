// pool.go - Fake-CommandPool fuer simgpu. Spiegelt die
// Mutex-geschuetzte Allokation/Wiederverwendung aus ml/backend/ggml
// (schedMu): preallocate, batch-growth, semaphore persists across
// recycles.
package simgpu

import (
	"sync"

	"github.com/vkcompute/graph/gpu"
)

type commandPool struct {
	mu        sync.Mutex
	batchSize int
	free      []*rawCmdBuf
	all       []*rawCmdBuf
}

func newCommandPool(initialSize, batchSize int) *commandPool {
	p := &commandPool{batchSize: batchSize}
	p.grow(initialSize)
	return p
}

func (p *commandPool) grow(n int) {
	for i := 0; i < n; i++ {
		cb := &rawCmdBuf{sem: &semaphoreHandle{}}
		p.all = append(p.all, cb)
		p.free = append(p.free, cb)
	}
}

func (p *commandPool) Acquire(reusable bool) gpu.RawCommandBuffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		p.grow(p.batchSize)
	}

	cb := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	cb.reusable = reusable
	cb.valid = true
	return cb
}

func (p *commandPool) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.free = p.free[:0]
	for _, cb := range p.all {
		cb.valid = false
		p.free = append(p.free, cb)
	}
}

func (p *commandPool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.all = nil
	p.free = nil
}

// rawCmdBuf is a no-op recorder: it tracks that calls happened in a
// plausible order for assertions but does not touch real GPU state.
type rawCmdBuf struct {
	sem      *semaphoreHandle
	reusable bool
	valid    bool

	Ops []string
}

func (c *rawCmdBuf) Handle() uintptr      { return uintptr(len(c.Ops)) }
func (c *rawCmdBuf) Semaphore() gpu.Semaphore { return c.sem }
func (c *rawCmdBuf) Reusable() bool       { return c.reusable }

func (c *rawCmdBuf) Begin()                                           { c.Ops = append(c.Ops, "begin") }
func (c *rawCmdBuf) BindPipeline(p gpu.Pipeline)                      { c.Ops = append(c.Ops, "bind_pipeline") }
func (c *rawCmdBuf) BindDescriptorSet(s gpu.DescriptorSet)            { c.Ops = append(c.Ops, "bind_descriptors") }
func (c *rawCmdBuf) PushConstants(l gpu.PipelineLayout, data []byte)  { c.Ops = append(c.Ops, "push_constants") }
func (c *rawCmdBuf) InsertBarriers(b []gpu.Barrier)                   { c.Ops = append(c.Ops, "barrier") }
func (c *rawCmdBuf) Dispatch(x, y, z int)                             { c.Ops = append(c.Ops, "dispatch") }
func (c *rawCmdBuf) Blit(src, dst gpu.ImageInfo)                      { c.Ops = append(c.Ops, "blit") }
func (c *rawCmdBuf) WriteTimestamp(qp gpu.QueryPool, query int)       { c.Ops = append(c.Ops, "timestamp") }
func (c *rawCmdBuf) ResetQueryPool(qp gpu.QueryPool)                  { c.Ops = append(c.Ops, "reset_querypool") }
func (c *rawCmdBuf) End()                                             { c.Ops = append(c.Ops, "end") }
func (c *rawCmdBuf) Invalidate()                                      { c.valid = false }
