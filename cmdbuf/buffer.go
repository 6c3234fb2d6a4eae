// buffer.go - CommandBuffer: zustandsgesicherter Wrapper um einen rohen
// GPU-Befehlspuffer.
package cmdbuf

import (
	"log/slog"

	"github.com/vkcompute/graph/gpu"
	"github.com/vkcompute/graph/layout"
)

// CommandBuffer wraps a gpu.RawCommandBuffer with a recording state
// machine and pipeline/descriptor-set bind elision. Move-construction
// transfers handles; in Go this is modeled by Take(), which leaves the
// source invalid.
type CommandBuffer struct {
	log   *slog.Logger
	raw   gpu.RawCommandBuffer
	state State

	boundPipeline gpu.Pipeline
	boundSet      gpu.DescriptorSet
	localWG       [3]int
}

// New wraps a freshly acquired raw command buffer in the NEW state.
func New(raw gpu.RawCommandBuffer, log *slog.Logger) *CommandBuffer {
	if log == nil {
		log = slog.Default()
	}
	return &CommandBuffer{raw: raw, log: log, state: StateNew}
}

func (c *CommandBuffer) State() State { return c.state }

// Reusable reports whether the underlying buffer is retained across
// execute() calls, as opposed to a non-reusable one-shot buffer.
func (c *CommandBuffer) Reusable() bool { return c.raw.Reusable() }

// Semaphore returns the buffer's persistent signal semaphore.
func (c *CommandBuffer) Semaphore() gpu.Semaphore { return c.raw.Semaphore() }

func (c *CommandBuffer) Begin() {
	requireAny("begin", c.state, StateNew)
	c.raw.Begin()
	c.state = StateRecording
}

// BindPipeline elides the GPU bind call if pipeline equals the currently
// bound one, but still updates the local workgroup size.
func (c *CommandBuffer) BindPipeline(p gpu.Pipeline, localWG [3]int) {
	requireAny("bind_pipeline", c.state, StateRecording)
	if c.boundPipeline == nil || c.boundPipeline.Handle() != p.Handle() {
		c.raw.BindPipeline(p)
		c.boundPipeline = p
	}
	c.localWG = localWG
	c.state = StatePipelineBound
}

// BindDescriptors elides the GPU bind call if set equals the currently
// bound one.
func (c *CommandBuffer) BindDescriptors(set gpu.DescriptorSet) {
	requireAny("bind_descriptors", c.state, StatePipelineBound)
	if c.boundSet == nil || c.boundSet.Handle() != set.Handle() {
		c.raw.BindDescriptorSet(set)
		c.boundSet = set
	}
	c.state = StateDescriptorsBound
}

// SetPushConstants is a no-op if data is empty and may be called from any
// recording state.
func (c *CommandBuffer) SetPushConstants(pl gpu.PipelineLayout, data []byte) {
	requireAny("set_push_constants", c.state,
		StateRecording, StatePipelineBound, StateDescriptorsBound, StateBarriersInserted)
	if len(data) == 0 {
		return
	}
	c.raw.PushConstants(pl, data)
}

func (c *CommandBuffer) InsertBarrier(barriers []gpu.Barrier) {
	requireAny("insert_barrier", c.state, StateDescriptorsBound, StateRecording)
	c.raw.InsertBarriers(barriers)
	c.state = StateBarriersInserted
}

// Dispatch computes workgroup counts as ceil_div(global[i], local[i]) per
// axis.
func (c *CommandBuffer) Dispatch(globalWG [3]int) {
	requireAny("dispatch", c.state, StateBarriersInserted)
	groups := layout.CeilDivGroups(globalWG, c.localWG)
	c.raw.Dispatch(groups[0], groups[1], groups[2])
	c.state = StateRecording
}

// Blit performs a full-image nearest-filter blit.
func (c *CommandBuffer) Blit(src, dst gpu.ImageInfo) {
	requireAny("blit", c.state, StateBarriersInserted)
	c.raw.Blit(src, dst)
	c.state = StateRecording
}

func (c *CommandBuffer) WriteTimestamp(qp gpu.QueryPool, query int) {
	requireAny("write_timestamp", c.state, StateRecording)
	c.raw.WriteTimestamp(qp, query)
}

func (c *CommandBuffer) ResetQueryPool(qp gpu.QueryPool) {
	requireAny("reset_querypool", c.state, StateRecording)
	c.raw.ResetQueryPool(qp)
}

func (c *CommandBuffer) End() {
	requireAny("end", c.state, StateRecording, StateSubmitted)
	c.raw.End()
	c.state = StateReady
}

// GetSubmitHandle returns the raw buffer for submission. If the buffer is
// non-reusable or finalUse is true, the raw handle is invalidated and the
// wrapper moves to INVALID before this call returns.
func (c *CommandBuffer) GetSubmitHandle(finalUse bool) gpu.RawCommandBuffer {
	requireAny("get_submit_handle", c.state, StateReady)
	raw := c.raw
	c.state = StateSubmitted
	if !c.raw.Reusable() || finalUse {
		c.raw.Invalidate()
		c.state = StateInvalid
	}
	return raw
}

// Take transfers ownership of the underlying handle to a new CommandBuffer
// value and leaves c INVALID, modeling move-construction.
func (c *CommandBuffer) Take() *CommandBuffer {
	moved := &CommandBuffer{log: c.log, raw: c.raw, state: c.state, boundPipeline: c.boundPipeline, boundSet: c.boundSet, localWG: c.localWG}
	c.raw = nil
	c.state = StateInvalid
	return moved
}
