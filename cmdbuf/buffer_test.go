package cmdbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkcompute/graph/gpu"
	"github.com/vkcompute/graph/gpu/simgpu"
)

func newTestCmd(t *testing.T) *CommandBuffer {
	t.Helper()
	adapter := simgpu.New()
	pool := adapter.NewCommandPool(1, 1)
	raw := pool.Acquire(true)
	return New(raw, nil)
}

type fakePipeline struct{ h uintptr }

func (p fakePipeline) Handle() uintptr { return p.h }

type fakeSet struct{ h uintptr }

func (s fakeSet) Handle() uintptr { return s.h }

func TestCommandBufferHappyPath(t *testing.T) {
	cmd := newTestCmd(t)
	assert.Equal(t, StateNew, cmd.State())

	cmd.Begin()
	assert.Equal(t, StateRecording, cmd.State())

	cmd.BindPipeline(fakePipeline{h: 1}, [3]int{16, 4, 1})
	assert.Equal(t, StatePipelineBound, cmd.State())

	cmd.BindDescriptors(fakeSet{h: 1})
	assert.Equal(t, StateDescriptorsBound, cmd.State())

	cmd.InsertBarrier(nil)
	assert.Equal(t, StateBarriersInserted, cmd.State())

	cmd.Dispatch([3]int{100, 8, 1})
	assert.Equal(t, StateRecording, cmd.State())

	cmd.End()
	assert.Equal(t, StateReady, cmd.State())

	raw := cmd.GetSubmitHandle(false)
	require.NotNil(t, raw)
	assert.Equal(t, StateSubmitted, cmd.State())
}

func TestCommandBufferDispatchBeforeBarrierPanics(t *testing.T) {
	cmd := newTestCmd(t)
	cmd.Begin()
	cmd.BindPipeline(fakePipeline{h: 1}, [3]int{8, 1, 1})
	cmd.BindDescriptors(fakeSet{h: 1})

	assert.Panics(t, func() {
		cmd.Dispatch([3]int{8, 1, 1})
	})
}

func TestCommandBufferBeginTwicePanics(t *testing.T) {
	cmd := newTestCmd(t)
	cmd.Begin()
	assert.Panics(t, func() {
		cmd.Begin()
	})
}

func TestCommandBufferReusableEndAllowsResubmission(t *testing.T) {
	cmd := newTestCmd(t)
	cmd.Begin()
	cmd.BindPipeline(fakePipeline{h: 1}, [3]int{8, 1, 1})
	cmd.BindDescriptors(fakeSet{h: 1})
	cmd.InsertBarrier(nil)
	cmd.Dispatch([3]int{8, 1, 1})
	cmd.End()
	cmd.GetSubmitHandle(false)
	require.Equal(t, StateSubmitted, cmd.State())

	// a reusable buffer may transition SUBMITTED -> READY via end() again.
	cmd.End()
	assert.Equal(t, StateReady, cmd.State())
}

func TestCommandBufferFinalUseInvalidatesOnSubmit(t *testing.T) {
	cmd := newTestCmd(t)
	cmd.Begin()
	cmd.BindPipeline(fakePipeline{h: 1}, [3]int{8, 1, 1})
	cmd.BindDescriptors(fakeSet{h: 1})
	cmd.InsertBarrier(nil)
	cmd.Dispatch([3]int{8, 1, 1})
	cmd.End()

	cmd.GetSubmitHandle(true)
	assert.Equal(t, StateInvalid, cmd.State())
}

// countingRaw counts the raw BindPipeline calls that reach the adapter.
type countingRaw struct {
	gpu.RawCommandBuffer
	binds int
}

func (r *countingRaw) BindPipeline(p gpu.Pipeline) {
	r.binds++
	r.RawCommandBuffer.BindPipeline(p)
}

func TestCommandBufferBindPipelineElidesRedundantBind(t *testing.T) {
	raw := &countingRaw{RawCommandBuffer: simgpu.New().NewCommandPool(1, 1).Acquire(true)}
	cmd := New(raw, nil)
	cmd.Begin()
	p := fakePipeline{h: 42}
	cmd.BindPipeline(p, [3]int{8, 1, 1})
	cmd.BindDescriptors(fakeSet{h: 1})
	cmd.InsertBarrier(nil)
	cmd.Dispatch([3]int{8, 1, 1})

	// rebinding the same pipeline handle after a dispatch cycle skips the
	// raw bind but still updates the local workgroup size.
	cmd.BindPipeline(p, [3]int{16, 4, 1})
	assert.Equal(t, 1, raw.binds)
	assert.Equal(t, [3]int{16, 4, 1}, cmd.localWG)
	assert.Equal(t, gpu.Pipeline(p), cmd.boundPipeline)
}

func TestCommandBufferSetPushConstantsEmptyIsNoopFromAnyRecordingState(t *testing.T) {
	cmd := newTestCmd(t)
	cmd.Begin()
	assert.NotPanics(t, func() {
		cmd.SetPushConstants(nil, nil)
		cmd.BindPipeline(fakePipeline{h: 1}, [3]int{8, 1, 1})
		cmd.SetPushConstants(nil, nil)
		cmd.BindDescriptors(fakeSet{h: 1})
		cmd.SetPushConstants(nil, nil)
		cmd.InsertBarrier(nil)
		cmd.SetPushConstants(nil, nil)
	})
}

func TestCommandBufferTakeInvalidatesSource(t *testing.T) {
	cmd := newTestCmd(t)
	cmd.Begin()
	moved := cmd.Take()

	assert.Equal(t, StateInvalid, cmd.State())
	assert.Equal(t, StateRecording, moved.State())
}
