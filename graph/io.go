// io.go - Ein-/Ausgabebindung. Eingaben/Ausgaben werden optional ueber
// eine host-sichtbare Staging-Kopie gefuehrt; dazu gehoeren
// resize_input/virtual_resize/propagate_resize.
package graph

import (
	"encoding/binary"
	"fmt"

	"github.com/vkcompute/graph/gpu"
	"github.com/vkcompute/graph/layout"
	"github.com/vkcompute/graph/value"
)

const builtinCopyShader gpu.ShaderID = "builtin.staging_copy"

// stagingCopyLayout is the fixed descriptor-set layout every staging<->tensor
// copy node uses: one storage binding for the staging buffer, one for the
// tensor. The actual per-element copy kernel is an external collaborator;
// this only drives the CommandBuffer state machine around it.
func stagingCopyLayout() descriptorSetLayout {
	return descriptorSetLayout{counts: gpu.DescriptorCounts{Storage: 2}}
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// stagingUploadNode copies a staging buffer's contents into a tensor
// during prepack.
type stagingUploadNode struct {
	tensor  value.Ref
	staging value.Ref
}

func (n *stagingUploadNode) PreparePipelines(g *ComputeGraph) {
	l := stagingCopyLayout()
	g.RegisterDescriptorCounts(phasePrepack, l.Counts())
	pl := g.PipelineLayout(l, 8)
	g.RegisterPipeline(gpu.PipelineDescriptor{Layout: pl, Shader: builtinCopyShader})
}

func (n *stagingUploadNode) Encode(g *ComputeGraph) {
	th := g.Store().BorrowTensor(n.tensor)
	t := th.Get()
	th.Close()

	l := stagingCopyLayout()
	pl := g.PipelineLayout(l, 8)
	pipeline := g.Pipeline(gpu.PipelineDescriptor{Layout: pl, Shader: builtinCopyShader})
	set := g.AllocateDescriptorSet(l)

	global := layout.GlobalWGSize(t)
	local := layout.LocalWGSize(g.Config().Layout, global)

	cmd := g.Cmd()
	cmd.BindPipeline(pipeline, local)
	cmd.BindDescriptors(set)
	cmd.SetPushConstants(pl, encodeUint64(uint64(t.NBytes())))
	cmd.InsertBarrier(nil)
	cmd.Dispatch(global)

	g.AddStagingBytes(t.NBytes())
}

// stagingDownloadNode mirrors a tensor's current contents into its
// staging buffer on every execute() call.
type stagingDownloadNode struct {
	tensor  value.Ref
	staging value.Ref
}

func (n *stagingDownloadNode) PreparePipelines(g *ComputeGraph) {
	l := stagingCopyLayout()
	g.RegisterDescriptorCounts(phaseExecute, l.Counts())
	pl := g.PipelineLayout(l, 8)
	g.RegisterPipeline(gpu.PipelineDescriptor{Layout: pl, Shader: builtinCopyShader})
}

func (n *stagingDownloadNode) Encode(g *ComputeGraph) {
	th := g.Store().BorrowTensor(n.tensor)
	t := th.Get()
	th.Close()

	l := stagingCopyLayout()
	pl := g.PipelineLayout(l, 8)
	pipeline := g.Pipeline(gpu.PipelineDescriptor{Layout: pl, Shader: builtinCopyShader})
	set := g.AllocateDescriptorSet(l)

	global := layout.GlobalWGSize(t)
	local := layout.LocalWGSize(g.Config().Layout, global)

	cmd := g.Cmd()
	cmd.BindPipeline(pipeline, local)
	cmd.BindDescriptors(set)
	cmd.SetPushConstants(pl, encodeUint64(uint64(t.NBytes())))
	cmd.InsertBarrier(nil)
	cmd.Dispatch(global)
}

// TriggerResize is a no-op: the download node only mirrors whatever size
// its tensor already carries at Encode time.
func (n *stagingDownloadNode) TriggerResize(g *ComputeGraph) {}

// SetInputTensor records idx as the graph's next input. When useStaging is
// true it allocates a host-visible staging buffer sized to the tensor's
// element count, appends a prepack node that copies staging into the
// tensor, and returns the staging ref callers should write host data into;
// otherwise it returns idx directly.
func (g *ComputeGraph) SetInputTensor(idx value.Ref, useStaging bool) value.Ref {
	if !useStaging {
		g.inputs = append(g.inputs, ioBinding{tensor: idx, staging: value.DummyRef})
		return idx
	}

	numel := tensorNumel(g, idx)
	dt := g.store.DType(idx)
	stagingRef := g.AddStaging(dt, numel)
	g.AddPrepackNode(&stagingUploadNode{tensor: idx, staging: stagingRef})
	g.inputs = append(g.inputs, ioBinding{tensor: idx, staging: stagingRef})
	return stagingRef
}

// SetOutputTensor is the output-side counterpart of SetInputTensor. The
// tensor-to-staging download node is only appended when the tensor's
// element count is positive.
func (g *ComputeGraph) SetOutputTensor(idx value.Ref, useStaging bool) value.Ref {
	if !useStaging {
		g.outputs = append(g.outputs, ioBinding{tensor: idx, staging: value.DummyRef})
		return idx
	}

	numel := tensorNumel(g, idx)
	dt := g.store.DType(idx)
	stagingRef := g.AddStaging(dt, numel)
	if numel > 0 {
		g.AddExecuteNode(&stagingDownloadNode{tensor: idx, staging: stagingRef})
	}
	g.outputs = append(g.outputs, ioBinding{tensor: idx, staging: stagingRef})
	return stagingRef
}

// SetOutputValue marks idx (any kind) as a graph output read directly from
// the value store rather than via a staging round-trip.
func (g *ComputeGraph) SetOutputValue(idx value.Ref) {
	g.outputValues = append(g.outputValues, idx)
}

// tensorNumel reads a tensor's element count for staging sizing. Real
// storage padding (texture/packed-dim alignment) is tensor layout
// mathematics and stays with the external collaborator; this uses the
// tensor's logical element count as the padded count.
func tensorNumel(g *ComputeGraph, idx value.Ref) int64 {
	th := g.Store().BorrowTensor(idx)
	defer th.Close()
	return th.Get().Numel()
}

func (g *ComputeGraph) CopyIntoStaging(idx value.Ref, host []byte, numel int64) {
	h := g.store.BorrowStaging(idx)
	defer h.Close()
	h.Get().CopyInto(host)
}

func (g *ComputeGraph) CopyFromStaging(idx value.Ref, host []byte, numel int64) {
	h := g.store.BorrowStaging(idx)
	defer h.Close()
	h.Get().CopyFrom(host)
}

// ResizeInput virtual-resizes the i-th registered input tensor.
func (g *ComputeGraph) ResizeInput(i int, sizes []int64) {
	if i < 0 || i >= len(g.inputs) {
		panic(fmt.Errorf("%w: input index %d out of range [0,%d)", ErrInvariant, i, len(g.inputs)))
	}
	g.VirtualResize(g.inputs[i].tensor, sizes)
}

func (g *ComputeGraph) VirtualResize(idx value.Ref, sizes []int64) {
	h := g.store.BorrowTensor(idx)
	defer h.Close()
	if err := h.Get().VirtualResize(sizes); err != nil {
		panic(fmt.Errorf("%w: %v", ErrInvariant, err))
	}
}

// PropagateResize triggers every execute node's shape recomputation in
// insertion order and, if the graph expects dynamic shapes, re-encodes the
// execute command buffer.
func (g *ComputeGraph) PropagateResize() {
	for _, n := range g.executeNodes {
		n.TriggerResize(g)
	}
	if g.cfg.ExpectDynamicShapes {
		g.EncodeExecute()
	}
}
