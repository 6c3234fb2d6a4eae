package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkcompute/graph/gpu"
	"github.com/vkcompute/graph/gpu/simgpu"
)

// staleVersionAdapter wraps a real simgpu.Adapter but reports a version
// below minSupportedAPIVersion, to exercise checkAPIVersion's fatal check.
type staleVersionAdapter struct {
	*simgpu.Adapter
	version string
}

func (a *staleVersionAdapter) APIVersion() string { return a.version }

func TestPrepareRejectsBelowMinimumAPIVersion(t *testing.T) {
	adapter := &staleVersionAdapter{Adapter: simgpu.New(), version: "0.9.0"}
	g := New(WithExternalAdapter(adapter))

	assert.PanicsWithError(t, "graph: gpu api failure: adapter API version 0.9.0 below minimum supported 1.0.0", func() {
		g.Prepare()
	})
}

func TestPrepareRejectsUnparseableAPIVersion(t *testing.T) {
	adapter := &staleVersionAdapter{Adapter: simgpu.New(), version: "not-a-version"}
	g := New(WithExternalAdapter(adapter))

	assert.Panics(t, func() {
		g.Prepare()
	})
}

func TestPrepareIsIdempotentWithNoNewNodes(t *testing.T) {
	g := New()
	g.AddExecuteNode(&dummyExecuteNode{})

	g.Prepare()
	first := g.descPool.Config()

	g.Prepare()
	second := g.descPool.Config()

	assert.Equal(t, first, second)
}

func TestPreparePipelinesMaterializesDiscoveredDescriptors(t *testing.T) {
	g := New()
	node := &pipelineRegisteringNode{}
	g.AddExecuteNode(node)

	g.Prepare()
	require.Len(t, g.discovery.descriptors(), 1)

	g.PreparePipelines()
	assert.Len(t, g.discovery.descriptors(), 0, "prepare_pipelines clears the discovery set after materializing")
}

// pipelineRegisteringNode registers exactly one pipeline descriptor from
// PreparePipelines, for discovery-set assertions.
type pipelineRegisteringNode struct{}

func (n *pipelineRegisteringNode) PreparePipelines(g *ComputeGraph) {
	g.RegisterDescriptorCounts(phaseExecute, gpu.DescriptorCounts{Storage: 1})
	pl := g.PipelineLayout(descriptorSetLayout{counts: gpu.DescriptorCounts{Storage: 1}}, 0)
	g.RegisterPipeline(gpu.PipelineDescriptor{Layout: pl, Shader: "test.shader"})
}
func (n *pipelineRegisteringNode) Encode(g *ComputeGraph)        {}
func (n *pipelineRegisteringNode) TriggerResize(g *ComputeGraph) {}
