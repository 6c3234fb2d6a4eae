// graph.go - ComputeGraph-Kern: Konstruktions-API ueber den
// Wertspeicher, Deskriptor-/Pipeline-Entdeckung, SharedObject-Bindung und
// die Orchestrierung von prepare/prepack/encode_execute/execute.
package graph

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vkcompute/graph/cmdbuf"
	"github.com/vkcompute/graph/dtype"
	"github.com/vkcompute/graph/gpu"
	"github.com/vkcompute/graph/gpu/simgpu"
	"github.com/vkcompute/graph/layout"
	"github.com/vkcompute/graph/shared"
	"github.com/vkcompute/graph/value"
)

// ioBinding pairs a bound tensor ref with the staging ref used to stream
// data to/from it, or value.DummyRef when staging is not used.
type ioBinding struct {
	tensor  value.Ref
	staging value.Ref
}

// ComputeGraph is the runtime's single-threaded orchestrator: it owns the
// value store, the shared-storage pool, the command-buffer pool, and the
// prepack/execute node lists.
type ComputeGraph struct {
	ID uuid.UUID

	log     *slog.Logger
	cfg     Config
	adapter gpu.Adapter

	store  *value.Store
	shared *shared.Pool
	cmds   *cmdbuf.Pool

	prepackNodes []PrepackNode
	executeNodes []ExecuteNode

	descriptors descriptorTracker
	discovery   *pipelineDiscovery
	descPool    gpu.DescriptorPool

	queryPool gpu.QueryPool

	inputs  []ioBinding
	outputs []ioBinding
	outputValues []value.Ref

	totalConstantNBytes int64
	stagingNBytesInCmd  int64

	deferredCmdList []*cmdbuf.CommandBuffer
	current         *cmdbuf.CommandBuffer

	prepared bool
}

// New constructs a graph over opts, defaulting to an in-process fake
// adapter (gpu/simgpu) when no external one is injected.
func New(opts ...Option) *ComputeGraph {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	adapter := cfg.ExternalAdapter
	if adapter == nil {
		adapter = simgpu.New()
	}

	g := &ComputeGraph{
		ID:      uuid.New(),
		log:     cfg.Logger,
		cfg:     cfg,
		adapter: adapter,
		store:   value.NewStore(cfg.Logger),
		shared:  shared.NewPool(cfg.Logger),
		cmds:    cmdbuf.NewPool(adapter, cfg.CommandPoolInitialSize, cfg.CommandPoolBatchSize, cfg.Logger),

		discovery: newPipelineDiscovery(),
	}
	return g
}

func (g *ComputeGraph) Store() *value.Store   { return g.store }
func (g *ComputeGraph) Shared() *shared.Pool  { return g.shared }
func (g *ComputeGraph) Adapter() gpu.Adapter  { return g.adapter }
func (g *ComputeGraph) Config() Config        { return g.cfg }

// Cmd returns the command buffer a node should record into during Encode.
func (g *ComputeGraph) Cmd() *cmdbuf.CommandBuffer { return g.current }

// ---- construction API ----

func (g *ComputeGraph) AddTensor(sizes []int64, dt dtype.DType) value.Ref {
	st := layout.SuggestedStorageType(g.cfg.Layout)
	ml := layout.SuggestedMemoryLayout(g.cfg.Layout, sizes)
	return g.AddTensorFull(sizes, dt, st, ml, -1, nil)
}

func (g *ComputeGraph) AddTensorWithStorage(sizes []int64, dt dtype.DType, st value.StorageType, ml value.MemoryLayout) value.Ref {
	return g.AddTensorFull(sizes, dt, st, ml, -1, nil)
}

func (g *ComputeGraph) AddTensorShared(sizes []int64, dt dtype.DType, sharedIdx int) value.Ref {
	st := layout.SuggestedStorageType(g.cfg.Layout)
	ml := layout.SuggestedMemoryLayout(g.cfg.Layout, sizes)
	return g.AddTensorFull(sizes, dt, st, ml, sharedIdx, nil)
}

// AddTensorFull is the general overload every other add_tensor convenience
// funnels through, covering the full storage/layout/shared_idx/axis_map
// cross-product.
func (g *ComputeGraph) AddTensorFull(sizes []int64, dt dtype.DType, st value.StorageType, ml value.MemoryLayout, sharedIdx int, axisMap []int64) value.Ref {
	t := value.NewTensor(sizes, dt, st, ml, axisMap)
	if sharedIdx >= 0 {
		t.SharedIndex = sharedIdx
		g.shared.Declare(sharedIdx, t)
	}
	return g.store.AddTensor(t)
}

func (g *ComputeGraph) AddTensorView(src value.Ref) value.Ref {
	return g.store.AddTensorView(src)
}

func (g *ComputeGraph) AddTensorRef(sizes []int64, dt dtype.DType, data []byte) value.Ref {
	ref := value.NewTensorRef(sizes, dt, data)
	g.totalConstantNBytes += ref.NBytes()
	return g.store.AddTensorRef(ref)
}

// AddStaging allocates a host-visible staging buffer immediately, unlike
// tensor storage which defers to prepare() — staging memory is small and
// needed right away for the caller to write/read host data.
func (g *ComputeGraph) AddStaging(dt dtype.DType, numel int64) value.Ref {
	st := value.NewStaging(dt, numel)
	st.BindMemory(g.adapter.Allocate(st.NBytes(), true))
	return g.store.AddStaging(st)
}

func (g *ComputeGraph) AddNone() value.Ref               { return g.store.AddNone() }
func (g *ComputeGraph) AddIntList(v []int64) value.Ref   { return g.store.AddIntList(v) }
func (g *ComputeGraph) AddDoubleList(v []float64) value.Ref { return g.store.AddDoubleList(v) }
func (g *ComputeGraph) AddBoolList(v []bool) value.Ref   { return g.store.AddBoolList(v) }
func (g *ComputeGraph) AddValueList(v []value.Ref) value.Ref { return g.store.AddValueList(v) }
func (g *ComputeGraph) AddString(s string) value.Ref     { return g.store.AddString(s) }
func (g *ComputeGraph) AddScalar(v any) value.Ref        { return g.store.AddScalar(v) }

func (g *ComputeGraph) AddSymInt(initial int64) value.Ref {
	return g.store.AddSymInt(value.NewSymInt(initial))
}

func (g *ComputeGraph) GetOrAddValueForInt(v int64) value.Ref {
	return g.store.GetOrAddValueForInt(v)
}

// AddPrepackNode registers a node that records constant uploads during
// prepack().
func (g *ComputeGraph) AddPrepackNode(n PrepackNode) {
	g.prepackNodes = append(g.prepackNodes, n)
}

// AddExecuteNode registers a node that records per-invocation dispatches
// during encode_execute().
func (g *ComputeGraph) AddExecuteNode(n ExecuteNode) {
	g.executeNodes = append(g.executeNodes, n)
}

// ---- pipeline registration callback (invoked by nodes from
// PreparePipelines) ----

// RegisterDescriptorCounts accumulates a node's shader-layout descriptor
// demand into the named phase's running total, including one max_sets
// per call.
func (g *ComputeGraph) RegisterDescriptorCounts(phase phaseKind, counts gpu.DescriptorCounts) {
	counts.MaxSets = 1
	g.descriptors.add(phase, counts)
}

// RegisterPipeline inserts desc into the discovery set for the next
// PreparePipelines() batch.
func (g *ComputeGraph) RegisterPipeline(desc gpu.PipelineDescriptor) {
	g.discovery.Register(desc)
}

// Pipeline retrieves (and caches, via the adapter's own idempotent cache)
// the pipeline for desc. Nodes call this from Encode once
// PreparePipelines() has already registered it.
func (g *ComputeGraph) Pipeline(desc gpu.PipelineDescriptor) gpu.Pipeline {
	return g.adapter.RetrievePipeline(desc)
}

func (g *ComputeGraph) PipelineLayout(l gpu.DescriptorSetLayout, pushConstantSize int) gpu.PipelineLayout {
	return g.adapter.RetrievePipelineLayout(l, pushConstantSize)
}

// AllocateDescriptorSet draws a set from the sized pool; panics if
// Prepare() has not yet run.
func (g *ComputeGraph) AllocateDescriptorSet(l gpu.DescriptorSetLayout) gpu.DescriptorSet {
	if g.descPool == nil {
		panic(fmt.Errorf("%w: descriptor pool not initialized, call Prepare() first", ErrInvariant))
	}
	return g.descPool.AllocateSet(l)
}

func (g *ComputeGraph) QueryPool() gpu.QueryPool { return g.queryPool }
