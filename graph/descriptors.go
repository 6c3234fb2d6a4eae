// descriptors.go - Deskriptor-Pool-Bemessung und Pipeline-Vorerzeugung.
package graph

import (
	"math"

	"github.com/emirpasic/gods/v2/sets/hashset"

	"github.com/vkcompute/graph/gpu"
)

// descriptorTracker accumulates per-phase descriptor demand, tracked
// separately for prepack and execute.
type descriptorTracker struct {
	prepack gpu.DescriptorCounts
	execute gpu.DescriptorCounts
}

func (t *descriptorTracker) add(phase phaseKind, c gpu.DescriptorCounts) {
	switch phase {
	case phasePrepack:
		t.prepack.Add(c)
	case phaseExecute:
		t.execute.Add(c)
	}
}

type phaseKind int

const (
	phasePrepack phaseKind = iota
	phaseExecute
)

func maxCounts(a, b gpu.DescriptorCounts) gpu.DescriptorCounts {
	return gpu.DescriptorCounts{
		Uniform:      maxInt(a.Uniform, b.Uniform),
		Storage:      maxInt(a.Storage, b.Storage),
		Sampler:      maxInt(a.Sampler, b.Sampler),
		StorageImage: maxInt(a.StorageImage, b.StorageImage),
		MaxSets:      maxInt(a.MaxSets, b.MaxSets),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func ceilFactor(n int, factor float64) int {
	return int(math.Ceil(float64(n) * factor))
}

// sizeDescriptorPool combines the two phases' descriptor demand:
//
//	max_sets = ceil(max(prepack, execute).max_sets * safety_factor)
//	per_type = max(ceil(max(prepack, execute).per_type * safety_factor), max_sets)
func sizeDescriptorPool(t descriptorTracker, safetyFactor float64) gpu.DescriptorPoolConfig {
	m := maxCounts(t.prepack, t.execute)
	maxSets := ceilFactor(m.MaxSets, safetyFactor)
	if maxSets < 1 {
		maxSets = 1
	}

	perType := func(n int) int {
		return maxInt(ceilFactor(n, safetyFactor), maxSets)
	}

	return gpu.DescriptorPoolConfig{
		MaxSets:      maxSets,
		Uniform:      perType(m.Uniform),
		Storage:      perType(m.Storage),
		Sampler:      perType(m.Sampler),
		StorageImage: perType(m.StorageImage),
	}
}

// pipelineKey identifies a unique (pipeline-layout x shader x spec-constant)
// triple for the discovery set.
type pipelineKey struct {
	layout gpu.PipelineLayout
	shader gpu.ShaderID
	spec   string // SpecConstants rendered to a comparable string
}

func specKey(spec gpu.SpecConstants) string {
	b := make([]byte, 0, len(spec)*4)
	for _, v := range spec {
		b = append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	return string(b)
}

// pipelineDiscovery is the per-prepare() set of unique pipeline descriptors
// discovered across prepack and execute nodes, cleared after
// prepare_pipelines() materializes them.
type pipelineDiscovery struct {
	set   *hashset.Set[pipelineKey]
	descs map[pipelineKey]gpu.PipelineDescriptor
}

func newPipelineDiscovery() *pipelineDiscovery {
	return &pipelineDiscovery{set: hashset.New[pipelineKey](), descs: make(map[pipelineKey]gpu.PipelineDescriptor)}
}

// Register adds a descriptor. Spec constants always have the local
// workgroup size dimensions first — callers are responsible for
// constructing Spec that way; this only dedups.
func (d *pipelineDiscovery) Register(desc gpu.PipelineDescriptor) {
	k := pipelineKey{layout: desc.Layout, shader: desc.Shader, spec: specKey(desc.Spec)}
	if !d.set.Contains(k) {
		d.set.Add(k)
		d.descs[k] = desc
	}
}

func (d *pipelineDiscovery) clear() {
	d.set.Clear()
	d.descs = make(map[pipelineKey]gpu.PipelineDescriptor)
}

func (d *pipelineDiscovery) descriptors() []gpu.PipelineDescriptor {
	out := make([]gpu.PipelineDescriptor, 0, len(d.descs))
	for _, desc := range d.descs {
		out = append(out, desc)
	}
	return out
}
