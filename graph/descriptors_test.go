package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vkcompute/graph/gpu"
)

func TestSizeDescriptorPoolUsesWorseOfBothPhases(t *testing.T) {
	tracker := descriptorTracker{
		prepack: gpu.DescriptorCounts{Uniform: 2, Storage: 4, MaxSets: 1},
		execute: gpu.DescriptorCounts{Uniform: 5, Storage: 1, MaxSets: 3},
	}

	cfg := sizeDescriptorPool(tracker, 1.25)

	// max_sets = ceil(max(1,3) * 1.25) = ceil(3.75) = 4
	assert.Equal(t, 4, cfg.MaxSets)
	// uniform: max(ceil(max(2,5)*1.25), max_sets) = max(ceil(6.25)=7, 4) = 7
	assert.Equal(t, 7, cfg.Uniform)
	// storage: max(ceil(max(4,1)*1.25), max_sets) = max(ceil(5)=5, 4) = 5
	assert.Equal(t, 5, cfg.Storage)
}

func TestSizeDescriptorPoolNeverProducesZeroMaxSets(t *testing.T) {
	cfg := sizeDescriptorPool(descriptorTracker{}, 1.25)
	assert.GreaterOrEqual(t, cfg.MaxSets, 1)
	assert.GreaterOrEqual(t, cfg.Uniform, cfg.MaxSets)
	assert.GreaterOrEqual(t, cfg.Storage, cfg.MaxSets)
}

func TestSizeDescriptorPoolPerTypeNeverBelowMaxSets(t *testing.T) {
	tracker := descriptorTracker{
		prepack: gpu.DescriptorCounts{Uniform: 0, MaxSets: 10},
	}
	cfg := sizeDescriptorPool(tracker, 1.0)
	assert.Equal(t, 10, cfg.MaxSets)
	assert.Equal(t, 10, cfg.Uniform, "per-type floor is max_sets even with zero demand")
}

func TestPipelineDiscoveryDedupsIdenticalTriples(t *testing.T) {
	d := newPipelineDiscovery()

	layout := &fakePipelineLayout{id: 1}
	desc := gpu.PipelineDescriptor{Layout: layout, Shader: "shader-a", Spec: gpu.SpecConstants{1, 2, 3}}

	d.Register(desc)
	d.Register(desc)
	d.Register(gpu.PipelineDescriptor{Layout: layout, Shader: "shader-a", Spec: gpu.SpecConstants{1, 2, 3}})

	assert.Len(t, d.descriptors(), 1)
}

func TestPipelineDiscoveryTreatsDifferentSpecAsDistinct(t *testing.T) {
	d := newPipelineDiscovery()
	layout := &fakePipelineLayout{id: 1}

	d.Register(gpu.PipelineDescriptor{Layout: layout, Shader: "shader-a", Spec: gpu.SpecConstants{1, 2, 3}})
	d.Register(gpu.PipelineDescriptor{Layout: layout, Shader: "shader-a", Spec: gpu.SpecConstants{4, 2, 3}})

	assert.Len(t, d.descriptors(), 2)
}

func TestPipelineDiscoveryClearEmptiesSet(t *testing.T) {
	d := newPipelineDiscovery()
	d.Register(gpu.PipelineDescriptor{Layout: &fakePipelineLayout{id: 1}, Shader: "shader-a"})
	d.clear()
	assert.Len(t, d.descriptors(), 0)
}

type fakePipelineLayout struct{ id int }

func (l *fakePipelineLayout) Handle() uintptr { return uintptr(l.id) }
