package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vkcompute/graph/layout"
)

func TestOptionsOverrideDefaults(t *testing.T) {
	g := New(
		WithPrepackThresholdNBytes(1<<10),
		WithPrepackInitialThresholdNBytes(1<<9),
		WithDescriptorPoolSafetyFactor(2.0),
		WithQuerypool(true),
		WithExpectDynamicShapes(true),
		WithCommandPoolSizing(8, 2),
		WithLayoutOverrides(layout.Overrides{EnableStorageType: true}),
	)

	cfg := g.Config()
	assert.Equal(t, int64(1<<10), cfg.PrepackThresholdNBytes)
	assert.Equal(t, int64(1<<9), cfg.PrepackInitialThresholdNBytes)
	assert.Equal(t, 2.0, cfg.DescriptorPoolSafetyFactor)
	assert.True(t, cfg.EnableQuerypool)
	assert.True(t, cfg.ExpectDynamicShapes)
	assert.Equal(t, 8, cfg.CommandPoolInitialSize)
	assert.Equal(t, 2, cfg.CommandPoolBatchSize)
	assert.True(t, cfg.Layout.EnableStorageType)
}

func TestDefaultConfigMatchesDocumentedConstants(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, int64(10<<20), cfg.PrepackThresholdNBytes)
	assert.Equal(t, int64(10<<20), cfg.PrepackInitialThresholdNBytes)
	assert.Equal(t, 1.25, cfg.DescriptorPoolSafetyFactor)
	assert.False(t, cfg.EnableQuerypool)
}
