// pipelines.go - prepare() und prepare_pipelines(): Deskriptor-Zaehlung +
// SharedObject-Bindung (prepare) getrennt von der
// Pipeline-Materialisierung (prepare_pipelines), damit Entdeckung
// unabhaengig von der Ressourcengroesse bleibt.
package graph

import (
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/vkcompute/graph/value"
)

func toSemver(v string) string {
	if len(v) == 0 || v[0] != 'v' {
		return "v" + v
	}
	return v
}

// checkAPIVersion enforces the adapter's reported compute API version is
// at least minSupportedAPIVersion, a fatal check on programmer/deployment
// error consistent with the rest of the graph's error handling.
func (g *ComputeGraph) checkAPIVersion() {
	got, want := toSemver(g.adapter.APIVersion()), toSemver(minSupportedAPIVersion)
	if !semver.IsValid(got) {
		panic(fmt.Errorf("%w: adapter reports unparseable API version %q", ErrGPU, g.adapter.APIVersion()))
	}
	if semver.Compare(got, want) < 0 {
		panic(fmt.Errorf("%w: adapter API version %s below minimum supported %s", ErrGPU, g.adapter.APIVersion(), minSupportedAPIVersion))
	}
}

// Prepare sizes the descriptor pool, allocates and binds every SharedObject
// and every still-unbound private tensor, and optionally initializes the
// query pool. It is idempotent: calling it
// again with no new nodes reproduces the same descriptor-pool
// configuration.
func (g *ComputeGraph) Prepare() {
	g.checkAPIVersion()

	g.descriptors = descriptorTracker{}
	g.discovery.clear()

	for _, n := range g.prepackNodes {
		n.PreparePipelines(g)
	}
	for _, n := range g.executeNodes {
		n.PreparePipelines(g)
	}

	cfg := sizeDescriptorPool(g.descriptors, g.cfg.DescriptorPoolSafetyFactor)
	g.descPool = g.adapter.NewDescriptorPool(cfg)

	g.shared.Prepare(g.adapter)

	for i := 0; i < g.store.Len(); i++ {
		r := value.Ref(i)
		if g.store.Kind(r) != value.KindTensor {
			continue
		}
		h := g.store.BorrowTensor(r)
		if t := h.Get(); t.SharedIndex < 0 && t.Mem() == nil {
			t.BindMemory(g.adapter.Allocate(t.NBytes(), false))
		}
		h.Close()
	}

	if g.cfg.EnableQuerypool {
		g.queryPool = g.adapter.NewQueryPool(2 * (len(g.prepackNodes) + len(g.executeNodes)))
	}

	g.prepared = true
}

// PreparePipelines materializes every unique pipeline descriptor discovered
// during Prepare()'s node callbacks in one batch, then clears the discovery
// set.
func (g *ComputeGraph) PreparePipelines() {
	for _, desc := range g.discovery.descriptors() {
		g.adapter.RetrievePipeline(desc)
	}
	g.discovery.clear()
}
