// dump.go - Diagnose: Wert-Dump, Deskriptor-Pool-Dump, Zeitmessung,
// Stats. Ergaenzt die Debug-Oberflaeche des Graphen um konkrete,
// lesbare Ausgaben im Stil der ListHandler-Tabellen fuer
// Modell-/Laufzeitzustand.
package graph

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vkcompute/graph/value"
)

// DumpValues renders every stored value's index and kind as a table,
// mirroring tablewriter-based listing commands elsewhere in the stack.
func (g *ComputeGraph) DumpValues(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"REF", "KIND", "DETAIL"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")

	n := g.store.Len()
	for i := 0; i < n; i++ {
		r := value.Ref(i)
		kind := g.store.Kind(r)
		detail := ""
		switch kind {
		case value.KindTensor, value.KindTensorRef:
			detail = fmt.Sprintf("sizes=%v dtype=%s", g.store.Sizes(r), g.store.DType(r))
		case value.KindInt, value.KindDouble, value.KindBool:
			detail = fmt.Sprintf("dtype=%s", g.store.DType(r))
		}
		table.Append([]string{fmt.Sprintf("%d", i), kind.String(), detail})
	}
	table.Render()
}

// DumpDescriptorPool renders the sized pool configuration the last
// Prepare() call computed.
func (g *ComputeGraph) DumpDescriptorPool(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"TYPE", "COUNT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")

	if g.descPool == nil {
		table.Append([]string{"(unprepared)", "-"})
		table.Render()
		return
	}

	cfg := g.descPool.Config()
	table.Append([]string{"max_sets", fmt.Sprintf("%d", cfg.MaxSets)})
	table.Append([]string{"uniform", fmt.Sprintf("%d", cfg.Uniform)})
	table.Append([]string{"storage", fmt.Sprintf("%d", cfg.Storage)})
	table.Append([]string{"sampler", fmt.Sprintf("%d", cfg.Sampler)})
	table.Append([]string{"storage_image", fmt.Sprintf("%d", cfg.StorageImage)})
	table.Render()
}

// Timings returns the raw query-pool timestamp results collected during
// the most recent encode, or nil if the query pool is disabled.
func (g *ComputeGraph) Timings() []uint64 {
	if g.queryPool == nil {
		return nil
	}
	return g.queryPool.Results()
}

// Stats is a point-in-time snapshot of graph size for debug tooling.
type Stats struct {
	ValueCount        int
	PrepackNodeCount  int
	ExecuteNodeCount  int
	SharedObjectCount int
	TotalConstantBytes int64
	DeferredCmdCount  int
	Prepared          bool
}

func (g *ComputeGraph) Stats() Stats {
	return Stats{
		ValueCount:         g.store.Len(),
		PrepackNodeCount:   len(g.prepackNodes),
		ExecuteNodeCount:   len(g.executeNodes),
		SharedObjectCount:  g.shared.Len(),
		TotalConstantBytes: g.totalConstantNBytes,
		DeferredCmdCount:   len(g.deferredCmdList),
		Prepared:           g.prepared,
	}
}
