// layout.go - Speicherart-, Layout- und Arbeitsgruppen-Heuristiken fuer
// Tensoren: Speicherart- und Layout-Vorschlaege sowie die Berechnung von
// globalen und lokalen Dispatch-Arbeitsgruppengroessen.
package layout

import (
	"sort"

	"github.com/vkcompute/graph/value"
)

// Overrides mirrors the graph's configurable overrides: when enabled,
// each wins over the corresponding heuristic.
type Overrides struct {
	StorageType        value.StorageType
	EnableStorageType   bool
	MemoryLayout        value.MemoryLayout
	EnableMemoryLayout  bool
	LocalWGSize         [3]int
	EnableLocalWGSize   bool
}

// SuggestedStorageType returns the configured override if set, else
// defaults to a 3D texture.
func SuggestedStorageType(ov Overrides) value.StorageType {
	if ov.EnableStorageType {
		return ov.StorageType
	}
	return value.StorageTexture3D
}

// SuggestedMemoryLayout returns the configured override if set; else
// width-packed when rank < 3 or the channels dimension is 1; otherwise
// channels-packed. sizes is in NCHW-like order with the channels
// dimension at index len(sizes)-3 for rank >= 3.
func SuggestedMemoryLayout(ov Overrides, sizes []int64) value.MemoryLayout {
	if ov.EnableMemoryLayout {
		return ov.MemoryLayout
	}

	rank := len(sizes)
	if rank < 3 {
		return value.LayoutWidthPacked
	}

	channels := sizes[rank-3]
	if channels == 1 {
		return value.LayoutWidthPacked
	}
	return value.LayoutChannelsPacked
}

// GlobalWGSize returns the dispatch extent for t: buffer-backed tensors
// dispatch over their flat element count; texture-backed tensors dispatch
// over logical texel extents (the 3 innermost logical dims, padded to 1
// on the left).
func GlobalWGSize(t *value.Tensor) [3]int {
	if t.Storage == value.StorageBuffer {
		return [3]int{int(t.Numel()), 1, 1}
	}

	extents := [3]int64{1, 1, 1}
	n := len(t.Sizes)
	for i := 0; i < 3 && i < n; i++ {
		extents[2-i] = t.Sizes[n-1-i]
	}
	return [3]int{int(extents[0]), int(extents[1]), int(extents[2])}
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// CeilDivGroups returns ceil_div(global[i], local[i]) per axis: the
// number of workgroups needed to cover global given a local shape.
func CeilDivGroups(global, local [3]int) [3]int {
	return [3]int{ceilDiv(global[0], local[0]), ceilDiv(global[1], local[1]), ceilDiv(global[2], local[2])}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LocalWGSize picks a local workgroup shape for global, overridable via
// ov. Axes are sorted by descending global extent into (g0, g1, g2) and a
// base shape (8, clamp(g1,1,4), clamp(g2,1,2)) is computed; it is only
// further specialized when the smallest sorted axis g2 is 1, otherwise
// base is kept as-is. The result is permuted back to the original axis
// order. Product never exceeds 128.
func LocalWGSize(ov Overrides, global [3]int) [3]int {
	if ov.EnableLocalWGSize {
		return ov.LocalWGSize
	}

	order := []int{0, 1, 2}
	sort.SliceStable(order, func(i, j int) bool {
		return global[order[i]] > global[order[j]]
	})

	g1, g2 := global[order[1]], global[order[2]]

	base := [3]int{8, clamp(g1, 1, 4), clamp(g2, 1, 2)}

	specialized := base
	if g2 == 1 {
		switch {
		case g1 <= 1:
			specialized = [3]int{64, 1, 1}
		case base[1]%4 == 0:
			specialized = [3]int{16, 4, 1}
		default:
			specialized = [3]int{32, 2, 1}
		}
	}

	var local [3]int
	local[order[0]] = specialized[0]
	local[order[1]] = specialized[1]
	local[order[2]] = specialized[2]
	return local
}
