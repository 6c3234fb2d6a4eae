// node.go - Knoten-Schnittstelle: ein Knoten ist entweder ein
// PrepackNode (zeichnet Konstanten-Uploads auf) oder ein ExecuteNode
// (zeichnet Dispatches pro Aufruf auf). Die konkrete
// Shader-Parametrierung bleibt ein externer Mitwirkender; der Graph
// ruft nur diese Schnittstelle auf.
package graph

import "github.com/vkcompute/graph/gpu"

// Node is the shared surface both node kinds expose.
type Node interface {
	// PreparePipelines registers this node's shader-layout descriptor
	// counts and pipeline descriptor with the graph.
	PreparePipelines(g *ComputeGraph)

	// Encode records this node's GPU commands into the graph's current
	// command buffer.
	Encode(g *ComputeGraph)
}

// PrepackNode records constant uploads.
type PrepackNode interface {
	Node
}

// ExecuteNode records per-invocation dispatches and participates in
// dynamic-shape propagation.
type ExecuteNode interface {
	Node
	// TriggerResize recomputes this node's output shapes from its current
	// input shapes, called by propagate_resize() in insertion order.
	TriggerResize(g *ComputeGraph)
}

// simple struct implementing gpu.DescriptorSetLayout for registration.
type descriptorSetLayout struct {
	counts gpu.DescriptorCounts
}

func (l descriptorSetLayout) Counts() gpu.DescriptorCounts { return l.counts }
