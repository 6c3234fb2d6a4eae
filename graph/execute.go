// execute.go - Execute-Phase: encode_execute() baut einen einzelnen
// wiederverwendbaren Befehlspuffer; execute() reicht die aufgeschobene
// Befehlspuffer-Kette mit Semaphoren verkettet ein und wartet auf einen
// einzigen Fence an der letzten Einreichung.
package graph

import (
	"context"
	"fmt"

	"github.com/vkcompute/graph/cmdbuf"
	"github.com/vkcompute/graph/gpu"
)

// EncodeExecute discards any previously-deferred command buffers, flushes
// the pool, records one fresh reusable command buffer over every
// ExecuteNode in insertion order, and appends it to the deferred list.
func (g *ComputeGraph) EncodeExecute() {
	g.deferredCmdList = nil
	g.cmds.Flush()

	cmd := g.cmds.GetNewCmd(true)
	cmd.Begin()
	g.current = cmd

	if g.queryPool != nil {
		cmd.ResetQueryPool(g.queryPool)
	}

	for _, n := range g.executeNodes {
		n.Encode(g)
	}

	cmd.End()
	g.deferredCmdList = append(g.deferredCmdList, cmd)
	g.current = nil
}

// Execute submits every deferred command buffer in order, chaining buffer
// i's signal semaphore as buffer i+1's wait semaphore, attaches a single
// fence to the last submission, and waits on it. A reusable buffer left
// SUBMITTED by an earlier Execute call is moved back to READY before it is
// resubmitted, so repeated calls need no re-encoding.
func (g *ComputeGraph) Execute(ctx context.Context) gpu.Fence {
	if len(g.deferredCmdList) == 0 {
		panic(fmt.Errorf("%w: execute() called with nothing encoded; call EncodeExecute first", ErrInvariant))
	}

	fence := g.adapter.NewFence()

	var waitSem gpu.Semaphore
	for i, cmd := range g.deferredCmdList {
		if cmd.State() == cmdbuf.StateSubmitted {
			cmd.End()
		}

		isLast := i == len(g.deferredCmdList)-1
		signalSem := cmd.Semaphore()

		var f gpu.Fence
		if isLast {
			f = fence
		}

		raw := cmd.GetSubmitHandle(false)
		if err := g.adapter.Submit(ctx, raw, waitSem, signalSem, f); err != nil {
			panic(fmt.Errorf("%w: submit failed: %v", ErrGPU, err))
		}
		waitSem = signalSem
	}

	if err := g.adapter.WaitFence(ctx, fence); err != nil {
		panic(fmt.Errorf("%w: fence wait failed: %v", ErrGPU, err))
	}
	return fence
}
