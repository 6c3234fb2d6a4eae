// prepack.go - Prepack-Phase: Konstanten-Uploads unter einem
// Staging-Speicherbudget, mit Split-und-Submit-Strategie je nach
// Gesamtgroesse der Konstanten.
package graph

import (
	"context"
	"fmt"
)

// AddStagingBytes lets a PrepackNode report how much staging memory its
// last Encode call consumed, feeding the running total the split decision
// is based on.
func (g *ComputeGraph) AddStagingBytes(n int64) {
	g.stagingNBytesInCmd += n
}

// Prepack records every PrepackNode's constant upload in order, splitting
// the recording across one-shot command buffers once the running staging
// byte count crosses a threshold.
func (g *ComputeGraph) Prepack(ctx context.Context) {
	if len(g.prepackNodes) == 0 {
		return
	}

	firstSubmitDone := false
	g.stagingNBytesInCmd = 0
	g.current = g.cmds.GetNewCmd(false)
	g.current.Begin()

	for i, n := range g.prepackNodes {
		isFirst := i == 0
		isLast := i == len(g.prepackNodes)-1

		threshold := g.cfg.PrepackInitialThresholdNBytes
		if firstSubmitDone {
			threshold = g.cfg.PrepackThresholdNBytes
		}

		if !isFirst && !isLast && g.stagingNBytesInCmd > threshold {
			g.current.End()
			if g.totalConstantNBytes > prepackSubmitAndWaitCutoffNBytes {
				g.submitAndWait(ctx, false)
				g.cmds.Flush()
			} else {
				g.submitAsync(ctx)
			}
			firstSubmitDone = true

			g.current = g.cmds.GetNewCmd(false)
			g.current.Begin()
			g.stagingNBytesInCmd = 0
		}

		n.Encode(g)
	}

	g.current.End()
	g.submitAndWait(ctx, true)
	g.cmds.Flush()
	g.stagingNBytesInCmd = 0
	g.current = nil
}

func (g *ComputeGraph) submitAndWait(ctx context.Context, finalUse bool) {
	raw := g.current.GetSubmitHandle(finalUse)
	fence := g.adapter.NewFence()
	if err := g.adapter.Submit(ctx, raw, nil, nil, fence); err != nil {
		panic(fmt.Errorf("%w: submit failed: %v", ErrGPU, err))
	}
	if err := g.adapter.WaitFence(ctx, fence); err != nil {
		panic(fmt.Errorf("%w: fence wait failed: %v", ErrGPU, err))
	}
}

func (g *ComputeGraph) submitAsync(ctx context.Context) {
	raw := g.current.GetSubmitHandle(false)
	if err := g.adapter.Submit(ctx, raw, nil, nil, nil); err != nil {
		panic(fmt.Errorf("%w: submit failed: %v", ErrGPU, err))
	}
}
