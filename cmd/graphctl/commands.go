// commands.go - graphctl Unterbefehle
// Entspricht cmd/cmd_list.go's Stil: ein newXCmd() pro Unterbefehl, Arbeit
// im RunE. Baut einen Testgraphen gegen gpu/simgpu statt gegen einen
// echten Treiber.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vkcompute/graph/dtype"
	"github.com/vkcompute/graph/graph"
	"github.com/vkcompute/graph/internal/debugserver"
)

// buildSampleGraph wires a minimal input-tensor -> output-tensor graph so
// describe/simulate/serve have something to report on without depending on
// a real shader/model source.
func buildSampleGraph() *graph.ComputeGraph {
	g := graph.New()

	in := g.AddTensor([]int64{1, 3, 224, 224}, dtype.Float32)
	out := g.AddTensor([]int64{1, 1000}, dtype.Float32)

	g.SetInputTensor(in, true)
	g.SetOutputTensor(out, true)

	return g
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Build the sample graph and print its stats as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := buildSampleGraph()
			g.Prepare()
			g.PreparePipelines()

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(g.Stats())
		},
	}
}

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Run prepack + encode_execute + execute once against the fake adapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			g := buildSampleGraph()

			g.Prepare()
			g.PreparePipelines()
			g.Prepack(ctx)
			g.EncodeExecute()
			g.Execute(ctx)

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %+v\n", g.Stats())
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sample graph's debug endpoints over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			g := buildSampleGraph()
			g.Prepare()
			g.PreparePipelines()

			srv := debugserver.New(g, nil, nil)
			return srv.ListenAndServe(ctx, listenAddr)
		},
	}
	cmd.Flags().StringVar(&listenAddr, "addr", "127.0.0.1:11535", "debug server listen address")
	return cmd
}
