// server.go - Read-only Debug-HTTP-Server fuer ComputeGraph-Zustand und
// -Konfiguration, aufgebaut im Stil von server/routes.go: gin-Router,
// Middleware, http.Server mit Ctrl+C-Shutdown.
package debugserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/vkcompute/graph/graph"
)

// Server exposes a graph's stats, value dump, and descriptor-pool
// configuration over read-only JSON/plain-text endpoints. It never mutates
// the graph it wraps.
type Server struct {
	addr net.Addr
	g    *graph.ComputeGraph
	log  *slog.Logger
}

func New(g *graph.ComputeGraph, addr net.Addr, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{addr: addr, g: g, log: log}
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func (s *Server) router() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "graph debug server is running") })

	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.g.Stats())
	})

	r.GET("/values", func(c *gin.Context) {
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/plain; charset=utf-8")
		s.g.DumpValues(c.Writer)
	})

	r.GET("/descriptor-pool", func(c *gin.Context) {
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/plain; charset=utf-8")
		s.g.DumpDescriptorPool(c.Writer)
	})

	r.GET("/timings", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"timestamps": s.g.Timings()})
	})

	return r
}

// ListenAndServe blocks serving the debug endpoints until SIGINT/SIGTERM.
func (s *Server) ListenAndServe(ctx context.Context, listenAddr string) error {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("debugserver: listen: %w", err)
	}

	srvr := &http.Server{Handler: s.router()}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
		case <-ctx.Done():
		}
		srvr.Close()
	}()

	s.log.Info("debug server listening", "addr", ln.Addr())
	if err := srvr.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("debugserver: serve: %w", err)
	}
	return nil
}
