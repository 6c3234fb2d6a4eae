// pool.go - CommandPool: mutex-geschuetzte Befehlspuffer-Verwaltung.
// Preallokiert initial_size Puffer, waechst in Schritten von batch_size,
// flush() setzt den gesamten Pool zurueck.
package cmdbuf

import (
	"log/slog"
	"sync"

	"github.com/vkcompute/graph/gpu"
)

// Pool wraps a gpu.CommandPool and hands out cmdbuf.CommandBuffer wrappers
// instead of raw handles. It is safe for concurrent use: it is the only
// internally-synchronized collaborator in the runtime.
type Pool struct {
	log *slog.Logger
	mu  sync.Mutex
	raw gpu.CommandPool
}

func NewPool(adapter gpu.Adapter, initialSize, batchSize int, log *slog.Logger) *Pool {
	if log == nil {
		log = slog.Default()
	}
	return &Pool{log: log, raw: adapter.NewCommandPool(initialSize, batchSize)}
}

// GetNewCmd returns the next free buffer wrapped in the recording state
// machine, flagged ONE_TIME_SUBMIT if reusable is false.
func (p *Pool) GetNewCmd(reusable bool) *CommandBuffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw := p.raw.Acquire(reusable)
	return New(raw, p.log)
}

// Flush resets the entire underlying pool and marks all buffers free.
func (p *Pool) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raw.Flush()
}

// Destroy frees all semaphores then destroys the pool. The semaphore
// lifecycle itself is owned by the gpu.CommandPool implementation; this
// just forwards teardown.
func (p *Pool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raw.Destroy()
}
