// shared.go - SharedObject-Pool fuer aliasierbaren Tensor-Speicher.
// Transiente Tensoren mit disjunkten Lebensdauer-Intervallen koennen
// sich eine GPU-Speicherregion teilen. Freigegebene Indizes landen in
// einem LIFO-Stack, damit innere Scopes dieselbe Region wiederverwenden.
package shared

import (
	"fmt"
	"log/slog"

	"github.com/emirpasic/gods/v2/stacks/arraystack"

	"github.com/vkcompute/graph/gpu"
	"github.com/vkcompute/graph/value"
)

// Object is a deferred-allocation GPU memory region shared by a set of
// transient tensors with disjoint liveness.
type Object struct {
	idx    int
	users  []*value.Tensor
	nbytes int64
	mem    gpu.MemoryAllocation
}

func (o *Object) addUser(t *value.Tensor, demand int64) {
	o.users = append(o.users, t)
	if demand > o.nbytes {
		o.nbytes = demand
	}
}

// Allocate sizes the region to the max of its users' demand and binds it
// to every user. Called exactly once, from Pool.Prepare.
func (o *Object) allocate(adapter gpu.Adapter) {
	if o.mem != nil {
		return
	}
	if len(o.users) == 0 {
		return
	}
	o.mem = adapter.Allocate(o.nbytes, false)
	for _, u := range o.users {
		u.BindMemory(o.mem)
	}
}

// Pool owns every SharedObject index a graph has declared plus the LIFO
// free-list of indices released by TmpTensor scope exit.
type Pool struct {
	log     *slog.Logger
	objects []*Object
	free    *arraystack.Stack[int]
}

func NewPool(log *slog.Logger) *Pool {
	if log == nil {
		log = slog.Default()
	}
	return &Pool{log: log, free: arraystack.New[int]()}
}

// NewIndex allocates a fresh SharedObject index, reusing the top of the
// free-list if one is available (LIFO reuse).
func (p *Pool) NewIndex() int {
	if idx, ok := p.free.Pop(); ok {
		return idx
	}
	idx := len(p.objects)
	p.objects = append(p.objects, &Object{idx: idx})
	return idx
}

// Release returns idx to the LIFO free-list. Callers (TmpTensor.Close)
// must guarantee no other live TmpTensor still references idx.
func (p *Pool) Release(idx int) {
	p.free.Push(idx)
}

// Declare records t as a user of SharedObject idx, sizing demand to the
// max of its users' current NBytes.
func (p *Pool) Declare(idx int, t *value.Tensor) {
	if idx < 0 || idx >= len(p.objects) {
		panic(fmt.Sprintf("shared: index %d out of range", idx))
	}
	p.objects[idx].addUser(t, t.NBytes())
}

// Prepare allocates every SharedObject that has at least one user and
// binds it to all of them. Idempotent across repeated calls.
func (p *Pool) Prepare(adapter gpu.Adapter) {
	for _, o := range p.objects {
		o.allocate(adapter)
	}
}

// Len reports the number of declared SharedObject indices (allocated or
// not), for Stats()/debug dump.
func (p *Pool) Len() int { return len(p.objects) }

// UserCount returns how many tensors currently reference idx.
func (p *Pool) UserCount(idx int) int {
	if idx < 0 || idx >= len(p.objects) {
		return 0
	}
	return len(p.objects[idx].users)
}

// TmpTensor is a scoped transient tensor: it acquires a SharedObject index
// on construction and returns it to the LIFO free-list when Close is
// called, enabling reuse within a scope.
type TmpTensor struct {
	pool   *Pool
	Tensor *value.Tensor
	idx    int
	closed bool
}

// NewTmpTensor builds a transient tensor that declares itself as a user of
// a freshly (or LIFO-reused) acquired SharedObject index.
func NewTmpTensor(pool *Pool, t *value.Tensor) *TmpTensor {
	idx := pool.NewIndex()
	t.SharedIndex = idx
	pool.Declare(idx, t)
	return &TmpTensor{pool: pool, Tensor: t, idx: idx}
}

// SharedIndex returns the SharedObject index this TmpTensor holds.
func (tt *TmpTensor) SharedIndex() int { return tt.idx }

// Close returns the SharedObject index to the pool's LIFO free-list.
func (tt *TmpTensor) Close() {
	if tt.closed {
		return
	}
	tt.closed = true
	tt.pool.Release(tt.idx)
}
