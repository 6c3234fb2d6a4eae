// store.go - Wertspeicher (Value Store) mit stabilen Handles: ein
// getaggtes, append-only Wertarray, dessen Indizes fuer die Lebensdauer
// des Graphen stabil bleiben. Wachstum ist nur erlaubt, solange keine
// Borrow-Handles ausstehen (values_in_use_ == 0).
package value

import (
	"fmt"
	"log/slog"

	"github.com/vkcompute/graph/dtype"
)

// Ref is a stable, dense, monotonically increasing index into a Store.
// The zero value is a valid ref (index 0); DummyRef denotes "absent".
type Ref int

// DummyRef is the sentinel "no value" reference.
const DummyRef Ref = -1

// Kind tags the variant stored at a Ref.
type Kind int

const (
	KindNone Kind = iota
	KindTensor
	KindTensorRef
	KindStaging
	KindIntList
	KindDoubleList
	KindBoolList
	KindValueList
	KindSymInt
	KindInt
	KindDouble
	KindBool
	KindString
)

func (k Kind) String() string {
	names := [...]string{"None", "Tensor", "TensorRef", "Staging", "IntList",
		"DoubleList", "BoolList", "ValueList", "SymInt", "Int", "Double", "Bool", "String"}
	if int(k) < 0 || int(k) >= len(names) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return names[k]
}

// entry is the tagged-union slot for one stored value. Only the field
// matching Kind is meaningful; this favors a sum type over a subclass
// hierarchy.
type entry struct {
	kind Kind

	tensor    *Tensor
	tensorRef *TensorRef
	staging   *Staging
	intList   []int64
	dblList   []float64
	boolList  []bool
	valueList []Ref
	symInt    *SymInt
	i         int64
	f         float64
	b         bool
	s         string
}

// ErrInvalidType is returned/panicked when a ValueRef is dereferenced as
// the wrong kind.
type ErrInvalidType struct {
	Ref      Ref
	Got      Kind
	Expected string
}

func (e ErrInvalidType) Error() string {
	return fmt.Sprintf("value: ref %d has kind %s, expected %s", e.Ref, e.Got, e.Expected)
}

// ErrInvariant signals a broken store invariant, e.g. growth attempted
// while handles are outstanding.
type ErrInvariant struct {
	Msg string
}

func (e ErrInvariant) Error() string { return "value: invariant violated: " + e.Msg }

// Store is the graph's append-only value pool. It is not internally
// synchronized: it has a single exclusive mutator (the graph) plus
// borrow-only handle guards.
type Store struct {
	log     *slog.Logger
	entries []entry
	inUse   int
}

func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{log: log}
}

// Len returns the number of stored values.
func (s *Store) Len() int { return len(s.entries) }

// InUse reports the current outstanding-handle count.
func (s *Store) InUse() int { return s.inUse }

func (s *Store) checkGrowthAllowed() {
	if s.inUse != 0 {
		panic(ErrInvariant{Msg: fmt.Sprintf("store grown with %d handles outstanding", s.inUse)})
	}
}

func (s *Store) append(e entry) Ref {
	s.checkGrowthAllowed()
	s.entries = append(s.entries, e)
	return Ref(len(s.entries) - 1)
}

func (s *Store) at(r Ref) *entry {
	if r == DummyRef {
		panic(ErrInvariant{Msg: "dereferenced DummyRef"})
	}
	if int(r) < 0 || int(r) >= len(s.entries) {
		panic(ErrInvariant{Msg: fmt.Sprintf("ref %d out of range [0,%d)", r, len(s.entries))})
	}
	return &s.entries[r]
}

func (s *Store) mustKind(r Ref, k Kind) *entry {
	e := s.at(r)
	if e.kind != k {
		panic(ErrInvalidType{Ref: r, Got: e.kind, Expected: k.String()})
	}
	return e
}

// Kind returns the tag stored at r.
func (s *Store) Kind(r Ref) Kind { return s.at(r).kind }

// ---- add_* construction API ----

func (s *Store) AddNone() Ref {
	return s.append(entry{kind: KindNone})
}

func (s *Store) AddTensor(t *Tensor) Ref {
	return s.append(entry{kind: KindTensor, tensor: t})
}

// AddTensorView shares the backing Tensor pointer of src but is stored as
// its own ref; mutation through either ref's virtual_resize is visible to
// both, modeling aliasing tensor views.
func (s *Store) AddTensorView(src Ref) Ref {
	t := s.mustKind(src, KindTensor).tensor
	return s.append(entry{kind: KindTensor, tensor: t})
}

func (s *Store) AddTensorRef(t *TensorRef) Ref {
	return s.append(entry{kind: KindTensorRef, tensorRef: t})
}

func (s *Store) AddStaging(st *Staging) Ref {
	return s.append(entry{kind: KindStaging, staging: st})
}

func (s *Store) AddIntList(v []int64) Ref {
	return s.append(entry{kind: KindIntList, intList: v})
}

func (s *Store) AddDoubleList(v []float64) Ref {
	return s.append(entry{kind: KindDoubleList, dblList: v})
}

func (s *Store) AddBoolList(v []bool) Ref {
	return s.append(entry{kind: KindBoolList, boolList: v})
}

func (s *Store) AddValueList(v []Ref) Ref {
	return s.append(entry{kind: KindValueList, valueList: v})
}

func (s *Store) AddString(v string) Ref {
	return s.append(entry{kind: KindString, s: v})
}

func (s *Store) AddSymInt(sym *SymInt) Ref {
	return s.append(entry{kind: KindSymInt, symInt: sym})
}

func (s *Store) AddInt(v int64) Ref {
	return s.append(entry{kind: KindInt, i: v})
}

func (s *Store) AddDouble(v float64) Ref {
	return s.append(entry{kind: KindDouble, f: v})
}

func (s *Store) AddBool(v bool) Ref {
	return s.append(entry{kind: KindBool, b: v})
}

// AddScalar stores whichever of Int/Double/Bool matches the dynamic type.
func (s *Store) AddScalar(v any) Ref {
	switch x := v.(type) {
	case int64:
		return s.AddInt(x)
	case int:
		return s.AddInt(int64(x))
	case float64:
		return s.AddDouble(x)
	case bool:
		return s.AddBool(x)
	default:
		panic(ErrInvalidType{Expected: "Int|Double|Bool", Got: KindNone})
	}
}

// GetOrAddValueForInt performs a linear scan for an existing Int entry
// with value v and returns its ref, else appends a new one. The earliest
// matching index is always returned.
func (s *Store) GetOrAddValueForInt(v int64) Ref {
	for i := range s.entries {
		if s.entries[i].kind == KindInt && s.entries[i].i == v {
			return Ref(i)
		}
	}
	return s.AddInt(v)
}

// ---- dtype / sizes / dim queries ----

// DType accepts Tensor or TensorRef directly; scalar kinds report
// synthetic dtypes.
func (s *Store) DType(r Ref) dtype.DType {
	e := s.at(r)
	switch e.kind {
	case KindTensor:
		return e.tensor.DType
	case KindTensorRef:
		return e.tensorRef.DType
	case KindBool:
		return dtype.Bool
	case KindInt:
		return dtype.Int64
	case KindDouble:
		return dtype.Float32
	default:
		panic(ErrInvalidType{Ref: r, Got: e.kind, Expected: "Tensor|TensorRef|Bool|Int|Double"})
	}
}

func (s *Store) Sizes(r Ref) []int64 {
	e := s.at(r)
	switch e.kind {
	case KindTensor:
		return e.tensor.Sizes
	case KindTensorRef:
		return e.tensorRef.Sizes
	default:
		panic(ErrInvalidType{Ref: r, Got: e.kind, Expected: "Tensor|TensorRef"})
	}
}

func (s *Store) Dim(r Ref) int { return len(s.Sizes(r)) }

func (s *Store) Strides(r Ref) []int64 {
	return s.mustKind(r, KindTensor).tensor.Strides()
}

func (s *Store) DimOrder(r Ref) []int64 {
	return s.mustKind(r, KindTensor).tensor.AxisMap
}

// ---- typed accessors (used by handle guards) ----

func (s *Store) tensorAt(r Ref) *Tensor         { return s.mustKind(r, KindTensor).tensor }
func (s *Store) tensorRefAt(r Ref) *TensorRef   { return s.mustKind(r, KindTensorRef).tensorRef }
func (s *Store) stagingAt(r Ref) *Staging       { return s.mustKind(r, KindStaging).staging }
func (s *Store) intListAt(r Ref) []int64        { return s.mustKind(r, KindIntList).intList }
func (s *Store) dblListAt(r Ref) []float64      { return s.mustKind(r, KindDoubleList).dblList }
func (s *Store) boolListAt(r Ref) []bool        { return s.mustKind(r, KindBoolList).boolList }
func (s *Store) valueListAt(r Ref) []Ref        { return s.mustKind(r, KindValueList).valueList }
func (s *Store) symIntAt(r Ref) *SymInt         { return s.mustKind(r, KindSymInt).symInt }

// ExtractIntOrSymIntList normalizes either an IntList or a ValueList of
// Int/SymInt entries into an owned []int64.
func (s *Store) ExtractIntOrSymIntList(r Ref) []int64 {
	e := s.at(r)
	switch e.kind {
	case KindIntList:
		out := make([]int64, len(e.intList))
		copy(out, e.intList)
		return out
	case KindValueList:
		out := make([]int64, len(e.valueList))
		for i, vr := range e.valueList {
			switch ve := s.at(vr); ve.kind {
			case KindInt:
				out[i] = ve.i
			case KindSymInt:
				out[i] = ve.symInt.Get()
			default:
				panic(ErrInvalidType{Ref: vr, Got: ve.kind, Expected: "Int|SymInt"})
			}
		}
		return out
	default:
		panic(ErrInvalidType{Ref: r, Got: e.kind, Expected: "IntList|ValueList"})
	}
}
