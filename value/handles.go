// handles.go - Borrow-Handles fuer den Wertspeicher: kurzlebige Handles,
// die beim Konstruieren values_in_use_ erhoehen und bei Destruktion
// verringern, um zu garantieren, dass kein Wachstum laufende Sichten
// invalidiert.
package value

// release is embedded by every handle type so the close logic can be
// shared; handles are otherwise deliberately distinct types, avoiding
// exposing raw references with one guard type per kind.
type release struct {
	s *Store
}

func (s *Store) borrow() release {
	s.inUse++
	return release{s: s}
}

func (r release) Close() {
	if r.s.inUse == 0 {
		panic(ErrInvariant{Msg: "handle released with inUse already 0"})
	}
	r.s.inUse--
}

// TensorHandle is a scoped borrow of a Tensor value.
type TensorHandle struct {
	release
	v *Tensor
}

func (s *Store) BorrowTensor(r Ref) TensorHandle {
	return TensorHandle{release: s.borrow(), v: s.tensorAt(r)}
}

func (h TensorHandle) Get() *Tensor { return h.v }

// TensorRefHandle is a scoped borrow of a TensorRef value.
type TensorRefHandle struct {
	release
	v *TensorRef
}

func (s *Store) BorrowTensorRef(r Ref) TensorRefHandle {
	return TensorRefHandle{release: s.borrow(), v: s.tensorRefAt(r)}
}

func (h TensorRefHandle) Get() *TensorRef { return h.v }

// StagingHandle is a scoped borrow of a Staging value.
type StagingHandle struct {
	release
	v *Staging
}

func (s *Store) BorrowStaging(r Ref) StagingHandle {
	return StagingHandle{release: s.borrow(), v: s.stagingAt(r)}
}

func (h StagingHandle) Get() *Staging { return h.v }

// IntListHandle is a scoped borrow of an IntList value.
type IntListHandle struct {
	release
	v []int64
}

func (s *Store) BorrowIntList(r Ref) IntListHandle {
	return IntListHandle{release: s.borrow(), v: s.intListAt(r)}
}

func (h IntListHandle) Get() []int64 { return h.v }

// DoubleListHandle is a scoped borrow of a DoubleList value.
type DoubleListHandle struct {
	release
	v []float64
}

func (s *Store) BorrowDoubleList(r Ref) DoubleListHandle {
	return DoubleListHandle{release: s.borrow(), v: s.dblListAt(r)}
}

func (h DoubleListHandle) Get() []float64 { return h.v }

// BoolListHandle is a scoped borrow of a BoolList value.
type BoolListHandle struct {
	release
	v []bool
}

func (s *Store) BorrowBoolList(r Ref) BoolListHandle {
	return BoolListHandle{release: s.borrow(), v: s.boolListAt(r)}
}

func (h BoolListHandle) Get() []bool { return h.v }

// ValueListHandle is a scoped borrow of a ValueList value.
type ValueListHandle struct {
	release
	v []Ref
}

func (s *Store) BorrowValueList(r Ref) ValueListHandle {
	return ValueListHandle{release: s.borrow(), v: s.valueListAt(r)}
}

func (h ValueListHandle) Get() []Ref { return h.v }

// SymIntHandle is a scoped borrow of a SymInt value.
type SymIntHandle struct {
	release
	v *SymInt
}

func (s *Store) BorrowSymInt(r Ref) SymIntHandle {
	return SymIntHandle{release: s.borrow(), v: s.symIntAt(r)}
}

func (h SymIntHandle) Get() *SymInt { return h.v }
