// errors.go - Fehlerarten fuer den ComputeGraph. Alle Fehlerarten ausser
// Numeric-Division sind Programmierfehler und werden mit
// panic(fmt.Errorf("%w: ...")) gemeldet.
package graph

import "errors"

var (
	// ErrInvalidType: Wert an einem ValueRef hat den falschen Typ fuer die
	// angeforderte Operation.
	ErrInvalidType = errors.New("graph: invalid value type")

	// ErrInvariant: values_in_use_ != 0 bei Wachstum, oder ein ungueltiger
	// CommandBuffer-Zustandswechsel.
	ErrInvariant = errors.New("graph: invariant violated")

	// ErrGPU: jede fehlgeschlagene Aufzeichnung, Allokation oder
	// Fence-Wartezeit der GPU-API.
	ErrGPU = errors.New("graph: gpu api failure")

	// ErrUnsupportedDescriptor: unbekannte Deskriptorart in einem
	// Shader-Layout.
	ErrUnsupportedDescriptor = errors.New("graph: unsupported descriptor type")
)
