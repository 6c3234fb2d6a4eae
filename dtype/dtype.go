// dtype.go - Datentyp-Tabelle fuer Tensoren und Skalare. Skalar-Wertarten
// bekommen in value.Store.DType synthetische Typen zugeordnet
// (bool ⇒ Bool, int ⇒ Int64, double ⇒ Float32).
package dtype

import (
	"fmt"
	"math"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// DType enumerates the tensor/scalar element types the value store and
// shader layer need to reason about.
type DType int

const (
	Float32 DType = iota
	Float16
	BFloat16
	Int32
	Int64
	Bool
)

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// Size returns the packed element size in bytes.
func (d DType) Size() int64 {
	switch d {
	case Float32, Int32:
		return 4
	case Float16, BFloat16:
		return 2
	case Int64:
		return 8
	case Bool:
		return 1
	default:
		panic(fmt.Sprintf("dtype: unknown size for %v", d))
	}
}

// EncodeFloat packs a float64 host value into the little-endian wire
// representation for d. Only the float dtypes are supported.
func EncodeFloat(d DType, v float64) []byte {
	switch d {
	case Float32:
		bits := math.Float32bits(float32(v))
		return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
	case Float16:
		h := float16.Fromfloat32(float32(v))
		b := uint16(h)
		return []byte{byte(b), byte(b >> 8)}
	case BFloat16:
		return bfloat16.EncodeFloat32([]float32{float32(v)})
	default:
		panic(fmt.Sprintf("dtype: EncodeFloat unsupported for %v", d))
	}
}

// DecodeFloat is the inverse of EncodeFloat.
func DecodeFloat(d DType, data []byte) float64 {
	switch d {
	case Float32:
		bits := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
		return float64(math.Float32frombits(bits))
	case Float16:
		b := uint16(data[0]) | uint16(data[1])<<8
		return float64(float16.Frombits(b).Float32())
	case BFloat16:
		return float64(bfloat16.DecodeFloat32(data[:2])[0])
	default:
		panic(fmt.Sprintf("dtype: DecodeFloat unsupported for %v", d))
	}
}
