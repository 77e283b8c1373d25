package cpu

import (
	"fmt"

	"github.com/lumin-ml/lumin/internal/tensor"
)

// Cast converts x to dtype, returning x itself when the type already
// matches. Conversions route through float64, which is exact for every
// supported source except int64 values beyond 2^53; float-to-integer
// conversions truncate toward zero and wrap modulo the target width,
// matching the usual C-style array-library rules.
func (b *Backend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x
	}
	src := toFloat64(x.Contiguous())
	out, err := tensor.NewRaw(x.Shape(), dtype)
	if err != nil {
		panic(fmt.Sprintf("cast: %v", err)) // shape comes from a valid tensor
	}
	fromFloat64(src, out)
	return out
}

func toFloat64(x *tensor.RawTensor) []float64 {
	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[i] = float64(v)
		}
		return dst
	case tensor.Float64:
		return x.AsFloat64()
	case tensor.Int32:
		src := x.AsInt32()
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[i] = float64(v)
		}
		return dst
	case tensor.Int64:
		src := x.AsInt64()
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[i] = float64(v)
		}
		return dst
	case tensor.Uint8:
		src := x.AsUint8()
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[i] = float64(v)
		}
		return dst
	case tensor.Bool:
		src := x.AsBool()
		dst := make([]float64, len(src))
		for i, v := range src {
			if v {
				dst[i] = 1
			}
		}
		return dst
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %v", x.DType()))
	}
}

func fromFloat64(src []float64, out *tensor.RawTensor) {
	switch out.DType() {
	case tensor.Float32:
		dst := out.AsFloat32()
		for i, v := range src {
			dst[i] = float32(v)
		}
	case tensor.Float64:
		copy(out.AsFloat64(), src)
	case tensor.Int32:
		dst := out.AsInt32()
		for i, v := range src {
			//nolint:gosec // G115: truncation and wrap are the defined cast semantics
			dst[i] = int32(int64(v))
		}
	case tensor.Int64:
		dst := out.AsInt64()
		for i, v := range src {
			dst[i] = int64(v)
		}
	case tensor.Uint8:
		dst := out.AsUint8()
		for i, v := range src {
			//nolint:gosec // G115: truncation and wrap are the defined cast semantics
			dst[i] = uint8(int64(v))
		}
	case tensor.Bool:
		dst := out.AsBool()
		for i, v := range src {
			dst[i] = v != 0
		}
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %v", out.DType()))
	}
}
