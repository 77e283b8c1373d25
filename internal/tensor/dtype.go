// Package tensor provides the core array types shared by the Lumin backends.
package tensor

// DType is a constraint for supported array element types.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// DataType represents runtime element-type information for arrays.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of one element.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the element type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// CanCastTo reports whether every value of dt converts to target without a
// precision-class downgrade, following NumPy's "safe" casting rules: uint8
// widens to float32, but int32, int64 and float64 do not fit float32's
// 24-bit mantissa and are rejected.
func (dt DataType) CanCastTo(target DataType) bool {
	if dt == target {
		return true
	}
	switch dt {
	case Bool:
		return true
	case Uint8:
		return target == Int32 || target == Int64 || target == Float32 || target == Float64
	case Int32:
		return target == Int64 || target == Float64
	case Float32:
		return target == Float64
	default: // Int64, Float64 widen to nothing
		return false
	}
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported type")
	}
}
