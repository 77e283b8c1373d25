package tensor

import (
	"fmt"
	"unsafe"
)

// Device identifies where an array's memory lives.
type Device int

// Supported memory spaces.
const (
	CPU Device = iota
	WebGPU
	CUDA
	Metal
	Vulkan
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case WebGPU:
		return "WebGPU"
	case CUDA:
		return "CUDA"
	case Metal:
		return "Metal"
	case Vulkan:
		return "Vulkan"
	default:
		return "Unknown"
	}
}

// RawTensor is a host-resident array: a dense byte buffer plus layout
// metadata. Views created by Narrow share the buffer and may be
// non-contiguous; kernels that assume flat indexing must go through
// IsContiguous/Contiguous first. The scaling pipeline never mutates a
// RawTensor it is handed.
type RawTensor struct {
	data   []byte
	shape  Shape
	stride []int // element strides; row-major for freshly allocated arrays
	offset int   // element offset into data, nonzero only for views
	dtype  DataType
}

// NewRaw allocates a zeroed, contiguous host array.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// FromSlice copies data into a new host array of the matching element type.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy))
	if err != nil {
		return nil, err
	}
	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation, length checked above
	copy(unsafe.Slice((*T)(unsafe.Pointer(&raw.data[0])), len(data)), data)
	return raw, nil
}

// FromBytes copies a raw little-endian byte buffer into a new host array.
// The buffer length must match the shape and element type exactly.
func FromBytes(data []byte, shape Shape, dtype DataType) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	if len(data) != len(raw.data) {
		return nil, fmt.Errorf("shape %v of %s requires %d bytes, but got %d", shape, dtype, len(raw.data), len(data))
	}
	copy(raw.data, data)
	return raw, nil
}

// Shape returns the array's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the array's element strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the array's element type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns CPU; a RawTensor always lives in host memory.
func (r *RawTensor) Device() Device {
	return CPU
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the packed memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// IsContiguous reports whether the array's elements form one packed
// row-major run, making flat linear indexing valid.
func (r *RawTensor) IsContiguous() bool {
	expect := r.shape.ComputeStrides()
	for i := range expect {
		if r.stride[i] != expect[i] {
			return false
		}
	}
	return true
}

// Contiguous returns r when it is already packed, otherwise a packed copy.
func (r *RawTensor) Contiguous() *RawTensor {
	if r.IsContiguous() {
		return r
	}
	out, err := NewRaw(r.shape, r.dtype)
	if err != nil {
		panic(err) // shape was validated at construction
	}
	es := r.dtype.Size()
	idx := make([]int, len(r.shape))
	n := r.NumElements()
	for i := 0; i < n; i++ {
		src := r.offset
		for d, j := range idx {
			src += j * r.stride[d]
		}
		copy(out.data[i*es:(i+1)*es], r.data[src*es:(src+1)*es])
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < r.shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out
}

// Clone returns a packed deep copy; the result never aliases r.
func (r *RawTensor) Clone() *RawTensor {
	out, err := NewRaw(r.shape, r.dtype)
	if err != nil {
		panic(err)
	}
	copy(out.data, r.Contiguous().Data())
	return out
}

// Narrow returns a view of r restricted to [start, start+length) along dim.
// The view shares r's buffer and is non-contiguous unless dim is the
// outermost dimension.
func (r *RawTensor) Narrow(dim, start, length int) (*RawTensor, error) {
	if dim < 0 || dim >= len(r.shape) {
		return nil, fmt.Errorf("narrow: dimension %d out of range for shape %v", dim, r.shape)
	}
	if start < 0 || length <= 0 || start+length > r.shape[dim] {
		return nil, fmt.Errorf("narrow: range [%d, %d) invalid for dimension of size %d", start, start+length, r.shape[dim])
	}
	shape := r.shape.Clone()
	shape[dim] = length
	return &RawTensor{
		data:   r.data,
		shape:  shape,
		stride: append([]int(nil), r.stride...),
		offset: r.offset + start*r.stride[dim],
		dtype:  r.dtype,
	}, nil
}

// Data returns the packed byte buffer.
// Panics when the array is non-contiguous; call Contiguous first.
func (r *RawTensor) Data() []byte {
	if !r.IsContiguous() {
		panic("tensor: Data called on a non-contiguous array")
	}
	es := r.dtype.Size()
	return r.data[r.offset*es : r.offset*es+r.ByteSize()]
}

// AsFloat32 interprets the packed data as []float32.
// Panics if the element type is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor: element type is %s, not float32", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsFloat64 interprets the packed data as []float64.
// Panics if the element type is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor: element type is %s, not float64", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements
	return unsafe.Slice((*float64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt32 interprets the packed data as []int32.
// Panics if the element type is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor: element type is %s, not int32", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements
	return unsafe.Slice((*int32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsInt64 interprets the packed data as []int64.
// Panics if the element type is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("tensor: element type is %s, not int64", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsUint8 interprets the packed data as []uint8.
// Panics if the element type is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("tensor: element type is %s, not uint8", r.dtype))
	}
	return r.Data()
}

// AsBool interprets the packed data as []bool.
// Panics if the element type is not Bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("tensor: element type is %s, not bool", r.dtype))
	}
	data := r.Data()
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements
	return unsafe.Slice((*bool)(unsafe.Pointer(&data[0])), r.NumElements())
}
