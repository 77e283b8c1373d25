// Package cpu implements the host-side element casting used by the
// intensity pipeline and a pure-Go fallback for the accelerator interface,
// for hosts without a usable GPU.
package cpu

import (
	"fmt"

	"github.com/lumin-ml/lumin/internal/parallel"
	"github.com/lumin-ml/lumin/internal/tensor"
)

// Verify that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Backend runs the scaleVolume kernel with plain Go loops, chunked across
// worker goroutines for large buffers. It holds no per-call state and is
// safe for concurrent use.
type Backend struct {
	par parallel.Config
}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{par: parallel.DefaultConfig()}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.CPU
}

// Array is the cpu backend's device array: a packed float32 copy standing
// in for accelerator memory.
type Array struct {
	raw *tensor.RawTensor
}

// Shape returns the array's shape.
func (a *Array) Shape() tensor.Shape { return a.raw.Shape() }

// DType returns the array's element type.
func (a *Array) DType() tensor.DataType { return a.raw.DType() }

// Device returns the compute device.
func (a *Array) Device() tensor.Device { return tensor.CPU }

// NumElements returns the total number of elements.
func (a *Array) NumElements() int { return a.raw.NumElements() }

// Upload copies a contiguous float32 host array into the backend's memory.
func (b *Backend) Upload(raw *tensor.RawTensor) (tensor.Array, error) {
	if raw.DType() != tensor.Float32 {
		return nil, fmt.Errorf("cpu: only float32 arrays can be uploaded, got %s", raw.DType())
	}
	if !raw.IsContiguous() {
		return nil, fmt.Errorf("cpu: upload requires a contiguous array")
	}
	return &Array{raw: raw.Clone()}, nil
}

// Owns reports whether arr is a device array created by the cpu backend.
// The backend is stateless, so any live cpu Array qualifies.
func (b *Backend) Owns(arr tensor.Array) bool {
	a, ok := arr.(*Array)
	return ok && a != nil
}

// Download copies a backend-owned array back out as a fresh host array.
func (b *Backend) Download(arr tensor.Array) (*tensor.RawTensor, error) {
	a, ok := arr.(*Array)
	if !ok {
		return nil, fmt.Errorf("cpu: foreign array %T", arr)
	}
	return a.raw.Clone(), nil
}

// ScaleVolume applies out[i] = clamp(in[i]*x - y, lower, upper) over the
// flat buffer. The geometry is validated the same way a real launch would
// be, so callers exercise identical contracts on every backend.
func (b *Backend) ScaleVolume(in tensor.Array, tr tensor.Transform, geom tensor.Geometry) (tensor.Array, error) {
	a, ok := in.(*Array)
	if !ok {
		return nil, fmt.Errorf("cpu: foreign array %T", in)
	}
	if a.DType() != tensor.Float32 {
		return nil, fmt.Errorf("cpu: scaleVolume requires float32, got %s", a.DType())
	}
	if geom.BlockDim == 0 || uint64(geom.BlockDim)*uint64(geom.GridDim) < uint64(geom.Total) {
		return nil, fmt.Errorf("cpu: geometry %dx%d does not cover %d elements", geom.BlockDim, geom.GridDim, geom.Total)
	}
	if int(geom.Total) != a.NumElements() {
		return nil, fmt.Errorf("cpu: geometry covers %d elements, array has %d", geom.Total, a.NumElements())
	}

	out, err := tensor.NewRaw(a.raw.Shape(), tensor.Float32)
	if err != nil {
		return nil, err
	}
	src := a.raw.AsFloat32()
	dst := out.AsFloat32()
	parallel.Ranges(len(src), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = min(max(src[i]*tr.X-tr.Y, tr.Lower), tr.Upper)
		}
	}, b.par)
	return &Array{raw: out}, nil
}
