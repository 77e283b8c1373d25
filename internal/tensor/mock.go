package tensor

import "fmt"

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is an in-process accelerator for testing. It applies the
// transform with a plain loop and records every launch it receives so tests
// can assert on coefficients and geometry.
type MockBackend struct {
	Uploads   int
	Downloads int
	Releases  int
	Launches  []Launch
}

// Launch is one recorded ScaleVolume call.
type Launch struct {
	Transform Transform
	Geometry  Geometry
}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// MockArray is the mock backend's accelerator-resident array. It wraps a
// private packed host copy standing in for device memory.
type MockArray struct {
	raw     *RawTensor
	backend *MockBackend
}

// Shape returns the array's shape.
func (a *MockArray) Shape() Shape { return a.raw.Shape() }

// DType returns the array's element type.
func (a *MockArray) DType() DataType { return a.raw.DType() }

// Device returns the mock device.
func (a *MockArray) Device() Device { return CPU }

// NumElements returns the total number of elements.
func (a *MockArray) NumElements() int { return a.raw.NumElements() }

// Release records that the caller freed this array's device memory, so
// tests can assert on buffer lifetimes.
func (a *MockArray) Release() { a.backend.Releases++ }

// Owns reports whether arr is a live array created by this backend.
func (m *MockBackend) Owns(arr Array) bool {
	ma, ok := arr.(*MockArray)
	return ok && ma != nil && ma.backend == m
}

// Upload copies a contiguous float32 host array into the mock device.
func (m *MockBackend) Upload(raw *RawTensor) (Array, error) {
	if raw.DType() != Float32 {
		return nil, fmt.Errorf("mock: only float32 uploads are supported, got %s", raw.DType())
	}
	if !raw.IsContiguous() {
		return nil, fmt.Errorf("mock: upload requires a contiguous array")
	}
	m.Uploads++
	return &MockArray{raw: raw.Clone(), backend: m}, nil
}

// Download copies a mock device array back to host memory.
func (m *MockBackend) Download(arr Array) (*RawTensor, error) {
	ma, ok := arr.(*MockArray)
	if !ok {
		return nil, fmt.Errorf("mock: foreign array %T", arr)
	}
	m.Downloads++
	return ma.raw.Clone(), nil
}

// ScaleVolume applies out[i] = clamp(in[i]*x - y, lower, upper) with a
// sequential loop, after checking that the launch geometry covers the
// element count the way a real dispatch would require.
func (m *MockBackend) ScaleVolume(in Array, tr Transform, geom Geometry) (Array, error) {
	ma, ok := in.(*MockArray)
	if !ok {
		return nil, fmt.Errorf("mock: foreign array %T", in)
	}
	if ma.DType() != Float32 {
		return nil, fmt.Errorf("mock: scaleVolume requires float32, got %s", ma.DType())
	}
	if geom.BlockDim == 0 || uint64(geom.BlockDim)*uint64(geom.GridDim) < uint64(geom.Total) {
		return nil, fmt.Errorf("mock: geometry %dx%d does not cover %d elements", geom.BlockDim, geom.GridDim, geom.Total)
	}
	if int(geom.Total) != ma.NumElements() {
		return nil, fmt.Errorf("mock: geometry covers %d elements, array has %d", geom.Total, ma.NumElements())
	}
	m.Launches = append(m.Launches, Launch{Transform: tr, Geometry: geom})

	out, err := NewRaw(ma.raw.Shape(), Float32)
	if err != nil {
		return nil, err
	}
	dst := out.AsFloat32()
	for i, v := range ma.raw.AsFloat32() {
		dst[i] = min(max(v*tr.X-tr.Y, tr.Lower), tr.Upper)
	}
	return &MockArray{raw: out, backend: m}, nil
}
