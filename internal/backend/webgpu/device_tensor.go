package webgpu

import (
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/lumin-ml/lumin/internal/tensor"
)

// Verify that DeviceTensor implements tensor.Array.
var _ tensor.Array = (*DeviceTensor)(nil)

// DeviceTensor is a float32 array resident in GPU memory. Buffers are
// allocated densely, so a DeviceTensor is always contiguous and flat
// indexing is valid for the kernels that consume it.
type DeviceTensor struct {
	buffer     *wgpu.Buffer
	shape      tensor.Shape
	dtype      tensor.DataType // always Float32, enforced at Upload
	backend    *Backend
	bufferSize uint64
}

// Shape returns the array's shape.
func (t *DeviceTensor) Shape() tensor.Shape {
	return t.shape
}

// DType returns the array's element type.
func (t *DeviceTensor) DType() tensor.DataType {
	return t.dtype
}

// Device returns the compute device.
func (t *DeviceTensor) Device() tensor.Device {
	return tensor.WebGPU
}

// NumElements returns the total number of elements.
func (t *DeviceTensor) NumElements() int {
	return t.shape.NumElements()
}

// ByteSize returns the buffer size in bytes.
func (t *DeviceTensor) ByteSize() uint64 {
	return t.bufferSize
}

// Buffer returns the underlying GPU buffer, for backend-internal use.
func (t *DeviceTensor) Buffer() *wgpu.Buffer {
	return t.buffer
}

// Release frees the GPU buffer. The tensor must not be used afterwards.
func (t *DeviceTensor) Release() {
	if t.buffer != nil {
		t.buffer.Release()
		t.buffer = nil
	}
}

// Upload copies a contiguous float32 host array into GPU memory. Only
// float32 arrays can live on the device; callers cast on the host first.
func (b *Backend) Upload(raw *tensor.RawTensor) (tensor.Array, error) {
	if raw.DType() != tensor.Float32 {
		return nil, fmt.Errorf("webgpu: only float32 arrays can live on the device, got %s", raw.DType())
	}
	if !raw.IsContiguous() {
		return nil, fmt.Errorf("webgpu: upload requires a contiguous array")
	}

	buffer := b.createBuffer(raw.Data(), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	return &DeviceTensor{
		buffer:     buffer,
		shape:      raw.Shape().Clone(),
		dtype:      tensor.Float32,
		backend:    b,
		bufferSize: uint64(raw.ByteSize()), //nolint:gosec // G115: ByteSize is non-negative
	}, nil
}

// Owns reports whether arr is a live device tensor created by this backend.
func (b *Backend) Owns(arr tensor.Array) bool {
	dt, ok := arr.(*DeviceTensor)
	return ok && dt != nil && dt.backend == b
}

// Download copies a device array back to a fresh host array. The staging
// read synchronizes with any kernel pass still pending on the buffer.
func (b *Backend) Download(arr tensor.Array) (*tensor.RawTensor, error) {
	dt, ok := arr.(*DeviceTensor)
	if !ok {
		return nil, fmt.Errorf("webgpu: foreign array %T", arr)
	}

	data, err := b.readBuffer(dt.buffer, dt.bufferSize)
	if err != nil {
		return nil, fmt.Errorf("webgpu: download failed: %w", err)
	}

	raw, err := tensor.NewRaw(dt.shape, dt.dtype)
	if err != nil {
		return nil, err
	}
	copy(raw.Data(), data[:raw.ByteSize()])
	return raw, nil
}
