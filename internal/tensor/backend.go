package tensor

// Array is the capability set shared by host- and accelerator-resident
// arrays. The concrete members are *RawTensor (host memory) and the device
// array type owned by each backend; callers distinguish the two by concrete
// type, not by reflection.
type Array interface {
	Shape() Shape
	DType() DataType
	Device() Device
	NumElements() int
}

// Transform holds the scalar coefficients and effective clamp bounds of one
// scaleVolume pass: out[i] = clamp(in[i]*X - Y, Lower, Upper). Disabled
// clamping is expressed as ±Inf bounds, so the kernel clamps uniformly.
type Transform struct {
	X, Y         float32
	Lower, Upper float32
}

// Geometry is the one-dimensional launch geometry of an elementwise pass.
// BlockDim is the thread-block width, GridDim the number of blocks covering
// Total elements; the kernel bounds-checks the tail block.
type Geometry struct {
	BlockDim uint32
	GridDim  uint32
	Total    uint32
}

// Backend executes the scaleVolume kernel on an accelerator.
//
// Implementations:
//   - webgpu: GPU compute via WebGPU
//   - cpu: pure-Go fallback for hosts without a GPU
//   - MockBackend: in-process reference for tests
type Backend interface {
	// Upload copies a contiguous float32 host array into accelerator memory.
	Upload(raw *RawTensor) (Array, error)

	// Download copies a device array owned by this backend back to host
	// memory, synchronizing with any pending kernel work on it.
	Download(arr Array) (*RawTensor, error)

	// ScaleVolume applies the clamped affine transform elementwise, writing
	// a freshly allocated device array of identical shape. The input is
	// never modified.
	ScaleVolume(in Array, tr Transform, geom Geometry) (Array, error)

	// Owns reports whether arr is a live device array created by this
	// backend. A matching Device() is not enough: two backends can share a
	// device type without sharing memory.
	Owns(arr Array) bool

	Name() string
	Device() Device
}
