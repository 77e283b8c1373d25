// Copyright 2026 Lumin ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for Lumin's array types.
//
// The package defines the host array (RawTensor), the Array capability set
// shared with accelerator-resident arrays, and the Backend interface
// implemented by each compute device:
//   - RawTensor: host-resident n-dimensional array over a flat byte buffer
//   - Array: capability set shared by host and device arrays
//   - Backend: device-specific kernel execution
//   - Shape, DataType, Device: core type definitions
package tensor

import (
	"github.com/lumin-ml/lumin/internal/tensor"
)

// DType is a constraint for tensor element types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	Vulkan Device = tensor.Vulkan
	Metal  Device = tensor.Metal
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is a host-resident array over a flat byte buffer with explicit
// strides. It is the host member of the Array sum.
type RawTensor = tensor.RawTensor

// Array is the capability set shared by host- and accelerator-resident
// arrays.
type Array = tensor.Array

// Backend executes elementwise kernels on a compute device.
type Backend = tensor.Backend

// Transform holds the scalar coefficients and clamp bounds of one
// scaleVolume pass.
type Transform = tensor.Transform

// Geometry is the one-dimensional launch geometry of an elementwise pass.
type Geometry = tensor.Geometry

// MockBackend is an in-process accelerator for tests; it records every
// launch it receives.
type MockBackend = tensor.MockBackend

// Launch is one recorded MockBackend kernel call.
type Launch = tensor.Launch

// NewRaw allocates a zeroed host array.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromSlice builds a host array from a flat slice in row-major order.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromBytes builds a host array over raw little-endian bytes.
func FromBytes(data []byte, shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.FromBytes(data, shape, dtype)
}

// NewMockBackend creates a recording test backend.
func NewMockBackend() *MockBackend {
	return tensor.NewMockBackend()
}
