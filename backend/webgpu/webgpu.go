// Copyright 2026 Lumin ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the GPU backend, using zero-CGO WebGPU bindings.
package webgpu

import (
	"github.com/lumin-ml/lumin/internal/backend/webgpu"
)

// Backend owns the WebGPU device and the compiled kernel module. One
// Backend is safe for concurrent launches.
type Backend = webgpu.Backend

// DeviceTensor is a float32 array resident in GPU memory.
type DeviceTensor = webgpu.DeviceTensor

// Option configures a Backend at creation time.
type Option = webgpu.Option

// WithPowerPreference selects the adapter power class: "low-power" prefers
// an integrated GPU, anything else the high-performance one.
func WithPowerPreference(pref string) Option {
	return webgpu.WithPowerPreference(pref)
}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New(opts ...Option) (*Backend, error) {
	return webgpu.New(opts...)
}

// Default returns the process-wide shared backend, initializing it on the
// first call. Callers must not Release it.
func Default() (*Backend, error) {
	return webgpu.Default()
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() bool {
	return webgpu.IsAvailable()
}
