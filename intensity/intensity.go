// Copyright 2026 Lumin ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package intensity provides the public API for Lumin's intensity-rescaling
// operation.
//
// The core entry point is ScaleIntensityRange, which rescales an image
// tensor linearly from a source range [aMin, aMax] to a target range
// [bMin, bMax] in a single elementwise kernel pass, optionally clamping the
// output to the target range:
//
//	img, _ := tensor.FromSlice(pixels, tensor.Shape{3, 256, 256})
//	out, err := intensity.ScaleIntensityRange(img, 1, -1, 255, 0, true)
//
// The package-level function dispatches to the process-wide GPU backend,
// falling back to the pure-Go CPU backend when no GPU is available. For
// explicit backend control, construct a Scaler with New.
package intensity

import (
	"log/slog"
	"sync"

	"github.com/lumin-ml/lumin/internal/backend/cpu"
	"github.com/lumin-ml/lumin/internal/backend/webgpu"
	"github.com/lumin-ml/lumin/internal/intensity"
	"github.com/lumin-ml/lumin/internal/logger"
	"github.com/lumin-ml/lumin/tensor"
)

// Scaler runs the intensity-rescaling pipeline against one backend.
type Scaler = intensity.Scaler

// Option configures a Scaler.
type Option = intensity.Option

// ConfigError reports an input that is not a recognized array value.
type ConfigError = intensity.ConfigError

// RangeError reports a degenerate scaling range or an unsafe element cast.
type RangeError = intensity.RangeError

// LaunchError reports a failure while dispatching or reading back the
// kernel pass.
type LaunchError = intensity.LaunchError

// BlockDim is the thread-block width of the scaleVolume kernel.
const BlockDim = intensity.BlockDim

// New creates a Scaler dispatching kernel work to b.
func New(b tensor.Backend, opts ...Option) *Scaler {
	return intensity.New(b, opts...)
}

// Logger is the structured logging sink used at the error boundary.
type Logger = logger.Logger

// WithLogger sets the logger used for boundary error reporting.
func WithLogger(log Logger) Option {
	return intensity.WithLogger(log)
}

// WithLogHandler is WithLogger for a plain slog handler.
func WithLogHandler(h slog.Handler) Option {
	return intensity.WithLogger(logger.New(h))
}

var (
	defaultOnce   sync.Once
	defaultScaler *Scaler
)

// ScaleIntensityRange rescales img linearly from [aMin, aMax] to
// [bMin, bMax] on the process-wide default backend, clamping the output to
// the target range when clip is set. The result matches img's shape,
// element type, and memory location.
func ScaleIntensityRange(img any, bMax, bMin, aMax, aMin float64, clip bool) (tensor.Array, error) {
	defaultOnce.Do(func() {
		if b, err := webgpu.Default(); err == nil {
			defaultScaler = intensity.New(b)
			return
		}
		defaultScaler = intensity.New(cpu.New())
	})
	return defaultScaler.ScaleIntensityRange(img, bMax, bMin, aMax, aMin, clip)
}
