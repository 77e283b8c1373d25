// Package intensity implements the scale_intensity_range operation: a
// single-pass linear rescaling of an image tensor from a source intensity
// range to a target range, executed as one elementwise kernel launch on the
// active accelerator backend.
package intensity

import (
	"runtime/debug"

	"github.com/lumin-ml/lumin/internal/backend/cpu"
	"github.com/lumin-ml/lumin/internal/logger"
	"github.com/lumin-ml/lumin/internal/tensor"
)

// Scaler runs the intensity-rescaling pipeline against one backend. A Scaler
// holds no per-call state and is safe for concurrent use.
type Scaler struct {
	backend tensor.Backend
	host    *cpu.Backend
	log     logger.Logger
}

// Option configures a Scaler.
type Option func(*Scaler)

// WithLogger sets the logger used for boundary error reporting.
func WithLogger(log logger.Logger) Option {
	return func(s *Scaler) {
		s.log = log
	}
}

// New creates a Scaler dispatching kernel work to b.
func New(b tensor.Backend, opts ...Option) *Scaler {
	s := &Scaler{
		backend: b,
		host:    cpu.New(),
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// normalized is the Normalizer's output: a float32 device array plus the
// provenance the Rehydrator needs to restore the caller's representation.
type normalized struct {
	dev       tensor.Array
	origDType tensor.DataType
	fromHost  bool
}

// releaser is the optional free capability of device arrays. The webgpu
// backend's tensors hold native buffers that are never garbage collected,
// so intermediates the pipeline allocates must be freed explicitly.
type releaser interface {
	Release()
}

func releaseArray(arr tensor.Array) {
	if r, ok := arr.(releaser); ok {
		r.Release()
	}
}

// ScaleIntensityRange rescales img linearly from [aMin, aMax] to
// [bMin, bMax], clamping the output to the target range when clip is set.
//
// img must be a host array (*tensor.RawTensor) or a device array owned by
// the Scaler's backend; any shape is accepted and treated as a flat element
// count. The result matches img's shape, element type, and memory location,
// and never aliases img's buffer.
func (s *Scaler) ScaleIntensityRange(img any, bMax, bMin, aMax, aMin float64, clip bool) (out tensor.Array, err error) {
	defer func() {
		if err != nil {
			s.log.Error("[lumin] scale_intensity_range failed",
				"error", err.Error(),
				"stack", string(debug.Stack()))
		}
	}()

	// Degenerate range is checked before touching the array at all.
	if aMax-aMin == 0 {
		return nil, rangeErrorf("degenerate source range: a_max == a_min (%v)", aMax)
	}

	norm, err := s.normalize(img)
	if err != nil {
		return nil, err
	}
	// The uploaded working copy is the pipeline's to free; a caller-owned
	// device input is not. Download has already synchronized by the time
	// the deferred release runs.
	if norm.fromHost {
		defer releaseArray(norm.dev)
	}

	scaled, err := s.dispatch(norm.dev, bMax, bMin, aMax, aMin, clip)
	if err != nil {
		return nil, err
	}

	return s.rehydrate(scaled, norm)
}

// normalize classifies img's memory location, enforces contiguity, and
// produces a float32 device array, recording the original element type and
// location for the Rehydrator.
func (s *Scaler) normalize(img any) (normalized, error) {
	switch v := img.(type) {
	case *tensor.RawTensor:
		if v == nil {
			return normalized{}, configErrorf("nil host array")
		}
		origDType := v.DType()
		if origDType != tensor.Float32 && !origDType.CanCastTo(tensor.Float32) {
			return normalized{}, rangeErrorf("cannot safely cast %s to float32", origDType)
		}
		work := v.Contiguous()
		work = s.host.Cast(work, tensor.Float32)
		dev, err := s.backend.Upload(work)
		if err != nil {
			return normalized{}, &LaunchError{Op: "upload", Err: err}
		}
		return normalized{dev: dev, origDType: origDType, fromHost: true}, nil

	case tensor.Array:
		if !s.backend.Owns(v) {
			return normalized{}, configErrorf("device array %T does not belong to the %s backend", v, s.backend.Name())
		}
		// Device arrays are float32 by construction; anything else never
		// passed Upload and is a foreign value.
		if v.DType() != tensor.Float32 {
			return normalized{}, rangeErrorf("device array has dtype %s, expected float32", v.DType())
		}
		return normalized{dev: v, origDType: tensor.Float32, fromHost: false}, nil

	default:
		return normalized{}, configErrorf("unsupported input type %T, expected a host or device array", img)
	}
}

// dispatch derives the transform coefficients, sizes the launch, and runs
// one scaleVolume pass over a fresh output buffer.
func (s *Scaler) dispatch(dev tensor.Array, bMax, bMin, aMax, aMin float64, clip bool) (tensor.Array, error) {
	tr := deriveTransform(bMax, bMin, aMax, aMin, clip)

	geom, err := launchGeometry(dev.NumElements())
	if err != nil {
		return nil, err
	}

	out, err := s.backend.ScaleVolume(dev, tr, geom)
	if err != nil {
		return nil, &LaunchError{Op: "dispatch", Err: err}
	}
	return out, nil
}

// rehydrate restores the original element type and memory location on the
// kernel's output. Device inputs come back as device arrays untouched; host
// inputs are downloaded and cast back to their original dtype.
func (s *Scaler) rehydrate(scaled tensor.Array, norm normalized) (tensor.Array, error) {
	if !norm.fromHost {
		return scaled, nil
	}
	// The kernel output is an intermediate on the host path; free it once
	// downloaded (or once the download fails).
	defer releaseArray(scaled)

	raw, err := s.backend.Download(scaled)
	if err != nil {
		return nil, &LaunchError{Op: "download", Err: err}
	}
	if norm.origDType != tensor.Float32 {
		raw = s.host.Cast(raw, norm.origDType)
	}
	return raw, nil
}
