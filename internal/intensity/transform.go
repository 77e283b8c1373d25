package intensity

import (
	"fmt"
	"math"

	"github.com/lumin-ml/lumin/internal/tensor"
)

const (
	// BlockDim is the thread-block width of the scaleVolume kernel. Every
	// backend compiles the kernel at this width, so launch geometry is
	// derived against it.
	BlockDim = 128

	// maxGridDim is the per-dimension workgroup limit guaranteed by the
	// WebGPU base profile.
	maxGridDim = 65535
)

// deriveTransform computes the affine coefficients and effective clamp
// bounds for one pass:
//
//	x = (bMax - bMin) / (aMax - aMin)
//	y = aMin*x - bMin
//
// With clip disabled the bounds widen to ±Inf, so the kernel applies the
// same clamp instruction on every path.
func deriveTransform(bMax, bMin, aMax, aMin float64, clip bool) tensor.Transform {
	x := (bMax - bMin) / (aMax - aMin)
	y := aMin*x - bMin

	lower := float32(math.Inf(-1))
	upper := float32(math.Inf(1))
	if clip {
		lower = float32(min(bMin, bMax))
		upper = float32(max(bMin, bMax))
	}
	return tensor.Transform{
		X:     float32(x),
		Y:     float32(y),
		Lower: lower,
		Upper: upper,
	}
}

// launchGeometry sizes a one-dimensional launch covering n elements with
// BlockDim-wide blocks. The tail block is bounds-checked by the kernel.
func launchGeometry(n int) (tensor.Geometry, error) {
	if n < 0 || n > math.MaxInt32 {
		return tensor.Geometry{}, &LaunchError{
			Op:  "geometry",
			Err: fmt.Errorf("element count %d exceeds the kernel's 32-bit index space", n),
		}
	}
	grid := (n + BlockDim - 1) / BlockDim
	if grid > maxGridDim {
		return tensor.Geometry{}, &LaunchError{
			Op:  "geometry",
			Err: fmt.Errorf("grid width %d exceeds the accelerator limit %d", grid, maxGridDim),
		}
	}
	return tensor.Geometry{
		BlockDim: BlockDim,
		GridDim:  uint32(grid),  //nolint:gosec // G115: bounded by maxGridDim
		Total:    uint32(n),     //nolint:gosec // G115: bounded by MaxInt32
	}, nil
}
