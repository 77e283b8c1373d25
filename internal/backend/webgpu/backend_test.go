package webgpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumin-ml/lumin/internal/tensor"
)

// requireGPU skips the test when no WebGPU adapter is present, so the suite
// passes on CI machines without a GPU.
func requireGPU(t *testing.T) *Backend {
	t.Helper()
	if !IsAvailable() {
		t.Skip("WebGPU not available on this system")
	}
	b, err := New()
	require.NoError(t, err)
	t.Cleanup(b.Release)
	return b
}

func TestBackendMetadata(t *testing.T) {
	b := requireGPU(t)
	assert.Equal(t, tensor.WebGPU, b.Device())
	assert.Contains(t, b.Name(), "WebGPU")
}

func TestUploadDownloadRoundtrip(t *testing.T) {
	b := requireGPU(t)

	data := []float32{1.5, -2.25, 3.75, 0}
	raw, err := tensor.FromSlice(data, tensor.Shape{2, 2})
	require.NoError(t, err)

	dev, err := b.Upload(raw)
	require.NoError(t, err)
	defer dev.(*DeviceTensor).Release()
	assert.True(t, b.Owns(dev))

	back, err := b.Download(dev)
	require.NoError(t, err)
	assert.Equal(t, data, back.AsFloat32())
	assert.True(t, back.Shape().Equal(tensor.Shape{2, 2}))
}

func TestUploadRejectsNonFloat32(t *testing.T) {
	b := requireGPU(t)

	raw, err := tensor.NewRaw(tensor.Shape{4}, tensor.Uint8)
	require.NoError(t, err)
	_, err = b.Upload(raw)
	require.Error(t, err)
}

func TestScaleVolumeOnDevice(t *testing.T) {
	b := requireGPU(t)

	raw, err := tensor.FromSlice([]float32{0, 128, 255}, tensor.Shape{3})
	require.NoError(t, err)
	dev, err := b.Upload(raw)
	require.NoError(t, err)

	// [0, 255] -> [-1, 1] with clipping.
	x := float32(2.0 / 255.0)
	tr := tensor.Transform{X: x, Y: 1, Lower: -1, Upper: 1}
	out, err := b.ScaleVolume(dev, tr, tensor.Geometry{BlockDim: BlockDim, GridDim: 1, Total: 3})
	require.NoError(t, err)

	got, err := b.Download(out)
	require.NoError(t, err)
	want := []float32{-1, 128*x - 1, 1}
	for i := range want {
		assert.InDelta(t, want[i], got.AsFloat32()[i], 1e-6)
	}
}

func TestScaleVolumeUnclampedInfBounds(t *testing.T) {
	b := requireGPU(t)

	raw, err := tensor.FromSlice([]float32{-100, 1000}, tensor.Shape{2})
	require.NoError(t, err)
	dev, err := b.Upload(raw)
	require.NoError(t, err)

	tr := tensor.Transform{X: 1, Y: 0, Lower: float32(math.Inf(-1)), Upper: float32(math.Inf(1))}
	out, err := b.ScaleVolume(dev, tr, tensor.Geometry{BlockDim: BlockDim, GridDim: 1, Total: 2})
	require.NoError(t, err)

	got, err := b.Download(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{-100, 1000}, got.AsFloat32())
}

func TestScaleVolumeMultiBlock(t *testing.T) {
	b := requireGPU(t)

	n := 1000 // requires 8 workgroups of 128, with a bounds-checked tail
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i)
	}
	raw, err := tensor.FromSlice(data, tensor.Shape{10, 10, 10})
	require.NoError(t, err)
	dev, err := b.Upload(raw)
	require.NoError(t, err)

	tr := tensor.Transform{X: 2, Y: 0, Lower: float32(math.Inf(-1)), Upper: float32(math.Inf(1))}
	out, err := b.ScaleVolume(dev, tr, tensor.Geometry{BlockDim: BlockDim, GridDim: 8, Total: uint32(n)})
	require.NoError(t, err)

	got, err := b.Download(out)
	require.NoError(t, err)
	for i, v := range got.AsFloat32() {
		require.Equal(t, float32(i)*2, v, "element %d", i)
	}
}

func TestScaleVolumeRejectsWrongBlockWidth(t *testing.T) {
	b := requireGPU(t)

	raw, err := tensor.FromSlice([]float32{1}, tensor.Shape{1})
	require.NoError(t, err)
	dev, err := b.Upload(raw)
	require.NoError(t, err)

	_, err = b.ScaleVolume(dev, tensor.Transform{X: 1}, tensor.Geometry{BlockDim: 256, GridDim: 1, Total: 1})
	require.Error(t, err)
}
