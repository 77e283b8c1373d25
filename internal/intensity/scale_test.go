package intensity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumin-ml/lumin/internal/backend/cpu"
	"github.com/lumin-ml/lumin/internal/logger"
	"github.com/lumin-ml/lumin/internal/tensor"
)

func newTestScaler(t *testing.T) (*Scaler, *tensor.MockBackend) {
	t.Helper()
	m := tensor.NewMockBackend()
	return New(m, WithLogger(logger.Nop())), m
}

func TestScalePreservesShapeDTypeLocation(t *testing.T) {
	s, _ := newTestScaler(t)

	in, err := tensor.FromSlice([]uint8{0, 50, 100, 150, 200, 250}, tensor.Shape{2, 3})
	require.NoError(t, err)

	out, err := s.ScaleIntensityRange(in, 1, 0, 250, 0, false)
	require.NoError(t, err)

	assert.True(t, out.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Uint8, out.DType())
	assert.Equal(t, tensor.CPU, out.Device())
	_, isHost := out.(*tensor.RawTensor)
	assert.True(t, isHost, "host input must come back as a host array")
}

func TestScaleIdentityLaw(t *testing.T) {
	s, _ := newTestScaler(t)

	data := []float32{-3.5, 0, 1.25, 42, 255}
	in, err := tensor.FromSlice(data, tensor.Shape{5})
	require.NoError(t, err)

	out, err := s.ScaleIntensityRange(in, 255, -3.5, 255, -3.5, false)
	require.NoError(t, err)

	got := out.(*tensor.RawTensor).AsFloat32()
	for i := range data {
		assert.InDelta(t, data[i], got[i], 1e-4, "element %d", i)
	}
}

func TestScaleClampLaw(t *testing.T) {
	s, _ := newTestScaler(t)

	in, err := tensor.FromSlice([]float32{-1000, -1, 0, 0.5, 1, 1000}, tensor.Shape{6})
	require.NoError(t, err)

	out, err := s.ScaleIntensityRange(in, 1, 0, 0.5, 0, true)
	require.NoError(t, err)

	for i, v := range out.(*tensor.RawTensor).AsFloat32() {
		assert.GreaterOrEqual(t, v, float32(0), "element %d", i)
		assert.LessOrEqual(t, v, float32(1), "element %d", i)
	}
}

func TestScaleUnclampedOverflow(t *testing.T) {
	s, _ := newTestScaler(t)

	// a_max + delta must map to b_max + delta*x when clip is off.
	const delta = 10.0
	in, err := tensor.FromSlice([]float32{255 + delta}, tensor.Shape{1})
	require.NoError(t, err)

	out, err := s.ScaleIntensityRange(in, 1, 0, 255, 0, false)
	require.NoError(t, err)

	x := 1.0 / 255.0
	got := out.(*tensor.RawTensor).AsFloat32()[0]
	assert.InDelta(t, 1+delta*x, got, 1e-5)
}

func TestScaleDegenerateRange(t *testing.T) {
	s, m := newTestScaler(t)

	in, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	_, err = s.ScaleIntensityRange(in, 1, 0, 5, 5, true)
	var re *RangeError
	require.ErrorAs(t, err, &re)
	assert.Zero(t, m.Uploads, "degenerate range must fail before any compute")
}

func TestScaleRejectsNonArrayInput(t *testing.T) {
	s, _ := newTestScaler(t)

	var ce *ConfigError
	_, err := s.ScaleIntensityRange("not an array", 1, 0, 255, 0, false)
	require.ErrorAs(t, err, &ce)

	_, err = s.ScaleIntensityRange(3.14, 1, 0, 255, 0, false)
	require.ErrorAs(t, err, &ce)

	_, err = s.ScaleIntensityRange(nil, 1, 0, 255, 0, false)
	require.ErrorAs(t, err, &ce)
}

func TestScaleRejectsUnsafeCast(t *testing.T) {
	s, m := newTestScaler(t)

	for _, dtype := range []tensor.DataType{tensor.Int32, tensor.Int64, tensor.Float64} {
		raw, err := tensor.NewRaw(tensor.Shape{4}, dtype)
		require.NoError(t, err)

		_, err = s.ScaleIntensityRange(raw, 1, 0, 255, 0, false)
		var re *RangeError
		require.ErrorAs(t, err, &re, "dtype %s", dtype)
	}
	assert.Zero(t, m.Uploads)
}

func TestScaleUint8Scenario(t *testing.T) {
	s, m := newTestScaler(t)

	in, err := tensor.FromSlice([]uint8{0, 128, 255}, tensor.Shape{3})
	require.NoError(t, err)

	out, err := s.ScaleIntensityRange(in, 1, -1, 255, 0, true)
	require.NoError(t, err)

	require.Len(t, m.Launches, 1)
	launch := m.Launches[0]
	assert.InDelta(t, 2.0/255.0, launch.Transform.X, 1e-6)
	assert.InDelta(t, 1.0, launch.Transform.Y, 1e-6)
	assert.Equal(t, float32(-1), launch.Transform.Lower)
	assert.Equal(t, float32(1), launch.Transform.Upper)

	// Float results are [-1, 0.00392, 1]; casting back to uint8 truncates
	// toward zero and wraps, so -1.0 lands on 255.
	raw := out.(*tensor.RawTensor)
	assert.Equal(t, tensor.Uint8, raw.DType())
	assert.Equal(t, []uint8{255, 0, 1}, raw.AsUint8())
}

func TestScaleBatchedGeometry(t *testing.T) {
	s, m := newTestScaler(t)

	data := make([]float32, 2*3*4*4)
	in, err := tensor.FromSlice(data, tensor.Shape{2, 3, 4, 4})
	require.NoError(t, err)

	out, err := s.ScaleIntensityRange(in, 1, 0, 255, 0, true)
	require.NoError(t, err)

	require.Len(t, m.Launches, 1)
	geom := m.Launches[0].Geometry
	assert.Equal(t, uint32(96), geom.Total)
	assert.Equal(t, uint32(BlockDim), geom.BlockDim)
	assert.Equal(t, uint32(1), geom.GridDim)
	assert.True(t, out.Shape().Equal(tensor.Shape{2, 3, 4, 4}))
}

func TestScaleDeviceInputStaysOnDevice(t *testing.T) {
	s, m := newTestScaler(t)

	raw, err := tensor.FromSlice([]float32{0, 64, 128}, tensor.Shape{3})
	require.NoError(t, err)
	dev, err := m.Upload(raw)
	require.NoError(t, err)
	m.Uploads = 0

	out, err := s.ScaleIntensityRange(dev, 1, 0, 128, 0, true)
	require.NoError(t, err)

	_, isDevice := out.(*tensor.MockArray)
	assert.True(t, isDevice, "device input must come back as a device array")
	assert.Zero(t, m.Uploads, "device input needs no upload")
	assert.Zero(t, m.Downloads, "device output needs no download")
	assert.Zero(t, m.Releases, "caller-owned input and returned output must stay live")
}

func TestScaleNonContiguousInput(t *testing.T) {
	s, _ := newTestScaler(t)

	base, err := tensor.FromSlice([]float32{0, 1, 2, 3, 4, 5, 6, 7}, tensor.Shape{2, 4})
	require.NoError(t, err)
	view, err := base.Narrow(1, 0, 2) // strided view: {0, 1, 4, 5}
	require.NoError(t, err)
	require.False(t, view.IsContiguous())

	out, err := s.ScaleIntensityRange(view, 2, 0, 1, 0, false)
	require.NoError(t, err)

	got := out.(*tensor.RawTensor).AsFloat32()
	want := []float32{0, 2, 8, 10}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5)
	}
}

func TestScaleHostPathFreesDeviceBuffers(t *testing.T) {
	s, m := newTestScaler(t)

	in, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)

	_, err = s.ScaleIntensityRange(in, 1, 0, 3, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Releases, "uploaded input and kernel output must both be freed")
}

func TestScaleFreesUploadOnDispatchFailure(t *testing.T) {
	m := tensor.NewMockBackend()
	s := New(&dispatchFailBackend{MockBackend: m}, WithLogger(logger.Nop()))

	in, err := tensor.FromSlice([]float32{1}, tensor.Shape{1})
	require.NoError(t, err)

	_, err = s.ScaleIntensityRange(in, 1, 0, 255, 0, false)
	var le *LaunchError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 1, m.Releases, "uploaded input must be freed when dispatch fails")
}

func TestScaleFreesBuffersOnDownloadFailure(t *testing.T) {
	m := tensor.NewMockBackend()
	s := New(&downloadFailBackend{MockBackend: m}, WithLogger(logger.Nop()))

	in, err := tensor.FromSlice([]float32{1}, tensor.Shape{1})
	require.NoError(t, err)

	_, err = s.ScaleIntensityRange(in, 1, 0, 255, 0, false)
	var le *LaunchError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "download", le.Op)
	assert.Equal(t, 2, m.Releases, "both intermediates must be freed when the download fails")
}

// dispatchFailBackend simulates an accelerator failure at launch time.
type dispatchFailBackend struct {
	*tensor.MockBackend
}

func (b *dispatchFailBackend) ScaleVolume(tensor.Array, tensor.Transform, tensor.Geometry) (tensor.Array, error) {
	return nil, errors.New("device lost")
}

// downloadFailBackend simulates a failed readback after a successful launch.
type downloadFailBackend struct {
	*tensor.MockBackend
}

func (b *downloadFailBackend) Download(tensor.Array) (*tensor.RawTensor, error) {
	return nil, errors.New("map failed")
}

func TestScaleRejectsArrayFromAnotherBackend(t *testing.T) {
	s, _ := newTestScaler(t)

	host, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	other, err := cpu.New().Upload(host)
	require.NoError(t, err)

	// Same device type as the scaler's backend, different owner.
	_, err = s.ScaleIntensityRange(other, 1, 0, 255, 0, false)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

func TestScaleRejectsTypedNilArrays(t *testing.T) {
	s, _ := newTestScaler(t)

	var ce *ConfigError
	_, err := s.ScaleIntensityRange((*tensor.RawTensor)(nil), 1, 0, 255, 0, false)
	require.ErrorAs(t, err, &ce)

	_, err = s.ScaleIntensityRange((*tensor.MockArray)(nil), 1, 0, 255, 0, false)
	require.ErrorAs(t, err, &ce)
}

func TestScaleRejectsForeignDeviceArray(t *testing.T) {
	s, _ := newTestScaler(t)

	_, err := s.ScaleIntensityRange(&foreignArray{}, 1, 0, 255, 0, false)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
}

// foreignArray pretends to live on a device the scaler's backend does not own.
type foreignArray struct{}

func (foreignArray) Shape() tensor.Shape    { return tensor.Shape{1} }
func (foreignArray) DType() tensor.DataType { return tensor.Float32 }
func (foreignArray) Device() tensor.Device  { return tensor.WebGPU }
func (foreignArray) NumElements() int       { return 1 }

func TestScaleEndToEndOnCPUBackend(t *testing.T) {
	s := New(cpu.New(), WithLogger(logger.Nop()))

	in, err := tensor.FromSlice([]float32{0, 128, 255}, tensor.Shape{3})
	require.NoError(t, err)

	out, err := s.ScaleIntensityRange(in, 1, -1, 255, 0, true)
	require.NoError(t, err)

	got := out.(*tensor.RawTensor).AsFloat32()
	assert.InDelta(t, -1.0, got[0], 1e-6)
	assert.InDelta(t, 128*(2.0/255.0)-1, got[1], 1e-6)
	assert.InDelta(t, 1.0, got[2], 1e-6)
}
