package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/lumin-ml/lumin/internal/tensor"
)

// paramsSize is the uniform block carrying (x, y, lower, upper, total),
// rounded up to the required 16-byte alignment.
const paramsSize = 32

// ScaleVolume launches one elementwise scaleVolume pass over in, writing a
// freshly allocated output buffer of identical shape. The submission is
// asynchronous; the buffer becomes observable through Download (or any
// dependent pass), which synchronizes on the queue.
func (b *Backend) ScaleVolume(in tensor.Array, tr tensor.Transform, geom tensor.Geometry) (tensor.Array, error) {
	src, ok := in.(*DeviceTensor)
	if !ok {
		return nil, fmt.Errorf("webgpu: foreign array %T", in)
	}
	if src.dtype != tensor.Float32 {
		return nil, fmt.Errorf("webgpu: scaleVolume requires float32, got %s", src.dtype)
	}
	if geom.BlockDim != BlockDim {
		return nil, fmt.Errorf("webgpu: geometry block width %d does not match kernel width %d", geom.BlockDim, BlockDim)
	}
	if uint64(geom.Total) != uint64(src.NumElements()) {
		return nil, fmt.Errorf("webgpu: geometry covers %d elements, array has %d", geom.Total, src.NumElements())
	}

	shader := b.compileShader("scaleVolume", scaleVolumeShader)
	pipeline := b.getOrCreatePipeline("scaleVolume", shader)

	// Output buffer of identical shape; never aliases the input.
	outBuffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  src.bufferSize,
	})

	params := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(params[0:4], math.Float32bits(tr.X))
	binary.LittleEndian.PutUint32(params[4:8], math.Float32bits(tr.Y))
	binary.LittleEndian.PutUint32(params[8:12], math.Float32bits(tr.Lower))
	binary.LittleEndian.PutUint32(params[12:16], math.Float32bits(tr.Upper))
	binary.LittleEndian.PutUint32(params[16:20], geom.Total)
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, src.buffer, 0, src.bufferSize),
		wgpu.BufferBindingEntry(1, outBuffer, 0, src.bufferSize),
		wgpu.BufferBindingEntry(2, bufferParams, 0, paramsSize),
	})
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(geom.GridDim, 1, 1)
	computePass.End()

	b.queue.Submit(encoder.Finish(nil))

	return &DeviceTensor{
		buffer:     outBuffer,
		shape:      src.shape.Clone(),
		dtype:      tensor.Float32,
		backend:    b,
		bufferSize: src.bufferSize,
	}, nil
}
