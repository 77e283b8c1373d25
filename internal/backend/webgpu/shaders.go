package webgpu

// BlockDim is the thread-block (workgroup) width of the scaleVolume kernel.
// Launch geometry handed to ScaleVolume must use the same width, since the
// WGSL workgroup size is fixed at compile time.
const BlockDim = 128

// scaleVolumeShader applies the clamped affine intensity transform
// result[i] = min(max(input[i]*x - y, lower), upper) over a flat buffer.
// Clamping is unconditional; a disabled clamp arrives as ±Inf bounds.
// The tail workgroup is bounds-checked against params.total.
const scaleVolumeShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    x: f32,
    y: f32,
    lower: f32,
    upper: f32,
    total: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(128)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.total) {
        result[idx] = min(max(input[idx] * params.x - params.y, params.lower), params.upper);
    }
}
`
