//go:build windows

package webgpu

// workgroupSize is the number of invocations per workgroup.
const workgroupSize = 256

const (
	fillShaderName = "fill"
	addShaderName  = "add"
	mulShaderName  = "mul"
	divShaderName  = "div"
)

// fillShader writes value into size consecutive f32 words starting at off.
const fillShader = `
@group(0) @binding(0) var<storage, read_write> result: array<u32>;

struct Params {
    size: u32,
    off: u32,
    value: u32,
}
@group(0) @binding(1) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[params.off + idx] = params.value;
    }
}
`

// binaryShader builds an element-wise f32 shader: result = a <op> b.
// Offsets are in elements so views need no binding alignment.
func binaryShader(op string) string {
	return `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
    off_a: u32,
    off_b: u32,
    off_out: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[params.off_out + idx] = a[params.off_a + idx] ` + op + ` b[params.off_b + idx];
    }
}
`
}

var (
	addShader = binaryShader("+")
	mulShader = binaryShader("*")
	divShader = binaryShader("/")
)
