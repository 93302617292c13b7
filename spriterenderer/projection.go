package spriterenderer

import lin "github.com/xlab/linmath"

// vulkanProjection converts an OpenGL-style projection matrix to a
// Vulkan-style one: Vulkan's clip space has Y pointing down and a [0,1]
// depth range instead of GL's [-1,1].
func vulkanProjection(out *lin.Mat4x4, proj *lin.Mat4x4) {
	out.Fill(1.0)
	out.ScaleAniso(out, 1.0, -1.0, 1.0)
	out.ScaleAniso(out, 1.0, 1.0, 0.5)
	out.Translate(0.0, 0.0, 1.0)
	out.Mult(out, proj)
}

// orthoProjection builds the Vulkan-corrected orthographic projection
// matrix for a viewport of the given pixel size, origin top-left.
func orthoProjection(width, height float32) lin.Mat4x4 {
	var gl lin.Mat4x4
	gl.Identity()
	gl.Ortho(0, width, height, 0, -1, 1)

	var vk lin.Mat4x4
	vulkanProjection(&vk, &gl)
	return vk
}
