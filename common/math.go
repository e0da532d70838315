package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Perspective creates a right-handed perspective projection matrix that maps view-space depth into the
// WebGPU clip range [0, 1]. mgl32.Perspective targets the OpenGL [-1, 1] range and cannot be used directly.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// TranslateScale builds translate(x, y, z) * scale(s, s, s) without any rotation.
//
// Parameters:
//   - x, y, z: translation
//   - s: uniform scale applied to all three axes
//
// Returns:
//   - mgl32.Mat4: the column-major transform
func TranslateScale(x, y, z, s float32) mgl32.Mat4 {
	return mgl32.Mat4{
		s, 0, 0, 0,
		0, s, 0, 0,
		0, 0, s, 0,
		x, y, z, 1,
	}
}

// EulerXYZ builds a rotation matrix from intrinsic X, then Y, then Z angles (R = Rx * Ry * Rz).
//
// Parameters:
//   - x, y, z: rotation angles in radians
//
// Returns:
//   - mgl32.Mat4: the column-major rotation matrix
func EulerXYZ(x, y, z float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(x).Mul4(mgl32.HomogRotate3DY(y)).Mul4(mgl32.HomogRotate3DZ(z))
}

// Compose builds a local transform T * R * S.
//
// Parameters:
//   - position: translation
//   - rotation: rotation matrix (only the upper 3x3 is used)
//   - scale: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed column-major transform
func Compose(position mgl32.Vec3, rotation mgl32.Mat4, scale mgl32.Vec3) mgl32.Mat4 {
	out := rotation.Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
	out[12], out[13], out[14], out[15] = position.X(), position.Y(), position.Z(), 1
	return out
}

// FaceTowards returns the rotation that points an object's +Z axis from eye towards target.
// Cameras use mgl32.LookAtV instead, which points -Z at the target and returns the inverse transform.
//
// Parameters:
//   - eye: position of the object
//   - target: point to face
//   - up: reference up vector
//
// Returns:
//   - mgl32.Mat4: the rotation matrix, identity when eye and target coincide
func FaceTowards(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	z := target.Sub(eye)
	if z.Len() == 0 {
		return mgl32.Ident4()
	}
	z = z.Normalize()
	x := up.Cross(z)
	if x.Len() == 0 {
		// up is parallel to the view axis, nudge it
		z[2] += 0.0001
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)
	return mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), mgl32.Vec4{0, 0, 0, 1})
}

// ViewportAtDistance returns the world-space size of the visible area of a perspective camera
// at a given distance from it.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - distance: distance from the camera
//
// Returns:
//   - float32: visible width
//   - float32: visible height
func ViewportAtDistance(fovY, aspect, distance float32) (float32, float32) {
	h := 2 * float32(math.Tan(float64(fovY)/2)) * distance
	return h * aspect, h
}

// AspectCover scales a w x h rectangle so that it covers a viewport of viewW x viewH while keeping
// its own aspect ratio, then multiplies the result by factor.
//
// Parameters:
//   - viewW, viewH: viewport size in world units
//   - w, h: source size (e.g. image pixel size)
//   - factor: extra multiplier applied to both axes
//
// Returns:
//   - float32: scaled width
//   - float32: scaled height
func AspectCover(viewW, viewH, w, h, factor float32) (float32, float32) {
	if w <= 0 || h <= 0 || viewH <= 0 {
		return 0, 0
	}
	var adapted float32
	if viewW/viewH > w/h {
		adapted = viewW / w
	} else {
		adapted = viewH / h
	}
	return w * adapted * factor, h * adapted * factor
}

// MarshalMat4s writes matrices as consecutive little-endian float32 values.
//
// Parameters:
//   - dst: destination, grown when too small
//   - ms: matrices to marshal
//
// Returns:
//   - []byte: dst resliced to 64 * len(ms) bytes
func MarshalMat4s(dst []byte, ms []mgl32.Mat4) []byte {
	n := len(ms) * 64
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, m := range ms {
		for j, v := range m {
			binary.LittleEndian.PutUint32(dst[i*64+j*4:], math.Float32bits(v))
		}
	}
	return dst
}
