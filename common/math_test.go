package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const standardTol = 1e-5

func TestTranslateScale(t *testing.T) {
	t.Parallel()

	m := TranslateScale(1, 2, 3, 0.5)
	p := m.Mul4x1(mgl32.Vec4{2, 2, 2, 1})

	assert.InDelta(t, 2, p.X(), standardTol)
	assert.InDelta(t, 3, p.Y(), standardTol)
	assert.InDelta(t, 4, p.Z(), standardTol)
	assert.InDelta(t, 1, p.W(), standardTol)
}

func TestPerspectiveDepthRange(t *testing.T) {
	t.Parallel()

	near, far := float32(0.1), float32(100)
	proj := Perspective(mgl32.DegToRad(75), 16.0/9.0, near, far)

	clipNear := proj.Mul4x1(mgl32.Vec4{0, 0, -near, 1})
	clipFar := proj.Mul4x1(mgl32.Vec4{0, 0, -far, 1})

	assert.InDelta(t, 0, clipNear.Z()/clipNear.W(), standardTol)
	assert.InDelta(t, 1, clipFar.Z()/clipFar.W(), standardTol)
}

func TestEulerXYZMatchesAxisProduct(t *testing.T) {
	t.Parallel()

	x, y, z := float32(math.Pi/4), float32(math.Pi/8), float32(-math.Pi/8)
	want := mgl32.HomogRotate3DX(x).Mul4(mgl32.HomogRotate3DY(y)).Mul4(mgl32.HomogRotate3DZ(z))

	assert.True(t, EulerXYZ(x, y, z).ApproxEqualThreshold(want, standardTol))
	assert.True(t, EulerXYZ(0, 0, 0).ApproxEqualThreshold(mgl32.Ident4(), standardTol))
}

func TestCompose(t *testing.T) {
	t.Parallel()

	m := Compose(mgl32.Vec3{1, 0, 0}, mgl32.HomogRotate3DZ(math.Pi/2), mgl32.Vec3{2, 2, 2})
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, m)

	// scale to (2,0,0), rotate to (0,2,0), translate to (1,2,0)
	assert.InDelta(t, 1, p.X(), standardTol)
	assert.InDelta(t, 2, p.Y(), standardTol)
	assert.InDelta(t, 0, p.Z(), standardTol)
}

func TestFaceTowards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		eye    mgl32.Vec3
		target mgl32.Vec3
	}{
		{name: "from +x", eye: mgl32.Vec3{10, 0, 0}, target: mgl32.Vec3{}},
		{name: "from above", eye: mgl32.Vec3{0, 20, 0}, target: mgl32.Vec3{}},
		{name: "offset target", eye: mgl32.Vec3{3, -4, 5}, target: mgl32.Vec3{-3, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rot := FaceTowards(tt.eye, tt.target, mgl32.Vec3{0, 1, 0})
			forward := rot.Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3()
			want := tt.target.Sub(tt.eye).Normalize()

			assert.InDelta(t, 1, forward.Dot(want), 1e-3)
			assert.InDelta(t, 1, rot.Det(), 1e-3)
		})
	}

	assert.Equal(t, mgl32.Ident4(), FaceTowards(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 1, 0}))
}

func TestAspectCover(t *testing.T) {
	t.Parallel()

	// Arrange
	viewW, viewH := ViewportAtDistance(mgl32.DegToRad(75), 16.0/9.0, 15)

	// Act
	w, h := AspectCover(viewW, viewH, 1024, 512, 2)

	// Assert
	assert.InDelta(t, 2*viewH*2, w, 1e-3, "a 16:9 view is narrower than 2:1 so height decides")
	assert.InDelta(t, 2*viewH, h, 1e-3)
	assert.InDelta(t, 2.0, w/h, 1e-4)

	w, h = AspectCover(40, 10, 1024, 512, 1)
	assert.InDelta(t, 40, w, 1e-4, "a 4:1 view is wider than 2:1 so width decides")
	assert.InDelta(t, 20, h, 1e-4)

	w, h = AspectCover(40, 10, 0, 512, 1)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestMarshalMat4s(t *testing.T) {
	t.Parallel()

	ms := []mgl32.Mat4{mgl32.Ident4(), TranslateScale(1, 2, 3, 4)}
	out := MarshalMat4s(nil, ms)

	require.Len(t, out, 128)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(out[0:])))
	assert.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(out[64:])))
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(out[64+14*4:])))

	reused := MarshalMat4s(out, ms[:1])
	assert.Len(t, reused, 64)
	assert.Same(t, &out[0], &reused[0], "destination buffer is reused when large enough")
}

func TestCoalesce(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4, Coalesce(0, 0, 4, 5))
	assert.Equal(t, "", Coalesce[string]())
}

func TestFloat32sToBytes(t *testing.T) {
	t.Parallel()

	out := Float32sToBytes(1.5, -2)
	require.Len(t, out, 8)
	assert.Equal(t, float32(-2), math.Float32frombits(binary.LittleEndian.Uint32(out[4:])))
}
