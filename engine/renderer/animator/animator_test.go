package animator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitParams() InstanceParams {
	return InstanceParams{ScaleFactor: 1, TimeFactor: 1}
}

func TestInstanceTransformSingleInstance(t *testing.T) {
	t.Parallel()

	// Act
	pos, scale := InstanceTransform(0, 1, 0, unitParams())

	// Assert
	assert.InDelta(t, 8.0, pos[0], 1e-12)
	assert.InDelta(t, -math.Pi, pos[1], 1e-12)
	assert.InDelta(t, 0.0, pos[2], 1e-12)
	assert.InDelta(t, 1-math.Pow(0.45, 5), scale, 1e-12)
	assert.InDelta(t, 0.98155, scale, 1e-5)
}

func TestInstanceTransformAtZeroTime(t *testing.T) {
	t.Parallel()

	// Arrange
	const n = 24
	params := NewInstanceParams(n, rand.New(rand.NewSource(7)))

	for i, p := range params {
		// Act
		pos, scale := InstanceTransform(i, n, 0, p)

		// Assert
		angle := 2 * math.Pi * float64(i) / n
		phase := math.Mod(angle+math.Pi/2, 2*math.Pi)
		assert.InDelta(t, 8*math.Cos(angle)+p.Bias[0], pos[0], 1e-6, "x of %d", i)
		assert.InDelta(t, -2*math.Pi+2*phase+p.Bias[1], pos[1], 1e-6, "y of %d", i)
		assert.InDelta(t, 6*math.Sin(angle)+p.Bias[2], pos[2], 1e-6, "z of %d", i)
		assert.InDelta(t, p.ScaleFactor*EaseOutQuint((1.1+math.Sin(angle))/2), scale, 1e-6, "scale of %d", i)
	}
}

func TestInstanceTransformYPhaseWraps(t *testing.T) {
	t.Parallel()

	// Arrange: at angle 3π/2 the phase wraps back to zero.
	p := unitParams()

	// Act
	before, _ := InstanceTransform(0, 1, 3*math.Pi/2-0.01, p)
	after, _ := InstanceTransform(0, 1, 3*math.Pi/2+0.01, p)

	// Assert
	assert.InDelta(t, 2*math.Pi-0.02, before[1], 1e-9)
	assert.InDelta(t, -2*math.Pi+0.02, after[1], 1e-9)
}

func TestInstanceTransformPeriodic(t *testing.T) {
	t.Parallel()

	// Arrange
	p := InstanceParams{ScaleFactor: 0.8, TimeFactor: 0.4, Bias: [3]float64{1, -1, 1}}
	period := 2 * math.Pi / p.TimeFactor

	for _, elapsed := range []float64{1, 2.5, 10} {
		// Act
		pos1, s1 := InstanceTransform(3, 24, elapsed, p)
		pos2, s2 := InstanceTransform(3, 24, elapsed+period, p)

		// Assert
		for axis := range 3 {
			assert.InDelta(t, pos1[axis], pos2[axis], 1e-9, "axis %d at %v", axis, elapsed)
		}
		assert.InDelta(t, s1, s2, 1e-9)
	}
}

func TestInstanceTransformNonFinite(t *testing.T) {
	t.Parallel()

	for _, elapsed := range []float64{math.NaN(), math.Inf(1)} {
		// Act
		pos, scale := InstanceTransform(0, 4, elapsed, unitParams())

		// Assert
		for axis := range 3 {
			assert.True(t, math.IsNaN(pos[axis]), "axis %d for %v", axis, elapsed)
		}
		assert.True(t, math.IsNaN(scale))
	}
}

func TestEaseOutQuint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, EaseOutQuint(0))
	assert.Equal(t, 1.0, EaseOutQuint(1))

	prev := EaseOutQuint(0)
	for i := 1; i <= 1000; i++ {
		v := EaseOutQuint(float64(i) / 1000)
		assert.GreaterOrEqual(t, v, prev, "step %d", i)
		prev = v
	}
}

func TestEaseOutQuintUnclamped(t *testing.T) {
	t.Parallel()

	// (0.1 + (1 + 1)) / 2 = 1.05 is reachable at the top of the orbit.
	assert.Greater(t, EaseOutQuint(1.05), 1.0)
}

func TestNewInstanceParamsRanges(t *testing.T) {
	t.Parallel()

	// Arrange
	const n = 1000

	// Act
	params := NewInstanceParams(n, rand.New(rand.NewSource(42)))

	// Assert
	require.Len(t, params, n)
	negatives := 0
	for _, p := range params {
		assert.GreaterOrEqual(t, p.ScaleFactor, 0.0)
		assert.Less(t, p.ScaleFactor, 1.2)
		assert.GreaterOrEqual(t, p.TimeFactor, 0.3)
		assert.Less(t, p.TimeFactor, 0.5)
		for _, b := range p.Bias {
			require.Contains(t, []float64{-1, 1}, b)
			if b < 0 {
				negatives++
			}
		}
	}
	// P(r1*r2 > 0.5) = (1 - ln 2) / 2 ≈ 0.153
	ratio := float64(negatives) / (3 * n)
	assert.InDelta(t, 0.153, ratio, 0.05)
}

func TestNewInstanceParamsSeeded(t *testing.T) {
	t.Parallel()

	a := NewInstanceParams(24, rand.New(rand.NewSource(9)))
	b := NewInstanceParams(24, rand.New(rand.NewSource(9)))

	assert.Equal(t, a, b)
	assert.Empty(t, NewInstanceParams(-3, nil))
	assert.Len(t, NewInstanceParams(5, nil), 5)
}

func TestOrbitAnimatorUpdateWritesTargets(t *testing.T) {
	t.Parallel()

	// Arrange
	params := []InstanceParams{unitParams()}
	buf := NewInstanceBuffer(1, nil, 1)
	_, _ = buf.StagedWrite()
	a := NewOrbitAnimator(params, WithTargets(buf))

	// Act
	a.Update(0)

	// Assert
	require.True(t, buf.Dirty())
	m := buf.MatrixAt(0)
	assert.InDelta(t, 8, m[12], 1e-5)
	assert.InDelta(t, -math.Pi, m[13], 1e-5)
	assert.InDelta(t, 0, m[14], 1e-5)
	assert.InDelta(t, 0.98155, m[0], 1e-5)
	assert.Equal(t, m[0], m[5])
	assert.Equal(t, m[0], m[10])
	assert.Equal(t, float32(1), m[15])
}

func TestOrbitAnimatorFanOut(t *testing.T) {
	t.Parallel()

	// Arrange
	params := NewInstanceParams(DefaultInstanceCount, rand.New(rand.NewSource(3)))
	primary := NewInstanceBuffer(DefaultInstanceCount, nil, 1)
	backface := NewInstanceBuffer(DefaultInstanceCount, nil, 1)
	shell := NewInstanceBuffer(DefaultInstanceCount, nil, 1)
	a := NewOrbitAnimator(params, WithTargets(primary, nil, backface))
	a.AddTarget(shell)
	a.AddTarget(nil)

	// Act
	a.Update(4.2)

	// Assert
	require.Len(t, a.Targets(), 3)
	for i := range DefaultInstanceCount {
		assert.Equal(t, primary.MatrixAt(i), backface.MatrixAt(i), "instance %d", i)
		assert.Equal(t, primary.MatrixAt(i), shell.MatrixAt(i), "instance %d", i)
	}
	w1, ok1 := primary.StagedWrite()
	w2, ok2 := shell.StagedWrite()
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, w1.Data, w2.Data)
}

func TestOrbitAnimatorDeterministic(t *testing.T) {
	t.Parallel()

	// Arrange
	params := NewInstanceParams(DefaultInstanceCount, rand.New(rand.NewSource(11)))
	buf := NewInstanceBuffer(DefaultInstanceCount, nil, 1)
	a := NewOrbitAnimator(params, WithTargets(buf))

	// Act
	a.Update(17.25)
	first := make([]mgl32.Mat4, buf.Len())
	for i := range first {
		first[i] = buf.MatrixAt(i)
	}
	a.Update(3)
	a.Update(17.25)

	// Assert
	for i := range first {
		assert.Equal(t, first[i], buf.MatrixAt(i), "instance %d", i)
	}
}

func TestOrbitAnimatorCopiesParams(t *testing.T) {
	t.Parallel()

	params := []InstanceParams{unitParams()}
	a := NewOrbitAnimator(params)
	params[0].ScaleFactor = 99

	assert.Equal(t, 1.0, a.Params(0).ScaleFactor)
	assert.Equal(t, InstanceParams{}, a.Params(5))
	assert.Equal(t, 1, a.Count())
}

func TestOrbitAnimatorEmptyIsNoop(t *testing.T) {
	t.Parallel()

	// Arrange
	buf := NewInstanceBuffer(2, nil, 1)
	_, _ = buf.StagedWrite()
	a := NewOrbitAnimator(nil, WithTargets(buf))

	// Act
	a.Update(1)

	// Assert
	assert.False(t, buf.Dirty())
	assert.Equal(t, mgl32.Ident4(), buf.MatrixAt(0))
}

func TestOrbitAnimatorNonFiniteDoesNotPanic(t *testing.T) {
	t.Parallel()

	buf := NewInstanceBuffer(3, nil, 1)
	a := NewOrbitAnimator(NewInstanceParams(3, rand.New(rand.NewSource(1))), WithTargets(buf))

	assert.NotPanics(t, func() { a.Update(math.NaN()) })
	assert.True(t, math.IsNaN(float64(buf.MatrixAt(0)[12])))
}

func TestInstanceBuffer(t *testing.T) {
	t.Parallel()

	// Arrange
	buf := NewInstanceBuffer(2, nil, 3)
	m := mgl32.Translate3D(1, 2, 3)

	// Act
	buf.SetMatrixAt(1, m)
	buf.SetMatrixAt(-1, m)
	buf.SetMatrixAt(2, m)
	w, ok := buf.StagedWrite()

	// Assert
	require.True(t, ok)
	assert.Equal(t, 3, w.Binding)
	assert.Len(t, w.Data, 128)
	assert.Equal(t, uint64(128), buf.ByteSize())
	assert.Equal(t, mgl32.Ident4(), buf.MatrixAt(0))
	assert.Equal(t, m, buf.MatrixAt(1))
	assert.False(t, buf.Dirty())

	_, ok = buf.StagedWrite()
	assert.False(t, ok)

	buf.MarkDirty()
	_, ok = buf.StagedWrite()
	assert.True(t, ok)

	_, ok = NewInstanceBuffer(0, nil, 0).StagedWrite()
	assert.False(t, ok)
}

func TestGPUInstanceDataSize(t *testing.T) {
	t.Parallel()

	g := GPUInstanceData{Transform: mgl32.Ident4()}

	assert.Equal(t, 64, g.Size())
	assert.Len(t, g.Marshal(), 64)
	assert.Contains(t, GPUInstanceDataSource, "struct InstanceData")
}
