package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreProcessorProcess(t *testing.T) {
	t.Parallel()

	// Arrange
	src := strings.Join([]string{
		"//@oxy:include camera",
		"//@oxy:include camera",
		"//@oxy:include instance",
		"//@oxy:group 0 0 storage_uniform camera camera",
		"//@oxy:group 2 1 storage_read instances array<instance>",
		"//@oxy:provider 1 1 material env_map",
		"@group(1) @binding(1) var envMap: texture_2d<f32>;",
	}, "\n")
	pp := NewPreProcessor()

	// Act
	out, err := pp.Process(src)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "struct CameraUniform"), "includes are de-duplicated")
	assert.Contains(t, out, "struct InstanceData")
	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> camera: CameraUniform;")
	assert.Contains(t, out, "@group(2) @binding(1) var<storage, read> instances: array<InstanceData>;")
	assert.Contains(t, out, "var envMap: texture_2d<f32>;")
	assert.NotContains(t, out, "@oxy:")

	decls := pp.Declarations()
	require.Len(t, decls, 3)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[1].Type)
	assert.Equal(t, AnnotationTypeProvider, decls[2].Type)
	assert.Equal(t, 1, *decls[2].Group)
}

func TestPreProcessorResetsDeclarations(t *testing.T) {
	t.Parallel()

	pp := NewPreProcessor()
	_, err := pp.Process("//@oxy:provider 3 2 lighting env_map")
	require.NoError(t, err)
	require.Len(t, pp.Declarations(), 1)

	_, err = pp.Process("fn noop() {}")
	require.NoError(t, err)
	assert.Empty(t, pp.Declarations())
}

func TestPreProcessorPropagatesErrors(t *testing.T) {
	t.Parallel()

	_, err := NewPreProcessor().Process("fn a() {}\n//@oxy:include skinned_vertex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
