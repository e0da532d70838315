package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-refract/config"
	"github.com/Carmen-Shannon/oxy-refract/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{name: "toml", format: "toml", want: "present_mode = 'vsync'"},
		{name: "yaml", format: "YAML", want: "present_mode: vsync"},
		{name: "hcl", format: "hcl", want: `light "key" {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			err := run(&out, []string{"-print-config", tt.format, "-seed", "9"})

			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.want)

			cfg, err := config.Parse(out.Bytes(), "printed."+tt.name)
			require.NoError(t, err)
			assert.Equal(t, int64(9), cfg.Scene.Seed)
		})
	}
}

func TestPrintConfigFromFile(t *testing.T) {
	t.Parallel()

	// Arrange
	path := filepath.Join(t.TempDir(), "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scene]\ninstances = 12\n"), 0o644))

	// Act
	var out bytes.Buffer
	err := run(&out, []string{"-config", path, "-print-config", "yaml"})

	// Assert
	require.NoError(t, err)
	cfg, err := config.Parse(out.Bytes(), "printed.yaml")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Scene.Instances)
	assert.Len(t, cfg.Lights, 3)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("camera:\n  fov: 200\n"), 0o644))

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{name: "unknown flag", args: []string{"-fullscreen"}},
		{name: "help", args: []string{"-h"}, target: flag.ErrHelp},
		{name: "stray argument", args: []string{"demo.hcl"}},
		{name: "missing config", args: []string{"-config", filepath.Join(dir, "missing.hcl")}},
		{name: "invalid config", args: []string{"-config", invalid}, target: config.ErrInvalid},
		{name: "unsupported format", args: []string{"-print-config", "json"}, target: config.ErrUnsupportedFormat},
		{name: "watch without config", args: []string{"-watch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := run(&bytes.Buffer{}, tt.args)

			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestPresentMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, renderer.PresentModeUncapped, presentMode("Uncapped"))
	assert.Equal(t, renderer.PresentModeVSync, presentMode("vsync"))
	assert.Equal(t, renderer.PresentModeVSync, presentMode(""))
}

func TestRendererOptions(t *testing.T) {
	t.Parallel()

	opts := rendererOptions(config.Default(), true)

	assert.Len(t, opts, 4)
}
