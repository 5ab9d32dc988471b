package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spaghettifunk/anima-buffers/engine/core"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/instancing"
	"github.com/spaghettifunk/anima-buffers/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "null", cfg.Renderer.Backend)
	assert.Equal(t, 2, cfg.Assets.ImportWorkers)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, core.InfoLevel, level)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
log_level = "debug"

[assets]
dir = "assets"
watch = true
layouts = ["assets/terrain.layout.toml"]

[[instancing]]
name = "props"
variant = "tangent"
base_vertex_type = "tangents"

[testbed]
frames = 10
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "null", cfg.Renderer.Backend, "untouched keys keep defaults")
	assert.True(t, cfg.Assets.Watch)
	assert.Equal(t, []string{"assets/terrain.layout.toml"}, cfg.Assets.Layouts)
	assert.Equal(t, 10, cfg.Testbed.Frames)
	assert.Equal(t, 16, cfg.Testbed.GridSize)

	require.Len(t, cfg.Instancing, 1)
	r, err := cfg.Instancing[0].Resolve()
	require.NoError(t, err)
	assert.Equal(t, instancing.TangentInstancing{}, r.Variant)
	assert.Equal(t, metadata.VertexTypeTangents, r.BaseType)
}

func TestDecodeRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"unknown key":     `colour = "red"`,
		"bad level":       `log_level = "loud"`,
		"empty backend":   "[renderer]\nbackend = \"\"",
		"bad queue":       "[renderer]\nupload_queue_size = 0",
		"unknown variant": "[[instancing]]\nname = \"x\"\nvariant = \"fancy\"\nbase_vertex_type = \"standard\"",
		"unknown type":    "[[instancing]]\nname = \"x\"\nvariant = \"standard\"\nbase_vertex_type = \"quad\"",
		"repeated name":   "[[instancing]]\nname = \"x\"\nvariant = \"standard\"\nbase_vertex_type = \"standard\"\n[[instancing]]\nname = \"x\"\nvariant = \"standard\"\nbase_vertex_type = \"standard\"",
		"negative frames": "[testbed]\nframes = -1",
		"no workers":      "[assets]\nimport_workers = 0",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	_, err := Decode(strings.NewReader(`log_level = "loud"`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(`name = "demo"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
