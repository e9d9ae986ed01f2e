package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 768, c.Width)
	assert.Equal(t, 768, c.Height)
	assert.Equal(t, "hex.vert", c.VertexShader)
	assert.Equal(t, "hex.frag", c.FragmentShader)

	opts := c.Options()
	assert.Equal(t, time.Duration(0), opts.AcquireTimeout)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, opts.ClearColor)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, opts.FillColor)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"red", Color{1, 0, 0, 1}},
		{" Black ", Color{0, 0, 0, 1}},
		{"#ffffff", Color{1, 1, 1, 1}},
		{"#00ff0000", Color{0, 1, 0, 0}},
		{"#FF0000", Color{1, 0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "notacolor", "#fff", "#gggggg", "#0000000000"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "#ff0000ff", Color{1, 0, 0, 1}.String())
	assert.Equal(t, "#00000000", Color{-1, 0, 0, 0}.String())

	c, err := ParseColor(Color{0, 0.5, 1, 1}.String())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, c[1], 1.0/255)
}

func TestDecode(t *testing.T) {
	c := Default()
	err := c.Decode([]byte(`
width: 1024
fill_color: cornflowerblue
acquire_timeout: 2s
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, 1024, c.Width)
	assert.Equal(t, 768, c.Height, "absent keys keep their value")
	assert.Equal(t, 2*time.Second, c.AcquireTimeout.Duration())
	assert.InDelta(t, 100.0/255, c.FillColor[0], 1e-6)

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	require.NoError(t, c.Decode(nil))

	assert.Error(t, c.Decode([]byte("widht: 3\n")), "unknown keys are rejected")
	assert.Error(t, c.Decode([]byte("acquire_timeout: soon\n")))
	assert.Error(t, c.Decode([]byte("clear_color: [1, 2]\n")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"timeout", func(c *Config) { c.AcquireTimeout = Duration(-time.Second) }},
		{"backoff", func(c *Config) { c.MinimizedBackoff = Duration(-time.Second) }},
		{"shader", func(c *Config) { c.FragmentShader = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("hexthing", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	c, err = Parse("hexthing", []string{"-width", "640", "-fill-color", "#00ff00", "-acquire-timeout", "1s"})
	require.NoError(t, err)
	assert.Equal(t, 640, c.Width)
	assert.Equal(t, Color{0, 1, 0, 1}, c.FillColor)
	assert.Equal(t, time.Second, c.AcquireTimeout.Duration())

	_, err = Parse("hexthing", []string{"-height", "0"})
	assert.Error(t, err)
	_, err = Parse("hexthing", []string{"-clear-color", "nope"})
	assert.Error(t, err)
}

func TestParseFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hexthing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 300\nheight: 200\ntitle: file\n"), 0o600))

	c, err := Parse("hexthing", []string{"-config", path, "-width", "400"})
	require.NoError(t, err)
	assert.Equal(t, 400, c.Width, "flags win over the file")
	assert.Equal(t, 200, c.Height)
	assert.Equal(t, "file", c.Title)

	_, err = Parse("hexthing", []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
