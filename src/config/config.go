// Package config holds the program settings. Values come from Default, are
// overridden by an optional YAML file and then by command-line flags.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hexthing/src/render"
)

type Config struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	// Debug enables the Vulkan validation layers.
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	// AcquireTimeout bounds each image acquisition. Zero waits forever.
	AcquireTimeout   Duration `yaml:"acquire_timeout"`
	MinimizedBackoff Duration `yaml:"minimized_backoff"`

	ClearColor Color `yaml:"clear_color"`
	FillColor  Color `yaml:"fill_color"`

	VertexShader   string `yaml:"vertex_shader"`
	FragmentShader string `yaml:"fragment_shader"`
	// ShaderDir, when set, is searched for shader sources instead of the
	// ones built into the binary.
	ShaderDir string `yaml:"shader_dir"`
}

func Default() Config {
	return Config{
		Width:            768,
		Height:           768,
		Title:            "hexthing",
		LogLevel:         "info",
		MinimizedBackoff: Duration(50 * time.Millisecond),
		ClearColor:       Color{0, 0, 0, 1},
		FillColor:        Color{1, 0, 0, 1},
		VertexShader:     "hex.vert",
		FragmentShader:   "hex.frag",
	}
}

// Decode overlays the YAML document in data onto c. Keys absent from the
// document keep their current values; unknown keys are an error.
func (c *Config) Decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.Decode(data); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// RegisterFlags binds the settings to flags of fs. Each flag's default is
// the value c holds when RegisterFlags is called.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "window width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "window height in pixels")
	fs.StringVar(&c.Title, "title", c.Title, "window title")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable validation layers")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.Var(&c.AcquireTimeout, "acquire-timeout", "image acquisition timeout, 0 waits forever")
	fs.Var(&c.MinimizedBackoff, "minimized-backoff", "event wait while the window is minimized")
	fs.Var(&c.ClearColor, "clear-color", "background color, a color name or #rrggbb[aa]")
	fs.Var(&c.FillColor, "fill-color", "hexagon color, a color name or #rrggbb[aa]")
	fs.StringVar(&c.VertexShader, "vertex-shader", c.VertexShader, "vertex shader name")
	fs.StringVar(&c.FragmentShader, "fragment-shader", c.FragmentShader, "fragment shader name")
	fs.StringVar(&c.ShaderDir, "shader-dir", c.ShaderDir, "directory with .wgsl shader sources")
}

// Parse builds a configuration from the command-line arguments. A -config
// flag names a YAML file applied before the other flags, so flags given on
// the command line win over the file.
func Parse(name string, args []string) (Config, error) {
	c := Default()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "YAML configuration file")
	c.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if *path != "" {
		if err := c.LoadFile(*path); err != nil {
			return Config{}, err
		}
		// Flags are bound to c, so parsing again reapplies them over the file.
		if err := fs.Parse(args); err != nil {
			return Config{}, err
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.AcquireTimeout < 0 {
		errs = append(errs, fmt.Errorf("acquire timeout %v is negative", c.AcquireTimeout))
	}
	if c.MinimizedBackoff < 0 {
		errs = append(errs, fmt.Errorf("minimized backoff %v is negative", c.MinimizedBackoff))
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		errs = append(errs, errors.New("shader names must not be empty"))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Options returns the frame loop settings.
func (c Config) Options() render.Options {
	return render.Options{
		ClearColor:       c.ClearColor.Vec4(),
		FillColor:        c.FillColor.Vec4(),
		AcquireTimeout:   c.AcquireTimeout.Duration(),
		MinimizedBackoff: c.MinimizedBackoff.Duration(),
	}
}
