package config

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a Go duration string, such as
// "250ms", in YAML and on the command line.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.Set(s)
}

// Set implements flag.Value. An empty string leaves d unchanged.
func (d *Duration) Set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Color is a linear RGBA color with components in [0, 1]. It is written
// as an SVG color name ("red", "cornflowerblue") or as #rrggbb[aa].
type Color mgl32.Vec4

// ParseColor parses a color name or hex string.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return fromRGBA(c), nil
	}
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("unknown color %q", s)
	}
	b, err := hex.DecodeString(s[1:])
	if err != nil || (len(b) != 3 && len(b) != 4) {
		return Color{}, fmt.Errorf("invalid color %q, want #rrggbb or #rrggbbaa", s)
	}
	c := color.RGBA{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		c.A = b[3]
	}
	return fromRGBA(c), nil
}

func fromRGBA(c color.RGBA) Color {
	return Color{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return c.Set(s)
}

// Set implements flag.Value.
func (c *Color) Set(s string) error {
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// String formats c as #rrggbbaa.
func (c Color) String() string {
	var b [4]byte
	for i, v := range c {
		b[i] = uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
	}
	return "#" + hex.EncodeToString(b[:])
}

func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4(c)
}
