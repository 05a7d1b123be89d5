package registry

import (
	"io"

	"github.com/goccy/go-yaml"
)

// Config is the declarative, serializable form of the functional
// Options above, for hosts that describe engine configuration in a
// file rather than Go code (§10.3, §11).
type Config struct {
	MathFns        bool     `yaml:"mathfns"`
	TimeFns        bool     `yaml:"timefns"`
	StringFns      bool     `yaml:"stringfns"`
	MiscFns        bool     `yaml:"miscfns"`
	DisabledFns    []string `yaml:"disabledfns"`
	LegacyBooleans bool     `yaml:"legacybooleans"`
	MaxLines       int64    `yaml:"maxlines"`
	MaxMicros      int64    `yaml:"maxmicros"`
	IndentSpaces   int      `yaml:"indentspaces"`
}

// LoadConfigYAML decodes a Config from YAML, the way a host that keeps
// its engine settings in a file (rather than wiring WithXxx options by
// hand) would load them at startup.
func LoadConfigYAML(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options converts Config into the equivalent functional Options, so
// a host can do `registry.New(cfg.Options()...)`.
func (c Config) Options() []Option {
	var opts []Option
	if c.MathFns {
		opts = append(opts, WithMathFns())
	}
	if c.TimeFns {
		opts = append(opts, WithTimeFns())
	}
	if c.StringFns {
		opts = append(opts, WithStringFns())
	}
	if c.MiscFns {
		opts = append(opts, WithMiscFns())
	}
	if len(c.DisabledFns) > 0 {
		opts = append(opts, WithDisabledFns(c.DisabledFns...))
	}
	if c.LegacyBooleans {
		opts = append(opts, WithLegacyBooleans(true))
	}
	if c.MaxLines > 0 {
		opts = append(opts, WithMaxLines(c.MaxLines))
	}
	if c.MaxMicros > 0 {
		opts = append(opts, WithMaxMicroseconds(c.MaxMicros))
	}
	if c.IndentSpaces > 0 {
		opts = append(opts, WithIndentSpaces(c.IndentSpaces))
	}
	return opts
}
