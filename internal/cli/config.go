package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/phanxgames/atlaspack"
)

// Config is the contents of atlaspack.toml.
//
//	[page]
//	width = 256
//	height = 256
//	max_width = 2048
//	max_height = 2048
//	pow2 = true
//
//	[sheet]
//	padding = 1
//	trim = true
//
//	[output]
//	dir = "build/atlas"
//	name = "sprites"
type Config struct {
	Page   PageConfig   `toml:"page"`
	Sheet  SheetConfig  `toml:"sheet"`
	Output OutputConfig `toml:"output"`

	// Path is the file the config was read from, or "" for defaults.
	Path string `toml:"-"`
}

// PageConfig mirrors atlaspack.Options.
type PageConfig struct {
	Width     int  `toml:"width"`
	Height    int  `toml:"height"`
	MaxWidth  int  `toml:"max_width"`
	MaxHeight int  `toml:"max_height"`
	Pow2      bool `toml:"pow2"`
}

// SheetConfig holds the sheet-only build options.
type SheetConfig struct {
	Padding int  `toml:"padding"`
	Trim    bool `toml:"trim"`
}

// OutputConfig names where pack writes its files.
type OutputConfig struct {
	Dir  string `toml:"dir"`
	Name string `toml:"name"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	opts := atlaspack.DefaultBuildOptions()
	return Config{
		Page: PageConfig{
			Width:     opts.Width,
			Height:    opts.Height,
			MaxWidth:  opts.MaxWidth,
			MaxHeight: opts.MaxHeight,
			Pow2:      opts.Pow2,
		},
		Sheet:  SheetConfig{Padding: opts.Padding, Trim: opts.Trim},
		Output: OutputConfig{Dir: ".", Name: "atlas"},
	}
}

// LoadConfig reads path on top of DefaultConfig. A missing file is an error
// only when required is set. Unknown keys are rejected so typos surface.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.BuildOptions().Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// BuildOptions converts the config into library options.
func (c Config) BuildOptions() atlaspack.BuildOptions {
	return atlaspack.BuildOptions{
		Options: atlaspack.Options{
			Width:     c.Page.Width,
			Height:    c.Page.Height,
			MaxWidth:  c.Page.MaxWidth,
			MaxHeight: c.Page.MaxHeight,
			Pow2:      c.Page.Pow2,
		},
		Padding: c.Sheet.Padding,
		Trim:    c.Sheet.Trim,
	}
}
