// Package config holds the viewer settings. A TOML file is decoded over
// Default, so a file only needs to name the keys it changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Window WindowConfig `toml:"window"`
	Assets AssetsConfig `toml:"assets"`
	Log    LogConfig    `toml:"log"`
}

type WindowConfig struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Title      string `toml:"title"`
	VSync      bool   `toml:"vsync"`
	Fullscreen bool   `toml:"fullscreen"`
	// Samples is the MSAA sample count of the offscreen drawing buffer.
	Samples    int    `toml:"samples"`
}

type AssetsConfig struct {
	Root string `toml:"root"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:   1280,
			Height:  720,
			Title:   "Desk Scene",
			VSync:   true,
			Samples: 4,
		},
		Assets: AssetsConfig{Root: "static"},
		Log:    LogConfig{Level: "info"},
	}
}

var ErrInvalid = errors.New("invalid config")

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the file at path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Window.Samples < 0 {
		return fmt.Errorf("%w: samples %d", ErrInvalid, c.Window.Samples)
	}
	return nil
}

// Asset resolves a path relative to the asset root.
func (c Config) Asset(rel string) string {
	return filepath.Join(c.Assets.Root, filepath.FromSlash(rel))
}
