package core

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ProductName names the cache-directory namespace under ~/.cache.
const ProductName = "kitsune-livewallpaper"

// Config is the startup configuration, the Go equivalent of
// original_source/src/startup_config.rs. It is loaded once per process
// from ~/.config/kitsune-livewallpaper/config.toml when present; any
// field left zero-valued falls back to its documented default.
type Config struct {
	CacheRootOverride string `toml:"cache_root_override"`
	StrictMode        bool   `toml:"strict_mode"`
	DefaultFrameMs    int    `toml:"default_frame_ms"`
	BakedProxySeconds int    `toml:"baked_proxy_seconds"`
	BakedProxyLayers  int    `toml:"baked_proxy_layers"`
}

func defaultConfig() Config {
	return Config{
		StrictMode:        false,
		DefaultFrameMs:    50,
		BakedProxySeconds: 20,
		BakedProxyLayers:  1,
	}
}

// LoadConfig reads the startup config file at path, overlaying it on
// defaultConfig(). A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, WrapIo("read", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, WrapIo("parse", path, err)
	}
	return cfg, nil
}

// DefaultConfigPath returns ~/.config/kitsune-livewallpaper/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", ProductName, "config.toml")
}

// CacheRoot returns ~/.cache/<product>, honoring a config override.
func CacheRoot(cfg Config) string {
	if cfg.CacheRootOverride != "" {
		return cfg.CacheRootOverride
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cache", ProductName)
}
