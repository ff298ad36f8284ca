package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// config is the effective CLI configuration: defaults, then the TOML file,
// then explicitly set flags.
type config struct {
	Language string
	FailFast bool
	LogLevel zerolog.Level
	Format   string // "text" or "json"
}

type fileConfig struct {
	Language string `toml:"language"`
	FailFast bool   `toml:"fail_fast"`
	LogLevel string `toml:"log_level"`
	Format   string `toml:"format"`
}

func defaultConfig() config {
	return config{Language: "en", LogLevel: zerolog.WarnLevel, Format: "text"}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	if und := meta.Undecoded(); len(und) > 0 {
		return config{}, fmt.Errorf("load config: unknown key %s", und[0].String())
	}
	if meta.IsDefined("language") {
		cfg.Language = strings.TrimSpace(raw.Language)
	}
	if meta.IsDefined("fail_fast") {
		cfg.FailFast = raw.FailFast
	}
	if meta.IsDefined("log_level") {
		lvl, err := zerolog.ParseLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return config{}, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.TrimSpace(raw.Format)
	}
	if err := cfg.check(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) check() error {
	switch c.Language {
	case "en", "ja":
	default:
		return fmt.Errorf("unsupported language %q", c.Language)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported format %q", c.Format)
	}
	return nil
}
