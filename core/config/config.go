// Package config loads and saves colorprop.json.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/mod/semver"

	cperrors "github.com/opal-lang/colorprop/core/errors"
)

// FileName is the configuration file looked up next to the stylesheets.
const FileName = "colorprop.json"

// CurrentVersion is the configuration format written by Save.
const CurrentVersion = "1.0.0"

type Config struct {
	Version   string            `json:"version"`
	Themeable bool              `json:"themeable"`
	Strict    bool              `json:"strict"`
	Debug     bool              `json:"debug"`
	Output    string            `json:"output,omitempty"`
	Manifest  string            `json:"manifest,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
}

func Default() Config {
	return Config{
		Version:   CurrentVersion,
		Themeable: true,
	}
}

// Load reads path. A missing file yields Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, cperrors.Wrap(cperrors.ConfigError, err, "read %s", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		var e *cperrors.Error
		if errors.As(err, &e) {
			e.WithContext("path", path)
		}
		return Config{}, err
	}
	return cfg, nil
}

// Parse validates and decodes a configuration document. Keys left out keep
// their default values.
func Parse(data []byte) (Config, error) {
	if err := Validate(data); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
		return Config{}, cperrors.Wrap(cperrors.ConfigError, err, "decode configuration")
	}

	if major := semver.Major(canonicalVersion(cfg.Version)); major != semver.Major("v"+CurrentVersion) {
		return Config{}, cperrors.New(cperrors.ConfigError,
			"unsupported configuration version %s (want %s)", cfg.Version, semver.Major("v"+CurrentVersion))
	}
	return cfg, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg Config) error {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return cperrors.Wrap(cperrors.ConfigError, err, "encode configuration")
	}
	if err := Validate(data); err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, ".colorprop-*.json")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
