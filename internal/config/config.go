// SPDX-License-Identifier: Apache-2.0

// Package config loads the optional .mirrordna.yaml project file. Command-line flags
// override every value read here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/MirrorDNA-Reflection-Protocol/MirrorDNA-Standard/internal/tier"
)

// FileName is the project configuration file looked up by Discover.
const FileName = ".mirrordna.yaml"

// Front-matter parsing modes.
const (
	FrontMatterAuto   = "auto"
	FrontMatterScalar = "scalar"
)

// Config holds validator settings.
type Config struct {
	Tier            string   `yaml:"tier"`
	StrictTier      bool     `yaml:"strict_tier"`
	VerifyDigest    bool     `yaml:"verify_digest"`
	Include         []string `yaml:"include"`
	Exclude         []string `yaml:"exclude"`
	Workers         int      `yaml:"workers"`
	SidecarPatterns []string `yaml:"sidecar_patterns"`
	FrontMatter     string   `yaml:"front_matter"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Tier:            "L1",
		Include:         []string{"*.md", "*.txt"},
		Exclude:         []string{".git/**"},
		Workers:         1,
		SidecarPatterns: []string{"**/*.json"},
		FrontMatter:     FrontMatterAuto,
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads FileName from dir when it exists. The returned path is empty when
// the defaults were used.
func Discover(dir string) (Config, string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), "", nil
		}
		return Default(), "", fmt.Errorf("config: stat %s: %w", path, err)
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := tier.Parse(c.Tier); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.FrontMatter {
	case FrontMatterAuto, FrontMatterScalar:
	default:
		return fmt.Errorf("front_matter must be %q or %q, got %q", FrontMatterAuto, FrontMatterScalar, c.FrontMatter)
	}
	return nil
}

// TierMode maps StrictTier to a checker mode.
func (c Config) TierMode() tier.Mode {
	if c.StrictTier {
		return tier.Strict
	}
	return tier.Permissive
}
