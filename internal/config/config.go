// Package config loads aiebu.toml, the project file carrying the
// tunables the core leaves undocumented plus output defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/stsoe/aiebu/internal/patchmeta"
)

// Limits carries the two bounds the loader contract leaves undocumented.
type Limits struct {
	MaxArgIndex uint32 `toml:"max_arg_index"`
	MaxArgPlus  uint64 `toml:"max_argplus"`
}

// Config is the decoded contents of aiebu.toml.
type Config struct {
	ArgOffset   uint32 `toml:"arg_offset"`
	Limits      Limits `toml:"limits"`
	OutputPath  string `toml:"output_path"`
	DefaultType string `toml:"default_buffer_type"`
}

// Default returns the tunables this build uses when no aiebu.toml is
// present: a maximum argument index of 15 and a maximum addend of
// 2^32-1, chosen since neither bound is documented by the loader this
// assembler targets.
func Default() Config {
	return Config{
		ArgOffset:  3,
		Limits:     Limits{MaxArgIndex: 15, MaxArgPlus: 1<<32 - 1},
		OutputPath: "out.elf",
	}
}

// Load decodes path, filling in Default() for any table the file omits.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("limits") {
		cfg.Limits = Default().Limits
	}
	if !meta.IsDefined("arg_offset") {
		cfg.ArgOffset = Default().ArgOffset
	}
	if strings.TrimSpace(cfg.OutputPath) == "" {
		cfg.OutputPath = Default().OutputPath
	}
	return cfg, nil
}

// PatchMetaConfig adapts Config into the bounds the metadata binder
// checks against, given the current .ctrldata size.
func (c Config) PatchMetaConfig(ctrlDataSize uint32) patchmeta.Config {
	return patchmeta.Config{
		ArgOffset:    c.ArgOffset,
		MaxArgIndex:  c.Limits.MaxArgIndex,
		MaxArgPlus:   c.Limits.MaxArgPlus,
		CtrlDataSize: ctrlDataSize,
	}
}
