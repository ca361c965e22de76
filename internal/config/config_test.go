package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "aiebu.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_FillsDefaultsForOmittedTables(t *testing.T) {
	path := writeTemp(t, `output_path = "custom.elf"`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Limits.MaxArgIndex != 15 || cfg.Limits.MaxArgPlus != 1<<32-1 {
		t.Fatalf("unexpected default limits: %+v", cfg.Limits)
	}
	if cfg.ArgOffset != 3 {
		t.Fatalf("expected default arg_offset 3, got %d", cfg.ArgOffset)
	}
	if cfg.OutputPath != "custom.elf" {
		t.Fatalf("expected explicit output_path to survive, got %q", cfg.OutputPath)
	}
}

func TestLoad_OverridesLimits(t *testing.T) {
	path := writeTemp(t, "arg_offset = 5\n\n[limits]\nmax_arg_index = 31\nmax_argplus = 1000\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ArgOffset != 5 || cfg.Limits.MaxArgIndex != 31 || cfg.Limits.MaxArgPlus != 1000 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
