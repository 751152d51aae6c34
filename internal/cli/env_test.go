package cli

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func writeEnvFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}

func TestEnvLoader_LoadsRequestedFile(t *testing.T) {
	t.Setenv(EnvOverrideVar, "")
	t.Setenv("STAYLENS_TEST_VALUE", "from-process")

	path := writeEnvFile(t, "test.env", "STAYLENS_TEST_VALUE=from-file\n")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, "", "")
	if err := fs.Parse([]string{"--env", path}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	loaded, err := loader.Load()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if loaded != path {
		t.Fatalf("unexpected loaded path: %q", loaded)
	}
	if got := os.Getenv("STAYLENS_TEST_VALUE"); got != "from-file" {
		t.Fatalf("expected file to override the process value, got %q", got)
	}
}

func TestEnvLoader_OverrideVariableWins(t *testing.T) {
	t.Setenv("STAYLENS_TEST_VALUE", "")

	override := writeEnvFile(t, "override.env", "STAYLENS_TEST_VALUE=override\n")
	requested := writeEnvFile(t, "requested.env", "STAYLENS_TEST_VALUE=requested\n")
	t.Setenv(EnvOverrideVar, override)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, ".env", "")
	if err := fs.Parse([]string{"--env", requested}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if loaded, err := loader.Load(); err != nil || loaded != override {
		t.Fatalf("expected override file, got %q %v", loaded, err)
	}
	if got := os.Getenv("STAYLENS_TEST_VALUE"); got != "override" {
		t.Fatalf("expected override value, got %q", got)
	}
}

func TestEnvLoader_FallsBackToDefault(t *testing.T) {
	t.Setenv(EnvOverrideVar, filepath.Join(t.TempDir(), "gone.env"))
	t.Setenv("STAYLENS_TEST_VALUE", "")

	fallback := writeEnvFile(t, "default.env", "STAYLENS_TEST_VALUE=default\n")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, fallback, "")
	if err := fs.Parse([]string{"--env", filepath.Join(t.TempDir(), "missing.env")}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if loaded, err := loader.Load(); err != nil || loaded != fallback {
		t.Fatalf("expected default file, got %q %v", loaded, err)
	}
}

func TestEnvLoader_MissingFileFails(t *testing.T) {
	t.Setenv(EnvOverrideVar, "")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	loader := AddEnvFlag(fs, filepath.Join(t.TempDir(), "missing.env"), "")
	if _, err := loader.Load(); !errors.Is(err, ErrEnvFileNotFound) {
		t.Fatalf("expected ErrEnvFileNotFound, got %v", err)
	}

	var nilLoader *EnvLoader
	if _, err := nilLoader.Load(); err == nil {
		t.Fatalf("expected nil loader to fail")
	}
}
