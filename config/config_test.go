package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Language != "auto" {
		t.Errorf("Language = %q, want auto", cfg.Language)
	}
	if cfg.PasteStrategy != "focus" {
		t.Errorf("PasteStrategy = %q, want focus", cfg.PasteStrategy)
	}
	if cfg.UploadFormat != "wav" {
		t.Errorf("UploadFormat = %q, want wav", cfg.UploadFormat)
	}
	if !cfg.AutoPasteEnabled() {
		t.Error("AutoPasteEnabled = false by default, want true")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	off := false
	cfg := &Config{
		Language:      "en",
		PasteStrategy: "always",
		UploadFormat:  "flac",
		Device:        "USB Microphone",
		AutoPaste:     &off,
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Language != "en" || got.PasteStrategy != "always" || got.UploadFormat != "flac" {
		t.Errorf("reloaded = %+v", got)
	}
	if got.Device != "USB Microphone" {
		t.Errorf("Device = %q", got.Device)
	}
	if got.AutoPasteEnabled() {
		t.Error("AutoPasteEnabled = true, want false")
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"language": "de"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Language != "de" {
		t.Errorf("Language = %q, want de", cfg.Language)
	}
	if cfg.PasteStrategy != "focus" || cfg.UploadFormat != "wav" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestPathEnvOverride(t *testing.T) {
	t.Setenv(envConfigPath, "/tmp/custom/config.json")
	p, err := Path()
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if p != "/tmp/custom/config.json" {
		t.Errorf("Path = %q", p)
	}
}

func TestKeySourceEnvWins(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(keyFile, []byte("file-key\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(envKey, "env-key")
	src := (&Config{APIKeyFile: keyFile}).Credentials()
	if key, ok := src.APIKey(); !ok || key != "env-key" {
		t.Errorf("APIKey = %q, %v; want env-key", key, ok)
	}

	t.Setenv(envKey, "")
	if key, ok := src.APIKey(); !ok || key != "file-key" {
		t.Errorf("APIKey = %q, %v; want file-key", key, ok)
	}
}

func TestKeySourceMissing(t *testing.T) {
	t.Setenv(envKey, "")
	src := (&Config{}).Credentials()
	if _, ok := src.APIKey(); ok {
		t.Error("APIKey ok with no source")
	}

	src = (&Config{APIKeyFile: "/nonexistent/key"}).Credentials()
	if _, ok := src.APIKey(); ok {
		t.Error("APIKey ok with missing file")
	}
}
