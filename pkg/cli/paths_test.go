package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewPaths(t *testing.T) {
	paths, err := NewPaths()
	if err != nil {
		t.Fatalf("NewPaths error: %v", err)
	}
	if paths.HomeDir == "" {
		t.Error("HomeDir should not be empty")
	}
}

func TestPaths(t *testing.T) {
	tmpDir := t.TempDir()
	paths := &Paths{HomeDir: tmpDir}

	base := filepath.Join(tmpDir, DefaultBaseDir)
	if got := paths.BaseDir(); got != base {
		t.Errorf("BaseDir() = %q, want %q", got, base)
	}
	if got := paths.ConfigFile(); got != filepath.Join(base, DefaultConfigFile) {
		t.Errorf("ConfigFile() = %q", got)
	}
	if got := paths.CatalogDir(); got != filepath.Join(base, "catalog") {
		t.Errorf("CatalogDir() = %q", got)
	}
}

func TestPaths_EnsureCatalogDir(t *testing.T) {
	paths := &Paths{HomeDir: t.TempDir()}

	if err := paths.EnsureCatalogDir(); err != nil {
		t.Fatalf("EnsureCatalogDir error: %v", err)
	}
	info, err := os.Stat(paths.CatalogDir())
	if err != nil {
		t.Fatalf("Stat error: %v", err)
	}
	if !info.IsDir() {
		t.Error("CatalogDir should be a directory")
	}
}
