package cli

import (
	"os"
	"path/filepath"
)

const (
	// DefaultBaseDir is the per-user directory name under $HOME.
	DefaultBaseDir = ".pronounce"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Paths locates the per-user pronounce directories.
type Paths struct {
	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths resolves the user's home directory.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns ~/.pronounce.
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns ~/.pronounce/config.yaml.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// CatalogDir returns ~/.pronounce/catalog, the default catalog store.
func (p *Paths) CatalogDir() string {
	return filepath.Join(p.BaseDir(), "catalog")
}

// EnsureCatalogDir creates the catalog directory if it doesn't exist
func (p *Paths) EnsureCatalogDir() error {
	return os.MkdirAll(p.CatalogDir(), 0755)
}
