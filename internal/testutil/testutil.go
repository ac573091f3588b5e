// Package testutil provides testing utilities for isolated test environments.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leefowlercu/docexport/internal/config"
)

// TestEnv provides an isolated test environment with its own config and
// documents directories.
type TestEnv struct {
	t            *testing.T
	ConfigDir    string
	DocumentsDir string
}

// NewTestEnv creates an isolated test environment.
// Paths are overridden through environment variables, so the environment is
// isolated even when tests run in parallel across packages.
// Cleanup is automatic via t.Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	docsDir := filepath.Join(root, "documents")
	for _, dir := range []string{configDir, docsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create test dir %s: %v", dir, err)
		}
	}

	// These env vars override viper settings via AutomaticEnv()
	t.Setenv("HOME", root)
	t.Setenv("DOCEXPORT_CONFIG_DIR", configDir)
	t.Setenv("DOCEXPORT_DOCUMENTS_DIR", docsDir)
	t.Setenv("DOCEXPORT_LOG_FILE", filepath.Join(configDir, "docexport.log"))

	config.Reset()
	if err := config.Init(); err != nil {
		t.Fatalf("failed to initialize test config: %v", err)
	}

	t.Cleanup(config.Reset)

	return &TestEnv{
		t:            t,
		ConfigDir:    configDir,
		DocumentsDir: docsDir,
	}
}

// ConfigPath returns the path of the config file inside the test environment.
func (e *TestEnv) ConfigPath() string {
	return filepath.Join(e.ConfigDir, "config.yaml")
}

// WriteConfig writes content as the environment's config file and reloads
// the configuration.
func (e *TestEnv) WriteConfig(content string) {
	e.t.Helper()

	if err := os.WriteFile(e.ConfigPath(), []byte(content), 0600); err != nil {
		e.t.Fatalf("failed to write config: %v", err)
	}

	config.Reset()
	if err := config.Init(); err != nil {
		e.t.Fatalf("failed to reload test config: %v", err)
	}
}

// CreateDocument creates a document directory holding one CSV file per table.
// Returns the absolute path to the document directory.
func (e *TestEnv) CreateDocument(name string, tables map[string]string) string {
	e.t.Helper()

	dir := filepath.Join(e.DocumentsDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		e.t.Fatalf("failed to create document %s: %v", name, err)
	}

	for table, content := range tables {
		path := filepath.Join(dir, table+".csv")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			e.t.Fatalf("failed to create table file %s: %v", path, err)
		}
	}

	return dir
}
