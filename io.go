// FILE: itcw/config/io.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// gitEnvKeys are the keys written to git.env, in file order.
var gitEnvKeys = []Key{AppRepoRoot, AppVersion, AppBranch, AppRevision, AppRemoteOriginURL}

// GitEnv renders the KEY=VALUE lines of git.env.
func (r *Resolver) GitEnv() ([]byte, error) {
	var b strings.Builder
	for _, k := range gitEnvKeys {
		v, err := r.ValueString(k)
		if err != nil {
			return nil, fmt.Errorf("render git.env: %w", err)
		}
		fmt.Fprintf(&b, "%s=%s\n", k, v)
	}
	return []byte(b.String()), nil
}

// WriteGitEnv atomically writes git.env to path. Parent directories are created.
func (r *Resolver) WriteGitEnv(path string) error {
	data, err := r.GitEnv()
	if err != nil {
		return err
	}
	if err := atomicWriteFile(path, data); err != nil {
		return err
	}
	r.logger.Info("git.env written", "path", path)
	return nil
}

// atomicWriteFile writes data to a temporary file and renames it over path.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // no-op after a successful rename

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
