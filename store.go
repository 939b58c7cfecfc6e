// store.go: the on-disk versioned store — the active view under
// pluginsPath and the canonical copies under pluginsPath/.versions.
// Directory copy/remove are filesystem primitives the specification
// names as out-of-scope plumbing (§1), so this file leans on the
// standard library rather than a third-party filesystem package.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const versionsDirName = ".versions"

// store is the directory layout described in spec.md §6: an active
// view (one directory per name, mirroring the currently selected
// version) and a versioned view (every installed (name, version),
// canonical).
type store struct {
	pluginsPath  string
	versionsPath string
}

func newStore(pluginsPath, versionsPath string) *store {
	return &store{pluginsPath: pluginsPath, versionsPath: versionsPath}
}

// splitScope splits a package name into its scope directory ("" or
// "@scope") and base name, mirroring how scoped names expand to
// @scope/<name> on disk (§3).
func splitScope(name string) (scopeDir, base string) {
	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return "", name
}

// versionDir returns the canonical directory for (name, version)
// under .versions/.
func (s *store) versionDir(name, version string) string {
	return filepath.Join(s.versionsPath, versionDirName(name, version))
}

// activeDir returns the active-view directory for name.
func (s *store) activeDir(name string) string {
	return filepath.Join(s.pluginsPath, name)
}

// hasVersion reports whether (name, version) already exists in
// .versions/, the check behind the registry fetcher's useCache mode
// and the acquisition pipeline's "already installed" short-circuit.
func (s *store) hasVersion(name, version string) bool {
	info, err := os.Stat(s.versionDir(name, version))
	return err == nil && info.IsDir()
}

// versionsOf lists the versions of name present in .versions/, in no
// particular order; callers needing the highest version should run
// the result through highestVersion.
func (s *store) versionsOf(name string) []string {
	scopeDir, base := splitScope(name)
	dir := filepath.Join(s.versionsPath, scopeDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	prefix := base + "@"
	var versions []string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		versions = append(versions, strings.TrimPrefix(e.Name(), prefix))
	}
	return versions
}

// removeVersion deletes (name, version) from .versions/. Called only
// once the version manager has confirmed the reference count is zero
// (invariant 4).
func (s *store) removeVersion(name, version string) error {
	return os.RemoveAll(s.versionDir(name, version))
}

// publishActive mirrors (name, version)'s canonical directory into the
// active view, replacing whatever was there before (invariant 1).
func (s *store) publishActive(name, version string) error {
	if err := os.RemoveAll(s.activeDir(name)); err != nil {
		return err
	}
	return copyDir(s.versionDir(name, version), s.activeDir(name))
}

// clearActive removes name's active-view directory entirely, used
// when no version of name remains installed (invariant 5).
func (s *store) clearActive(name string) error {
	return os.RemoveAll(s.activeDir(name))
}

// ensureDirs creates pluginsPath and versionsPath if they don't exist.
func (s *store) ensureDirs() error {
	if err := os.MkdirAll(s.pluginsPath, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(s.versionsPath, 0o755)
}

// copyDir recursively copies src into dst, creating dst if needed.
// Symlinked directories are not descended into; a symlink to a file is
// copied as the file it points to. Files and directories are all a
// downloaded package ever contains.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

// readManifestFile reads and parses the package.json inside dir,
// used to re-derive a dependency's manifest from its versioned store
// slot without re-fetching it from the network.
func readManifestFile(dir string) (*PackageManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, err
	}
	var manifest PackageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// removeAndRecreate empties dir (if present) and recreates it, giving
// a fetcher's download step a clean slot to write into.
func removeAndRecreate(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// copyFile copies a single regular file, preserving its mode.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
