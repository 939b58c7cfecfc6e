// fetch_local.go: installFromPath's fetcher (§4.B), copying an
// existing directory on disk into the versioned store.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

// localFetcher resolves a selector that is itself a filesystem path to
// a directory containing a package.json, and copies that directory
// verbatim into the versioned store.
type localFetcher struct{}

func newLocalFetcher() *localFetcher {
	return &localFetcher{}
}

func (f *localFetcher) resolve(ctx context.Context, name, selector string) (*PackageManifest, error) {
	manifestPath := filepath.Join(selector, "package.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, NewNotFoundError(name, selector, err)
	}

	var manifest PackageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, NewFetchFailedError(SourcePath, name, err)
	}
	manifest.Source = SourcePath
	manifest.SourceRef = selector
	if manifest.Name == "" {
		manifest.Name = name
	}
	return &manifest, nil
}

func (f *localFetcher) download(ctx context.Context, manifest *PackageManifest, destDir string) error {
	if err := copyDir(manifest.SourceRef, destDir); err != nil {
		return NewFetchFailedError(SourcePath, manifest.Name, err)
	}
	return nil
}
