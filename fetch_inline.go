// fetch_inline.go: installFromCode's fetcher (§4.B), fabricating a
// manifest for a caller-supplied source string rather than resolving
// one from an external source.
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

const defaultInlineVersion = "0.0.0"

// inlineFetcher fabricates a single-file package out of a code string
// handed to installFromCode. Its resolve step never touches the
// network: name and code are all it needs.
type inlineFetcher struct {
	code string
}

func newInlineFetcher(code string) *inlineFetcher {
	return &inlineFetcher{code: code}
}

// resolve builds a manifest with the caller's requested version, or
// "0.0.0" when none was given. A default version has no prior install
// to compare against, so the acquisition pipeline always forces this
// kind of install (§4.B).
func (f *inlineFetcher) resolve(ctx context.Context, name, selector string) (*PackageManifest, error) {
	version := selector
	if version == "" {
		version = defaultInlineVersion
	}
	return &PackageManifest{
		Name:    name,
		Version: version,
		Main:    "index.js",
		Source:  SourceInline,
	}, nil
}

func (f *inlineFetcher) download(ctx context.Context, manifest *PackageManifest, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return NewFetchFailedError(SourceInline, manifest.Name, err)
	}
	pkg, err := json.Marshal(manifest)
	if err != nil {
		return NewFetchFailedError(SourceInline, manifest.Name, err)
	}
	if err := os.WriteFile(filepath.Join(destDir, "package.json"), pkg, 0o644); err != nil {
		return NewFetchFailedError(SourceInline, manifest.Name, err)
	}
	return os.WriteFile(filepath.Join(destDir, manifest.mainOrDefault()), []byte(f.code), 0o644)
}

// isDefaultVersion reports whether version is the fallback inline
// fetcher produces when the caller didn't request a specific one; the
// acquisition pipeline forces the install on the same comparison
// against defaultInlineVersion (§4.B).
func isDefaultVersion(version string) bool {
	return version == defaultInlineVersion
}
