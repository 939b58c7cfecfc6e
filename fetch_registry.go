// fetch_registry.go: the npm registry fetcher (§4.B), resolving a
// semver selector against a registry's version metadata and
// downloading the matching tarball.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nlepage/go-tarfs"
)

const defaultNpmRegistryURL = "https://registry.npmjs.org"

// npmInstallMode selects whether the registry fetcher's resolve prefers
// an already-installed version over the registry's newest match (§4.B).
// Either way resolve reads the registry's metadata document; skipping
// the network for an installed version is done by the acquisition
// pipeline, which does not call the fetcher at all for a top-level
// install that is neither forced nor no-cache, or for any dependency,
// when a satisfying version is installed.
type npmInstallMode string

const (
	// NpmUseCache resolves to a .versions/ entry that already satisfies
	// the selector, still confirming that version against the registry's
	// metadata document.
	NpmUseCache npmInstallMode = "useCache"

	// NpmNoCache resolves the selector against the registry's version
	// list even when a satisfying version is installed. The mode is only
	// seen by the fetcher: the acquisition pipeline still returns an
	// installed satisfying top-level plugin without calling the fetcher
	// unless InstallOptions.Force or NoCache is set, always reuses an
	// installed satisfying dependency, and does not re-download an
	// existing .versions/ slot unless Force or NoCache is set.
	NpmNoCache npmInstallMode = "noCache"
)

// registryFetcher resolves names against an npm-style registry's
// abbreviated metadata document and downloads version tarballs.
type registryFetcher struct {
	registryURL string
	client      *http.Client
	mode        npmInstallMode
	installed   func(name string) []string
	logger      Logger
}

func newRegistryFetcher(registryURL string, mode npmInstallMode, installed func(name string) []string, logger Logger) *registryFetcher {
	if registryURL == "" {
		registryURL = defaultNpmRegistryURL
	}
	return &registryFetcher{
		registryURL: strings.TrimRight(registryURL, "/"),
		client:      &http.Client{Timeout: 30 * time.Second},
		mode:        mode,
		installed:   installed,
		logger:      logger,
	}
}

// registryDoc is the subset of the registry's package metadata document
// this fetcher needs: per-version manifest fields, keyed by version
// string, plus the tarball URL under dist.
type registryDoc struct {
	Versions map[string]struct {
		Name                string            `json:"name"`
		Version             string            `json:"version"`
		Main                string            `json:"main"`
		Dependencies        map[string]string `json:"dependencies"`
		OptionalDependencies map[string]string `json:"optionalDependencies"`
		Dist                struct {
			Tarball string `json:"tarball"`
		} `json:"dist"`
	} `json:"versions"`
}

func (f *registryFetcher) resolve(ctx context.Context, name, selector string) (*PackageManifest, error) {
	if f.mode == NpmUseCache && f.installed != nil {
		if v, ok := findSatisfying(f.installed(name), selector); ok {
			f.logger.Debug("registry fetcher reusing cached version", "name", name, "version", v)
			return f.manifestFromRegistry(ctx, name, v)
		}
	}
	return f.manifestFromSelector(ctx, name, selector)
}

func (f *registryFetcher) manifestFromSelector(ctx context.Context, name, selector string) (*PackageManifest, error) {
	doc, err := f.fetchDoc(ctx, name)
	if err != nil {
		return nil, NewFetchFailedError(SourceRegistry, name, err)
	}

	versions := make([]string, 0, len(doc.Versions))
	for v := range doc.Versions {
		versions = append(versions, v)
	}
	match, ok := findSatisfying(versions, selector)
	if !ok {
		return nil, NewNotFoundError(name, selector, nil)
	}
	return f.toManifest(doc, match), nil
}

func (f *registryFetcher) manifestFromRegistry(ctx context.Context, name, version string) (*PackageManifest, error) {
	doc, err := f.fetchDoc(ctx, name)
	if err != nil {
		return nil, NewFetchFailedError(SourceRegistry, name, err)
	}
	if _, ok := doc.Versions[version]; !ok {
		return nil, NewNotFoundError(name, version, nil)
	}
	return f.toManifest(doc, version), nil
}

func (f *registryFetcher) toManifest(doc *registryDoc, version string) *PackageManifest {
	entry := doc.Versions[version]
	return &PackageManifest{
		Name:                 entry.Name,
		Version:              entry.Version,
		Main:                 entry.Main,
		Dependencies:         entry.Dependencies,
		OptionalDependencies: entry.OptionalDependencies,
		Source:               SourceRegistry,
	}
}

func (f *registryFetcher) fetchDoc(ctx context.Context, name string) (*registryDoc, error) {
	url := fmt.Sprintf("%s/%s", f.registryURL, strings.ReplaceAll(name, "/", "%2f"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.npm.install-v1+json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d for %s", resp.StatusCode, name)
	}

	var doc registryDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// download fetches the version's tarball and extracts it into destDir,
// stripping the single top-level "package/" directory npm tarballs
// conventionally wrap their contents in.
func (f *registryFetcher) download(ctx context.Context, manifest *PackageManifest, destDir string) error {
	url, err := f.tarballURL(ctx, manifest)
	if err != nil {
		return NewFetchFailedError(SourceRegistry, manifest.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewFetchFailedError(SourceRegistry, manifest.Name, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return NewFetchFailedError(SourceRegistry, manifest.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewFetchFailedError(SourceRegistry, manifest.Name, fmt.Errorf("tarball fetch status %d", resp.StatusCode))
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return NewFetchFailedError(SourceRegistry, manifest.Name, err)
	}
	defer gz.Close()

	tfs, err := tarfs.New(gz)
	if err != nil {
		return NewFetchFailedError(SourceRegistry, manifest.Name, err)
	}
	return extractTarFS(tfs, destDir, "package")
}

func (f *registryFetcher) tarballURL(ctx context.Context, manifest *PackageManifest) (string, error) {
	doc, err := f.fetchDoc(ctx, manifest.Name)
	if err != nil {
		return "", err
	}
	entry, ok := doc.Versions[manifest.Version]
	if !ok {
		return "", fmt.Errorf("version %s no longer present for %s", manifest.Version, manifest.Name)
	}
	return entry.Dist.Tarball, nil
}

// extractTarFS copies every regular file out of tfs into destDir,
// stripping a single conventional top-level directory such as npm's
// "package/" wrapper when present.
func extractTarFS(tfs fs.FS, destDir, stripPrefix string) error {
	return fs.WalkDir(tfs, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		rel := strings.TrimPrefix(path, stripPrefix+"/")
		if rel == "" || rel == stripPrefix {
			return nil
		}
		target := filepath.Join(destDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		src, err := tfs.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		defer out.Close()

		_, err = io.Copy(out, src)
		return err
	})
}
