// types.go: core data model shared across the acquisition pipeline, the
// version manager and the module loader.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import "time"

// SourceKind identifies which fetcher resolved and downloaded a package.
type SourceKind string

const (
	SourceRegistry  SourceKind = "npm"
	SourceGitHub    SourceKind = "github"
	SourceBitbucket SourceKind = "bitbucket"
	SourcePath      SourceKind = "path"
	SourceInline    SourceKind = "inline"
)

// PackageManifest is the metadata read from a package's package.json.
// Immutable once parsed: a PackageManifest is never mutated after the
// fetcher that produced it returns.
type PackageManifest struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Main                 string            `json:"main"`
	Dependencies         map[string]string `json:"dependencies,omitempty"`
	OptionalDependencies map[string]string `json:"optionalDependencies,omitempty"`

	// Source records where this manifest was resolved from, so the
	// acquisition pipeline knows which fetcher to hand the manifest
	// back to for download.
	Source SourceKind `json:"-"`

	// SourceRef carries the fetcher-specific locator resolve used to
	// produce this manifest (an "owner/repo[#ref]" string for git
	// hosts, a filesystem path for local installs) so download can
	// reconstruct it without re-deriving it from Name or Version.
	SourceRef string `json:"-"`
}

// mainOrDefault returns Main, defaulting to "index.js" per spec.
func (m *PackageManifest) mainOrDefault() string {
	if m.Main == "" {
		return "index.js"
	}
	return m.Main
}

// PluginInfo describes a single installed (name, version) pair and the
// resolved view of its dependencies, as handed to the module loader.
type PluginInfo struct {
	Name     string
	Version  string
	MainFile string // absolute path to the resolved entry file
	Location string // absolute path to the package's directory

	// Dependencies is the flattened name->version map the loader
	// honours when resolving bare require() specifiers from within
	// this plugin.
	Dependencies map[string]string

	// DependencyDetails holds the exact manifest each dependency name
	// was linked to at install time.
	DependencyDetails map[string]*PackageManifest

	InstalledAt time.Time
}

// DependencySelector is the source-specific request form of a
// dependency before resolution: a semver range for the registry, an
// "owner/repo[#ref]" string for git hosts, a filesystem path, or an
// inline source body.
type DependencySelector = string

// InstallOptions controls a single install operation.
type InstallOptions struct {
	// Force bypasses the "already installed" short-circuit and the
	// registry fetcher's cache.
	Force bool

	// NoCache forces the registry fetcher to resolve against the
	// network even if a satisfying version is already in .versions/.
	NoCache bool

	// Version is the caller-supplied version for installFromCode;
	// defaults to "0.0.0" and implies Force.
	Version string
}

// AlreadyInstalledMode controls how alreadyInstalled interprets a
// selector against the set of installed versions of a name.
type AlreadyInstalledMode string

const (
	// ModeSatisfies requires some installed version to satisfy the
	// selector under normal semver range semantics.
	ModeSatisfies AlreadyInstalledMode = "satisfies"

	// ModeSatisfiesOrGreater additionally accepts any installed
	// version greater than or equal to the selector's minimum.
	ModeSatisfiesOrGreater AlreadyInstalledMode = "satisfiesOrGreater"
)
