// fetch.go: the Fetcher abstraction (§4.B) — one implementation per
// source kind (npm registry, GitHub, Bitbucket, local path, inline
// code), each resolving a (name, selector) pair to a concrete
// PackageManifest and then materializing its files into a destination
// directory.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"context"
	"fmt"
	"net/http"
)

// fetcher resolves a package name and selector to a concrete manifest,
// then downloads that manifest's files into destDir. Implementations
// never write outside destDir and never mutate the version manager or
// dependency graph: that orchestration belongs to the acquisition
// pipeline (§4.C).
type fetcher interface {
	// resolve turns a name and a source-specific selector (a semver
	// range for the registry, an owner/repo[#ref] for a git host, a
	// filesystem path for local installs) into the manifest that will
	// be downloaded.
	resolve(ctx context.Context, name, selector string) (*PackageManifest, error)

	// download materializes manifest's files into destDir, which the
	// caller has already created empty.
	download(ctx context.Context, manifest *PackageManifest, destDir string) error
}

// authKind mirrors the {type: "basic"|"token", ...} shape from §6 for
// git-host credentials.
type authKind string

const (
	authNone  authKind = ""
	authBasic authKind = "basic"
	authToken authKind = "token"
)

// gitAuth carries the optional githubAuthentication / bitbucketAuthentication
// credentials from Options.
type gitAuth struct {
	Type     authKind
	Username string
	Password string
	Token    string
}

// errUnsupportedSource reports that the acquirer has no fetcher
// registered for a requested SourceKind, which should only happen if a
// PluginManager is misconfigured.
func errUnsupportedSource(source SourceKind) error {
	return fmt.Errorf("no fetcher registered for source %q", source)
}

// applyTo attaches the credential to an outgoing request, matching
// whichever auth kind was configured.
func (a gitAuth) applyTo(req *http.Request) {
	switch a.Type {
	case authBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case authToken:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
}
