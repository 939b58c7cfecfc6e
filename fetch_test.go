// fetch_test.go
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"context"
	"testing"
)

func TestParseGitRef(t *testing.T) {
	cases := []struct {
		selector string
		want     gitRef
		wantErr  bool
	}{
		{"expressjs/express", gitRef{Owner: "expressjs", Repo: "express"}, false},
		{"expressjs/express#4.18.2", gitRef{Owner: "expressjs", Repo: "express", Ref: "4.18.2"}, false},
		{"expressjs/express#a1b2c3d", gitRef{Owner: "expressjs", Repo: "express", Ref: "a1b2c3d"}, false},
		{"not-a-valid-selector", gitRef{}, true},
		{"/missing-owner", gitRef{}, true},
	}
	for _, tc := range cases {
		got, err := parseGitRef(tc.selector)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseGitRef(%q): expected error, got %+v", tc.selector, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseGitRef(%q): unexpected error: %v", tc.selector, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseGitRef(%q) = %+v, want %+v", tc.selector, got, tc.want)
		}
	}
}

func TestGitRef_IsCommit(t *testing.T) {
	if ref, _ := parseGitRef("o/r#4.18.2"); ref.isCommit() {
		t.Error("semver tag should not be treated as a commit hash")
	}
	if ref, _ := parseGitRef("o/r#a1b2c3d"); !ref.isCommit() {
		t.Error("7-hex-digit ref should be treated as a commit hash")
	}
	if ref, _ := parseGitRef("o/r"); ref.isCommit() {
		t.Error("empty ref (HEAD) should not be treated as a commit hash")
	}
}

func TestInlineFetcher_ResolveDefaultsVersion(t *testing.T) {
	f := newInlineFetcher("module.exports = 42")

	manifest, err := f.resolve(context.Background(), "scratch", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if manifest.Version != defaultInlineVersion {
		t.Fatalf("expected default version %q, got %q", defaultInlineVersion, manifest.Version)
	}
	if !isDefaultVersion(manifest.Version) {
		t.Fatal("expected isDefaultVersion to report true for the fallback version")
	}
}

func TestInlineFetcher_ResolveHonoursExplicitVersion(t *testing.T) {
	f := newInlineFetcher("module.exports = 1")

	manifest, err := f.resolve(context.Background(), "scratch", "1.2.3")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if manifest.Version != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %q", manifest.Version)
	}
	if isDefaultVersion(manifest.Version) {
		t.Fatal("explicit version must not be treated as the default")
	}
}

func TestInlineFetcher_Download(t *testing.T) {
	dir := t.TempDir()
	f := newInlineFetcher("module.exports = { ok: true }")
	manifest := &PackageManifest{Name: "scratch", Version: "0.0.0", Main: "index.js"}

	if err := f.download(context.Background(), manifest, dir); err != nil {
		t.Fatalf("download: %v", err)
	}
}

func TestLocalFetcher_ResolveMissingManifest(t *testing.T) {
	f := newLocalFetcher()
	if _, err := f.resolve(context.Background(), "missing", t.TempDir()); err == nil {
		t.Fatal("expected error resolving a directory without package.json")
	}
}
