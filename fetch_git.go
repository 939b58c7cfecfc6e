// fetch_git.go: the GitHub and Bitbucket fetchers (§4.B), sharing a
// gitHostFetcher base that knows how to parse the "owner/repo[#ref]"
// selector grammar from §6 and fetch a repository snapshot tarball.
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
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/nlepage/go-tarfs"
)

// commitHashPattern matches a bare commit SHA ref (7 or more hex
// digits), the third ref form named alongside branch and tag in §6.
var commitHashPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// gitRef is a parsed "owner/repo[#ref]" selector. An empty Ref means
// the host's default branch (HEAD).
type gitRef struct {
	Owner string
	Repo  string
	Ref   string
}

// parseGitRef parses the selector grammar from §6: owner/repo, optionally
// followed by #ref where ref is a branch name, a tag name, or a commit
// hash of at least 7 hex characters.
func parseGitRef(selector string) (gitRef, error) {
	spec, ref := selector, ""
	if idx := strings.IndexByte(selector, '#'); idx >= 0 {
		spec, ref = selector[:idx], selector[idx+1:]
	}

	parts := strings.SplitN(spec, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return gitRef{}, fmt.Errorf("selector %q is not owner/repo[#ref]", selector)
	}
	return gitRef{Owner: parts[0], Repo: parts[1], Ref: ref}, nil
}

func (r gitRef) isCommit() bool {
	return commitHashPattern.MatchString(r.Ref)
}

// gitHostFetcher is the shared implementation behind the GitHub and
// Bitbucket fetchers: both resolve to a manifest carrying the pinned
// ref and download by expanding a host-specific tarball URL template.
type gitHostFetcher struct {
	source      SourceKind
	client      *http.Client
	auth        gitAuth
	tarballURL  func(ref gitRef) string
	manifestURL func(ref gitRef) string
	logger      Logger
}

func newGitHostFetcher(source SourceKind, auth gitAuth, logger Logger, tarballURL, manifestURL func(gitRef) string) *gitHostFetcher {
	return &gitHostFetcher{
		source:      source,
		client:      &http.Client{Timeout: 30 * time.Second},
		auth:        auth,
		tarballURL:  tarballURL,
		manifestURL: manifestURL,
		logger:      logger,
	}
}

// resolve fetches package.json at the requested ref (defaulting to
// HEAD) to build the manifest; the git host itself is the source of
// truth for the dependency set, there being no separate registry
// metadata document the way there is for npm.
func (f *gitHostFetcher) resolve(ctx context.Context, name, selector string) (*PackageManifest, error) {
	ref, err := parseGitRef(selector)
	if err != nil {
		return nil, NewNotFoundError(name, selector, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.manifestURL(ref), nil)
	if err != nil {
		return nil, NewFetchFailedError(f.source, name, err)
	}
	f.auth.applyTo(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, NewFetchFailedError(f.source, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewNotFoundError(name, selector, nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewFetchFailedError(f.source, name, fmt.Errorf("manifest fetch status %d", resp.StatusCode))
	}

	var manifest PackageManifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, NewFetchFailedError(f.source, name, err)
	}
	manifest.Source = f.source
	manifest.SourceRef = selector
	if manifest.Name == "" {
		manifest.Name = name
	}
	if manifest.Version == "" {
		// Git installs are pinned by ref, not by registry version; the
		// ref itself stands in for the version so two different refs
		// of the same repo never collide in .versions/.
		manifest.Version = refVersionTag(ref)
	}
	return &manifest, nil
}

// download fetches the ref's tarball snapshot and extracts it,
// stripping the single top-level "<repo>-<ref>/" directory both
// GitHub's and Bitbucket's archive endpoints wrap contents in.
func (f *gitHostFetcher) download(ctx context.Context, manifest *PackageManifest, destDir string) error {
	ref, err := parseGitRef(manifest.SourceRef)
	if err != nil {
		return NewFetchFailedError(f.source, manifest.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.tarballURL(ref), nil)
	if err != nil {
		return NewFetchFailedError(f.source, manifest.Name, err)
	}
	f.auth.applyTo(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return NewFetchFailedError(f.source, manifest.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewFetchFailedError(f.source, manifest.Name, fmt.Errorf("tarball fetch status %d", resp.StatusCode))
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return NewFetchFailedError(f.source, manifest.Name, err)
	}
	defer gz.Close()

	tfs, err := tarfs.New(gz)
	if err != nil {
		return NewFetchFailedError(f.source, manifest.Name, err)
	}
	return extractTarFS(tfs, destDir, fmt.Sprintf("%s-%s", ref.Repo, ref.Ref))
}

// refVersionTag derives a stable version-slot string from a git ref so
// two installs of different refs of the same repo occupy distinct
// .versions/ entries rather than overwriting one another.
func refVersionTag(ref gitRef) string {
	if ref.Ref == "" {
		return "0.0.0+HEAD"
	}
	if ref.isCommit() {
		return "0.0.0+" + ref.Ref
	}
	return "0.0.0+" + strings.ReplaceAll(ref.Ref, "/", "-")
}

func newGitHubFetcher(auth gitAuth, logger Logger) *gitHostFetcher {
	return newGitHostFetcher(SourceGitHub, auth, logger,
		func(ref gitRef) string {
			at := ref.Ref
			if at == "" {
				at = "HEAD"
			}
			return fmt.Sprintf("https://api.github.com/repos/%s/%s/tarball/%s", ref.Owner, ref.Repo, at)
		},
		func(ref gitRef) string {
			at := ref.Ref
			if at == "" {
				at = "HEAD"
			}
			return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/package.json", ref.Owner, ref.Repo, at)
		},
	)
}

func newBitbucketFetcher(auth gitAuth, logger Logger) *gitHostFetcher {
	return newGitHostFetcher(SourceBitbucket, auth, logger,
		func(ref gitRef) string {
			at := ref.Ref
			if at == "" {
				at = "HEAD"
			}
			return fmt.Sprintf("https://bitbucket.org/%s/%s/get/%s.tar.gz", ref.Owner, ref.Repo, at)
		},
		func(ref gitRef) string {
			at := ref.Ref
			if at == "" {
				at = "HEAD"
			}
			return fmt.Sprintf("https://api.bitbucket.org/2.0/repositories/%s/%s/src/%s/package.json", ref.Owner, ref.Repo, at)
		},
	)
}
