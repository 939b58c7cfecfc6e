// semver.go: thin wrapper around Masterminds/semver/v3, used by the
// version manager to order installed versions and by alreadyInstalled
// to evaluate selectors against the installed set.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// highestVersion returns the highest of a set of version strings,
// ordered lexicographically by semantic version precedence (invariant
// 5: the active version of a name is always the highest installed
// version). Unparsable entries are ignored.
func highestVersion(versions []string) (string, bool) {
	sorted := sortVersionsDescending(versions)
	if len(sorted) == 0 {
		return "", false
	}
	return sorted[0], true
}

// sortVersionsDescending returns versions ordered from highest to
// lowest semver precedence.
func sortVersionsDescending(versions []string) []string {
	parsed := make([]*semver.Version, 0, len(versions))
	for _, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		parsed = append(parsed, sv)
	}
	sort.Slice(parsed, func(i, j int) bool {
		return parsed[i].GreaterThan(parsed[j])
	})
	out := make([]string, len(parsed))
	for i, sv := range parsed {
		out[i] = sv.Original()
	}
	return out
}

// satisfiesSelector reports whether version satisfies the semver
// range selector (e.g. "^2.0.0", "~1.2.0", "0.3.1"). A bare version
// selector is treated as an exact-match constraint, npm-style.
func satisfiesSelector(version, selector string) bool {
	constraint, err := semver.NewConstraint(selector)
	if err != nil {
		return false
	}
	sv, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return constraint.Check(sv)
}

// satisfiesOrGreater reports whether version is >= the minimum bound
// implied by selector, used by alreadyInstalled's "satisfiesOrGreater"
// mode.
func satisfiesOrGreater(version, selector string) bool {
	if satisfiesSelector(version, selector) {
		return true
	}
	minBound, err := semver.NewVersion(minVersionOf(selector))
	if err != nil {
		return false
	}
	sv, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return sv.GreaterThan(minBound) || sv.Equal(minBound)
}

// minVersionOf extracts a best-effort minimum version string from a
// selector for the "satisfiesOrGreater" comparison: constraints built
// from Masterminds/semver don't expose their lower bound directly, so
// we parse the first version-shaped token in the selector.
func minVersionOf(selector string) string {
	trimmed := selector
	for _, prefix := range []string{">=", "^", "~", ">", "="} {
		if len(trimmed) > len(prefix) && trimmed[:len(prefix)] == prefix {
			trimmed = trimmed[len(prefix):]
			break
		}
	}
	return trimmed
}

// findSatisfying returns the highest installed version (from
// candidates, highest first) that satisfies selector, used by the
// acquisition pipeline's "already installed, no network" short-circuit
// and by the registry fetcher's useCache path.
func findSatisfying(candidates []string, selector string) (string, bool) {
	for _, v := range sortVersionsDescending(candidates) {
		if satisfiesSelector(v, selector) {
			return v, true
		}
	}
	return "", false
}
