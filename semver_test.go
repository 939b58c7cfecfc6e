// semver_test.go
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import "testing"

func TestHighestVersion(t *testing.T) {
	v, ok := highestVersion([]string{"1.0.0", "2.0.0", "1.5.3"})
	if !ok || v != "2.0.0" {
		t.Errorf("expected 2.0.0, got %q (ok=%v)", v, ok)
	}

	if _, ok := highestVersion(nil); ok {
		t.Error("expected no highest version for empty set")
	}
}

func TestSatisfiesSelector(t *testing.T) {
	if !satisfiesSelector("2.6.9", "^2.0.0") {
		t.Error("2.6.9 should satisfy ^2.0.0")
	}
	if satisfiesSelector("4.1.0", "^2.0.0") {
		t.Error("4.1.0 should not satisfy ^2.0.0")
	}
	if !satisfiesSelector("0.3.1", "0.3.1") {
		t.Error("exact selector should match itself")
	}
}

func TestSatisfiesOrGreater(t *testing.T) {
	if !satisfiesOrGreater("3.0.0", "^2.0.0") {
		t.Error("3.0.0 should count as satisfiesOrGreater for ^2.0.0")
	}
	if satisfiesOrGreater("1.0.0", "^2.0.0") {
		t.Error("1.0.0 should not satisfy or exceed ^2.0.0")
	}
}

func TestFindSatisfying(t *testing.T) {
	v, ok := findSatisfying([]string{"1.0.0", "2.0.0", "2.5.0"}, "^2.0.0")
	if !ok || v != "2.5.0" {
		t.Errorf("expected highest satisfying version 2.5.0, got %q (ok=%v)", v, ok)
	}

	if _, ok := findSatisfying([]string{"1.0.0"}, "^2.0.0"); ok {
		t.Error("expected no satisfying version")
	}
}
