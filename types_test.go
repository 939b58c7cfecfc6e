// types_test.go: Tests for core data types
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackageManifest_MainOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		main     string
		expected string
	}{
		{name: "explicit main", main: "lib/entry.js", expected: "lib/entry.js"},
		{name: "defaults to index.js", main: "", expected: "index.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &PackageManifest{Main: tt.main}
			assert.Equal(t, tt.expected, m.mainOrDefault())
		})
	}
}

func TestPackageManifest_Immutable(t *testing.T) {
	m := &PackageManifest{Name: "cookie", Version: "0.3.1"}
	snapshot := *m
	m.Version = "mutated-by-caller"
	assert.Equal(t, "0.3.1", snapshot.Version, "manifests should not be shared by pointer across installs")
}
