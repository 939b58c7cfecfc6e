// version_manager_test.go
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestVersionManager(t *testing.T) *versionManager {
	t.Helper()
	s := newTestStore(t)
	return newVersionManager(s, NewNoOpLogger())
}

func TestVersionManager_InstallActivatesHighest(t *testing.T) {
	vm := newTestVersionManager(t)
	seedVersion(t, vm.store, "my-plugin-a", "1.0.0", "module.exports = 'v1'")
	seedVersion(t, vm.store, "my-plugin-a", "2.0.0", "module.exports = 'v2'")

	if err := vm.installTopLevel("my-plugin-a", "1.0.0"); err != nil {
		t.Fatalf("install 1.0.0: %v", err)
	}
	if err := vm.installTopLevel("my-plugin-a", "2.0.0"); err != nil {
		t.Fatalf("install 2.0.0: %v", err)
	}

	active, ok := vm.activeVersionOf("my-plugin-a")
	if !ok || active != "2.0.0" {
		t.Fatalf("expected active version 2.0.0, got %q (ok=%v)", active, ok)
	}

	data, err := os.ReadFile(filepath.Join(vm.store.activeDir("my-plugin-a"), "index.js"))
	if err != nil {
		t.Fatalf("read active file: %v", err)
	}
	if string(data) != "module.exports = 'v2'" {
		t.Fatalf("expected active view to mirror 2.0.0, got %q", data)
	}
}

// TestVersionManager_PinningSurvivesNewerTopLevel reproduces spec.md
// scenario 4: a dependent pinned to an older version keeps resolving to
// it even after a newer version becomes the active one.
func TestVersionManager_PinningSurvivesNewerTopLevel(t *testing.T) {
	vm := newTestVersionManager(t)
	seedVersion(t, vm.store, "my-plugin-a", "1.0.0", "module.exports = 'v1'")
	seedVersion(t, vm.store, "my-plugin-a", "2.0.0", "module.exports = 'v2'")
	seedVersion(t, vm.store, "my-plugin-b", "1.0.0", "module.exports = 'a = v1'")

	if err := vm.installTopLevel("my-plugin-a", "1.0.0"); err != nil {
		t.Fatalf("install a@1.0.0: %v", err)
	}
	if err := vm.installTopLevel("my-plugin-b", "1.0.0"); err != nil {
		t.Fatalf("install b: %v", err)
	}
	if err := vm.link("my-plugin-b", "1.0.0", "my-plugin-a", "1.0.0"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := vm.installTopLevel("my-plugin-a", "2.0.0"); err != nil {
		t.Fatalf("install a@2.0.0: %v", err)
	}

	active, ok := vm.activeVersionOf("my-plugin-a")
	if !ok || active != "2.0.0" {
		t.Fatalf("expected active a@2.0.0, got %q", active)
	}

	bound, ok := vm.resolveFor("my-plugin-b", "1.0.0", "my-plugin-a")
	if !ok || bound != "1.0.0" {
		t.Fatalf("expected my-plugin-b pinned to a@1.0.0, got %q", bound)
	}
}

// TestVersionManager_UninstallTopLevelPreservesLinkedDependency
// reproduces spec.md scenario 5.
func TestVersionManager_UninstallTopLevelPreservesLinkedDependency(t *testing.T) {
	vm := newTestVersionManager(t)
	seedVersion(t, vm.store, "my-plugin-a", "1.0.0", "module.exports = 'v1'")
	seedVersion(t, vm.store, "my-plugin-b", "1.0.0", "module.exports = 'a = v1'")

	if err := vm.installTopLevel("my-plugin-a", "1.0.0"); err != nil {
		t.Fatalf("install a: %v", err)
	}
	if err := vm.installTopLevel("my-plugin-b", "1.0.0"); err != nil {
		t.Fatalf("install b: %v", err)
	}
	if err := vm.link("my-plugin-b", "1.0.0", "my-plugin-a", "1.0.0"); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := vm.uninstallTopLevel("my-plugin-a", "1.0.0"); err != nil {
		t.Fatalf("uninstall a: %v", err)
	}

	if !vm.store.hasVersion("my-plugin-a", "1.0.0") {
		t.Fatal("expected my-plugin-a@1.0.0 to survive in .versions/: my-plugin-b still depends on it")
	}
	if _, ok := vm.activeVersionOf("my-plugin-a"); ok {
		t.Fatal("expected my-plugin-a's active view to be cleared once its top-level reference is gone")
	}

	bound, ok := vm.resolveFor("my-plugin-b", "1.0.0", "my-plugin-a")
	if !ok || bound != "1.0.0" {
		t.Fatalf("expected my-plugin-b still bound to a@1.0.0, got %q", bound)
	}
}

func TestVersionManager_SweepDeletesTrueZeroRef(t *testing.T) {
	vm := newTestVersionManager(t)
	seedVersion(t, vm.store, "leaf", "1.0.0", "module.exports = {}")

	if err := vm.installTopLevel("leaf", "1.0.0"); err != nil {
		t.Fatalf("install: %v", err)
	}
	if err := vm.uninstallTopLevel("leaf", "1.0.0"); err != nil {
		t.Fatalf("uninstall: %v", err)
	}

	if vm.store.hasVersion("leaf", "1.0.0") {
		t.Fatal("expected leaf@1.0.0 to be removed from .versions/ once refcount reached zero")
	}
}

func TestSplitVersionKey(t *testing.T) {
	cases := map[string][2]string{
		"my-plugin-a@1.0.0":  {"my-plugin-a", "1.0.0"},
		"@scope/pkg@2.3.4":   {"@scope/pkg", "2.3.4"},
		"@scope/pkg@1.0.0-a": {"@scope/pkg", "1.0.0-a"},
	}
	for key, want := range cases {
		name, version := splitVersionKey(key)
		if name != want[0] || version != want[1] {
			t.Errorf("splitVersionKey(%q) = (%q, %q), want (%q, %q)", key, name, version, want[0], want[1])
		}
	}
}
