// version_manager.go: the Version Manager (§4.D), composing depGraph's
// reference counts with store's on-disk layout. This is the only piece
// that moves files between .versions/ and the active view, and the
// only piece allowed to delete a .versions/ entry.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import "sync"

// versionManager owns the dependency graph and the on-disk store
// together, so every mutation that changes a refcount also reconciles
// the active view in the same call (invariant 1).
type versionManager struct {
	mu sync.Mutex

	graph *depGraph
	store *store

	// onInvalidate is called with the dependent plugin's name after every
	// link, so cached requires of it are dropped — wired to the loader's
	// cache invalidation by newLoader in vm.go (§4.E).
	onInvalidate func(name string)

	logger Logger
}

func newVersionManager(s *store, logger Logger) *versionManager {
	return &versionManager{
		graph:  newDepGraph(),
		store:  s,
		logger: logger,
	}
}

// installTopLevel records version as installed for name as a top-level
// plugin (links from dependents go through link) and refreshes the
// active view to the highest installed version (invariant 5). Callers
// are responsible for having already materialized the files into
// store.versionDir(name, version) before calling installTopLevel.
func (vm *versionManager) installTopLevel(name, version string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.graph.markTopLevel(name, version)
	return vm.refreshActiveLocked(name)
}

// link binds depName to depVersion for (pluginName, pluginVersion), the
// edge the loader's resolveFor will honor regardless of depName's
// globally active version (§4.D policy).
//
// Linking refreshes depName's active view to the highest version in
// .versions/, so a dependency resolving to a version lower than the
// current active one never downgrades it, per the acquisition
// pipeline's no-downgrade edge case (§4.C). onInvalidate runs after
// vm.mu is released, since the loader's invalidation calls back into
// dependentsOf.
func (vm *versionManager) link(pluginName, pluginVersion, depName, depVersion string) error {
	vm.mu.Lock()
	vm.graph.link(pluginName, pluginVersion, depName, depVersion)
	err := vm.refreshActiveLocked(depName)
	onInvalidate := vm.onInvalidate
	vm.mu.Unlock()

	if onInvalidate != nil {
		onInvalidate(pluginName)
	}
	return err
}

// unlinkPlugin removes pluginName@pluginVersion's own dependency edges
// (used before relinking on a forced reinstall) and sweeps any
// zero-refcount versions this uncovers out of .versions/.
func (vm *versionManager) unlinkPlugin(pluginName, pluginVersion string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	zeroed := vm.graph.unlinkPlugin(pluginName, pluginVersion)
	return vm.sweepLocked(zeroed)
}

// uninstallTopLevel removes pluginName@pluginVersion's top-level
// reference per the open question in §9: it tears down only the
// top-level binding. A plugin still depended on by another installed
// plugin's link survives in .versions/ and keeps serving require()
// calls for that dependent (scenario 5).
func (vm *versionManager) uninstallTopLevel(pluginName, pluginVersion string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.graph.unmarkTopLevel(pluginName, pluginVersion)

	var zeroed []string
	if vm.graph.isZero(pluginName, pluginVersion) {
		zeroed = append(zeroed, vm.graph.unlinkPlugin(pluginName, pluginVersion)...)
		zeroed = append(zeroed, versionKey(pluginName, pluginVersion))
	}
	if err := vm.sweepLocked(zeroed); err != nil {
		return err
	}
	return vm.refreshActiveLocked(pluginName)
}

// sweepLocked deletes every zero-refcount version key from .versions/
// and refreshes the active view of each affected name. Callers must
// hold vm.mu.
func (vm *versionManager) sweepLocked(zeroed []string) error {
	affected := make(map[string]bool)
	for _, key := range zeroed {
		name, version := splitVersionKey(key)
		if !vm.graph.isZero(name, version) {
			continue // relinked before the sweep ran
		}
		if err := vm.store.removeVersion(name, version); err != nil {
			return err
		}
		affected[name] = true
	}
	for name := range affected {
		if err := vm.refreshActiveLocked(name); err != nil {
			return err
		}
	}
	return nil
}

// refreshActiveLocked recomputes name's active view from the highest
// version still present in .versions/, clearing the active directory
// entirely if none remain. Callers must hold vm.mu.
func (vm *versionManager) refreshActiveLocked(name string) error {
	versions := vm.store.versionsOf(name)
	top, ok := highestVersion(versions)
	if !ok {
		return vm.store.clearActive(name)
	}
	return vm.store.publishActive(name, top)
}

// activeVersionOf returns the version currently mirrored into name's
// active view, if any.
func (vm *versionManager) activeVersionOf(name string) (string, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return highestVersion(vm.store.versionsOf(name))
}

// topLevelNames returns the distinct names currently installed as
// top-level plugins.
func (vm *versionManager) topLevelNames() []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.graph.topLevelNames()
}

// versionsOf returns every version of name currently present in
// .versions/, highest first.
func (vm *versionManager) versionsOf(name string) []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return sortVersionsDescending(vm.store.versionsOf(name))
}

// resolveFor returns the version of depName bound to (pluginName,
// pluginVersion), the binding the module loader must use in place of
// depName's active version (§4.E step 4).
func (vm *versionManager) resolveFor(pluginName, pluginVersion, depName string) (string, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.graph.resolveFor(pluginName, pluginVersion, depName)
}

// dependentsOf returns the plugin names that currently depend on name,
// used to propagate cache invalidation to every transitive dependent.
func (vm *versionManager) dependentsOf(name string) []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.graph.dependentsOf(name)
}

// refCount exposes the current reference count for (name, version),
// used by tests asserting invariant 3.
func (vm *versionManager) refCount(name, version string) int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.graph.refCount(name, version)
}

// splitVersionKey reverses versionKey, splitting on the last "@" so
// that scoped names ("@scope/name@1.0.0") split correctly.
func splitVersionKey(key string) (name, version string) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '@' && i > 0 {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
