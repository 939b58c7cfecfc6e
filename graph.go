// graph.go: the dependency graph and reference counts backing the
// version manager, adapted from the topological-sort dependency graph
// used by the teacher's dynamic loader but keyed on (name, version)
// nodes rather than plugin names, since two plugins may each depend on
// a different version of the same package (§3, §4.D).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import "sync"

// versionKey uniquely identifies an installed (name, version) pair in
// .versions/.
func versionKey(name, version string) string {
	return name + "@" + version
}

// depGraph tracks, for every installed plugin P, the specific version
// each of its declared dependencies was bound to (an edge (P, D) ->
// version of D), plus a reference count per (name, version) equal to
// the number of edges targeting it, plus one if it is itself a
// top-level plugin.
type depGraph struct {
	mu sync.RWMutex

	// edges[pluginKey][depName] = depVersion
	edges map[string]map[string]string

	// refcount[versionKey] = number of edges targeting it, plus 1 if
	// topLevel[versionKey] is set.
	refcount map[string]int

	// topLevel holds the set of versionKeys installed directly (not
	// merely as a transitive dependency).
	topLevel map[string]bool
}

func newDepGraph() *depGraph {
	return &depGraph{
		edges:    make(map[string]map[string]string),
		refcount: make(map[string]int),
		topLevel: make(map[string]bool),
	}
}

// markTopLevel records (name, version) as a top-level plugin,
// incrementing its reference count. Idempotent: installing the same
// top-level version twice does not double-count.
func (g *depGraph) markTopLevel(name, version string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := versionKey(name, version)
	if g.topLevel[key] {
		return
	}
	g.topLevel[key] = true
	g.refcount[key]++
}

// unmarkTopLevel removes the top-level reference for (name, version),
// per the open question in §9: uninstalling a top-level plugin removes
// only its own top-level binding, not the edges pointing to it from
// other plugins' dependency graphs, so orphaned versions persist until
// their refcount truly reaches zero.
func (g *depGraph) unmarkTopLevel(name, version string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := versionKey(name, version)
	if !g.topLevel[key] {
		return
	}
	delete(g.topLevel, key)
	g.refcount[key]--
	if g.refcount[key] <= 0 {
		delete(g.refcount, key)
	}
}

// link adds or replaces the edge (pluginName@pluginVersion, depName) ->
// depVersion. If the plugin already had a different binding for
// depName, that stale edge's refcount is decremented first.
func (g *depGraph) link(pluginName, pluginVersion, depName, depVersion string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pluginKey := versionKey(pluginName, pluginVersion)
	if g.edges[pluginKey] == nil {
		g.edges[pluginKey] = make(map[string]string)
	}

	if prevVersion, ok := g.edges[pluginKey][depName]; ok {
		if prevVersion == depVersion {
			return
		}
		g.decrefLocked(versionKey(depName, prevVersion))
	}

	g.edges[pluginKey][depName] = depVersion
	g.refcount[versionKey(depName, depVersion)]++
}

// unlinkPlugin removes every edge originating at (pluginName,
// pluginVersion) — used when a plugin's own dependency set is
// recomputed (a reinstall with {force: true}) or when the plugin is
// fully removed. Returns the version keys whose refcount reached zero
// as a result, so the caller can sweep them from .versions/.
func (g *depGraph) unlinkPlugin(pluginName, pluginVersion string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	pluginKey := versionKey(pluginName, pluginVersion)
	deps, ok := g.edges[pluginKey]
	if !ok {
		return nil
	}
	delete(g.edges, pluginKey)

	var zeroed []string
	for depName, depVersion := range deps {
		key := versionKey(depName, depVersion)
		before := g.refcount[key]
		g.decrefLocked(key)
		if before > 0 && g.refcount[key] == 0 {
			zeroed = append(zeroed, key)
		}
	}
	return zeroed
}

// decrefLocked decrements a version key's refcount, pruning the map
// entry once it reaches zero. Callers must hold g.mu.
func (g *depGraph) decrefLocked(key string) {
	g.refcount[key]--
	if g.refcount[key] <= 0 {
		delete(g.refcount, key)
	}
}

// resolveFor returns the specific version bound to depName for
// (pluginName, pluginVersion), the binding the module loader consults
// instead of whatever is currently active for depName (§4.D).
func (g *depGraph) resolveFor(pluginName, pluginVersion, depName string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	deps, ok := g.edges[versionKey(pluginName, pluginVersion)]
	if !ok {
		return "", false
	}
	v, ok := deps[depName]
	return v, ok
}

// refCount returns the current reference count for (name, version);
// zero means it is eligible for deletion from .versions/.
func (g *depGraph) refCount(name, version string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.refcount[versionKey(name, version)]
}

// isZero reports whether (name, version) currently has no references.
func (g *depGraph) isZero(name, version string) bool {
	return g.refCount(name, version) == 0
}

// topLevelNames returns the distinct names currently marked top-level,
// used by PluginManager.List and UninstallAll to enumerate installed
// plugins without walking the filesystem.
func (g *depGraph) topLevelNames() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for key := range g.topLevel {
		name, _ := splitVersionKey(key)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// dependentsOf returns the plugin names (regardless of version) that
// currently declare a dependency on depName, used by the module
// loader's cache invalidation to find every plugin whose cached
// requires must be dropped when depName's binding changes (§4.E).
func (g *depGraph) dependentsOf(depName string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for pluginKey, deps := range g.edges {
		if _, ok := deps[depName]; !ok {
			continue
		}
		name, _ := splitVersionKey(pluginKey)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
