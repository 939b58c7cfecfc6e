// vm.go: the sandboxed module loader (§4.E) — the require() resolution
// algorithm, the per-absolute-path export cache, circular-require
// handling and runScript, tying the version manager's bindings to the
// tree-walking interpreter in vm_interp.go.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// moduleEntry is one slot in the loader's export cache, keyed by
// canonicalized absolute file path. loading stays true for the
// duration of that file's top-level execution so a circular require
// observes the in-progress module.exports instead of recursing.
type moduleEntry struct {
	loading bool
	exports any
	module  *jsObject
}

// loader resolves and executes plugin files against the version
// manager's bindings, caching successful loads by absolute path and
// never caching a failed one (§4.E edge case: repeated requires of a
// broken module keep failing, never silently serve a stale success).
type loader struct {
	mu sync.Mutex

	vm    *versionManager
	store *store
	interp *interp

	requireCoreModules bool
	hostRequire        func(specifier string) (any, error)
	staticDependencies map[string]any

	sandboxes map[string]*pluginSandbox
	templates map[string]SandboxTemplate

	cache map[string]*moduleEntry

	logger Logger
}

type loaderOptions struct {
	RequireCoreModules bool
	HostRequire        func(specifier string) (any, error)
	StaticDependencies map[string]any
}

func newLoader(vm *versionManager, s *store, opts loaderOptions, logger Logger) *loader {
	l := &loader{
		vm:                 vm,
		store:              s,
		interp:             newInterp(nil),
		requireCoreModules: opts.RequireCoreModules,
		hostRequire:        opts.HostRequire,
		staticDependencies: opts.StaticDependencies,
		sandboxes:          make(map[string]*pluginSandbox),
		templates:          make(map[string]SandboxTemplate),
		cache:              make(map[string]*moduleEntry),
		logger:             logger,
	}
	if vm != nil {
		vm.onInvalidate = l.invalidate
	}
	return l
}

// setSandboxTemplate assigns pluginName's {env, global} template. Must
// be called before the plugin's first load to take effect; a plugin
// whose sandbox was already built keeps its existing one (§4.E:
// "installed on first load").
func (l *loader) setSandboxTemplate(pluginName string, tmpl SandboxTemplate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[pluginName] = tmpl
}

// getSandboxTemplate returns the template explicitly assigned to
// pluginName, if any.
func (l *loader) getSandboxTemplate(pluginName string) (SandboxTemplate, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	tmpl, ok := l.templates[pluginName]
	return tmpl, ok
}

// sandboxFor returns pluginName's sandbox, building it from its
// assigned template (or the default) on first use.
func (l *loader) sandboxFor(pluginName string) *pluginSandbox {
	l.mu.Lock()
	defer l.mu.Unlock()

	if sb, ok := l.sandboxes[pluginName]; ok {
		return sb
	}
	tmpl, ok := l.templates[pluginName]
	if !ok {
		tmpl = defaultSandboxTemplate()
	}
	sb := newPluginSandbox(tmpl)
	l.sandboxes[pluginName] = sb
	return sb
}

// requireTopLevel resolves and executes info's main file, the entry
// point for PluginManager.Require(name).
func (l *loader) requireTopLevel(info *PluginInfo) (any, error) {
	return l.loadFile(info.Name, info.Version, info.MainFile)
}

// runScript compiles and executes code as a nameless module in a
// shared sandbox, the host-facing ad hoc evaluation entry point. It is
// never cached: each call is a fresh execution (§4.E: runScript
// "compiles as nameless module in shared sandbox").
func (l *loader) runScript(code string) (any, error) {
	prog, err := parseProgram(code)
	if err != nil {
		return nil, NewExecutionError("<script>", err)
	}

	sandbox := l.sandboxFor("")
	moduleObj := newObject()
	exportsObj := newObject()
	moduleObj.set("exports", exportsObj)

	scope := newScope(sandbox.root)
	scope.define("module", moduleObj)
	scope.define("exports", exportsObj)
	scope.define("__filename", "<script>")
	scope.define("__dirname", ".")
	scope.define("require", l.nativeRequire("", "", "."))

	if err := l.interp.run(prog, scope); err != nil {
		return nil, wrapThrown("<script>", err)
	}
	exports, _ := moduleObj.get("exports")
	return exports, nil
}

// loadFile executes absPath as a CommonJS module belonging to
// (pluginName, pluginVersion), returning its module.exports. A second
// call for the same canonical path returns the cached result without
// re-executing the file.
func (l *loader) loadFile(pluginName, pluginVersion, absPath string) (any, error) {
	canon := canonicalPath(absPath)

	l.mu.Lock()
	if entry, ok := l.cache[canon]; ok {
		l.mu.Unlock()
		if entry.loading {
			exp, _ := entry.module.get("exports")
			return exp, nil
		}
		return entry.exports, nil
	}
	moduleObj := newObject()
	exportsObj := newObject()
	moduleObj.set("exports", exportsObj)
	entry := &moduleEntry{loading: true, module: moduleObj}
	l.cache[canon] = entry
	l.mu.Unlock()

	exports, err := l.execFile(pluginName, pluginVersion, absPath, moduleObj, exportsObj)
	if err != nil {
		l.mu.Lock()
		delete(l.cache, canon)
		l.mu.Unlock()
		return nil, err
	}

	l.mu.Lock()
	entry.loading = false
	entry.exports = exports
	l.mu.Unlock()
	return exports, nil
}

func (l *loader) execFile(pluginName, pluginVersion, absPath string, moduleObj, exportsObj *jsObject) (any, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, NewModuleNotFoundError(absPath, absPath)
	}

	if strings.EqualFold(filepath.Ext(absPath), ".json") {
		exports, err := jsonParse(string(data))
		if err != nil {
			return nil, NewExecutionError(absPath, err)
		}
		moduleObj.set("exports", exports)
		return exports, nil
	}

	prog, err := parseProgram(string(data))
	if err != nil {
		return nil, NewExecutionError(absPath, err)
	}

	sandbox := l.sandboxFor(pluginName)
	dir := filepath.Dir(absPath)

	scope := newScope(sandbox.root)
	scope.define("module", moduleObj)
	scope.define("exports", exportsObj)
	scope.define("__filename", absPath)
	scope.define("__dirname", dir)
	scope.define("require", l.nativeRequire(pluginName, pluginVersion, dir))

	if err := l.interp.run(prog, scope); err != nil {
		return nil, wrapThrown(absPath, err)
	}
	exports, _ := moduleObj.get("exports")
	return exports, nil
}

func wrapThrown(file string, err error) error {
	if thrown, ok := err.(*jsThrowError); ok {
		return NewExecutionError(file, thrown)
	}
	return NewExecutionError(file, err)
}

// nativeRequire builds the require() function bound into one file's
// scope, closing over the plugin identity and directory that file's
// relative specifiers resolve against.
func (l *loader) nativeRequire(pluginName, pluginVersion, fromDir string) *jsFunction {
	return nativeFn("require", func(i *interp, this any, args []any) (any, error) {
		spec, _ := arg(args, 0).(string)
		return l.requireModule(pluginName, pluginVersion, fromDir, spec)
	})
}

// requireModule implements the resolution order from §4.E: core
// modules, then statically-injected dependencies, then relative/
// absolute paths, then bare specifiers bound via the version manager
// (for runScript's nameless module, the name's active version), then
// the host's fallback require, else ModuleNotFound.
func (l *loader) requireModule(pluginName, pluginVersion, fromDir, specifier string) (any, error) {
	if l.requireCoreModules {
		if exp, ok := coreModuleExport(specifier); ok {
			return exp, nil
		}
	}
	if exp, ok := l.staticDependencies[specifier]; ok {
		return exp, nil
	}

	if isRelativeOrAbsolute(specifier) {
		target := specifier
		if !filepath.IsAbs(target) {
			target = filepath.Join(fromDir, specifier)
		}
		resolved, err := resolveFileLike(target)
		if err != nil {
			return nil, NewModuleNotFoundError(specifier, fromDir)
		}
		return l.loadFile(pluginName, pluginVersion, resolved)
	}

	head, rest := splitBareSpecifier(specifier)
	depVersion, ok := l.vm.resolveFor(pluginName, pluginVersion, head)
	if !ok && pluginName == "" {
		// runScript's nameless module has no bindings of its own, so a
		// bare specifier resolves to the name's active version.
		depVersion, ok = l.vm.activeVersionOf(head)
	}
	if ok {
		depDir := l.store.versionDir(head, depVersion)
		target := depDir
		if rest != "" {
			target = filepath.Join(depDir, rest)
		}
		resolved, err := resolveFileLike(target)
		if err != nil {
			return nil, NewModuleNotFoundError(specifier, fromDir)
		}
		return l.loadFile(head, depVersion, resolved)
	}

	if l.hostRequire != nil {
		if v, err := l.hostRequire(specifier); err == nil {
			return v, nil
		}
	}
	return nil, NewModuleNotFoundError(specifier, fromDir)
}

// invalidate drops every cached export under name's installed version
// directories, then does the same for every plugin that currently
// depends on name, transitively — the propagation §4.E requires so "no
// cached export survives a transitive dependency change".
func (l *loader) invalidate(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	visited := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		if visited[n] {
			return
		}
		visited[n] = true

		for _, v := range l.store.versionsOf(n) {
			prefix := canonicalPath(l.store.versionDir(n, v))
			for canon := range l.cache {
				if strings.HasPrefix(canon, prefix) {
					delete(l.cache, canon)
				}
			}
		}
		for _, dep := range l.vm.dependentsOf(n) {
			walk(dep)
		}
	}
	walk(name)
}

// resolveFileLike applies Node's file/extension/directory resolution
// order to path: the file itself, then path+".js", then path+".json",
// then (if path is a directory) its package.json main or index.js. A
// same-named file always wins over a directory (§4.E).
func resolveFileLike(path string) (string, error) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}
	if info, err := os.Stat(path + ".js"); err == nil && !info.IsDir() {
		return path + ".js", nil
	}
	if info, err := os.Stat(path + ".json"); err == nil && !info.IsDir() {
		return path + ".json", nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if manifest, err := readManifestFile(path); err == nil {
			candidate := filepath.Join(path, manifest.mainOrDefault())
			if resolved, err2 := resolveFileLike(candidate); err2 == nil {
				return resolved, nil
			}
		}
		idx := filepath.Join(path, "index.js")
		if _, err := os.Stat(idx); err == nil {
			return idx, nil
		}
	}
	return "", NewModuleNotFoundError(path, path)
}

// isRelativeOrAbsolute reports whether specifier names a path rather
// than a bare package specifier.
func isRelativeOrAbsolute(specifier string) bool {
	return strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") ||
		filepath.IsAbs(specifier)
}

// splitBareSpecifier splits a bare require() specifier into its
// package name (honouring the @scope/name form) and the path segment
// that follows it, if any.
func splitBareSpecifier(specifier string) (head, rest string) {
	if strings.HasPrefix(specifier, "@") {
		parts := strings.SplitN(specifier, "/", 3)
		if len(parts) < 2 {
			return specifier, ""
		}
		head = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			rest = parts[2]
		}
		return head, rest
	}
	if idx := strings.IndexByte(specifier, '/'); idx >= 0 {
		return specifier[:idx], specifier[idx+1:]
	}
	return specifier, ""
}

// canonicalPath normalizes an absolute path for use as a cache key.
func canonicalPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

// coreModuleExport provides the handful of Node core modules a plugin
// might require when requireCoreModules is enabled: "path" (join,
// basename, dirname, extname) and "util" (isArray) only, not a faithful
// reimplementation of Node's standard library.
func coreModuleExport(specifier string) (any, bool) {
	switch specifier {
	case "path":
		return pathModuleExport(), true
	case "util":
		return utilModuleExport(), true
	default:
		return nil, false
	}
}

func pathModuleExport() *jsObject {
	o := newObject()
	o.set("join", nativeFn("join", func(i *interp, this any, args []any) (any, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, toStringValue(a))
		}
		return filepath.Join(parts...), nil
	}))
	o.set("basename", nativeFn("basename", func(i *interp, this any, args []any) (any, error) {
		return filepath.Base(toStringValue(arg(args, 0))), nil
	}))
	o.set("dirname", nativeFn("dirname", func(i *interp, this any, args []any) (any, error) {
		return filepath.Dir(toStringValue(arg(args, 0))), nil
	}))
	o.set("extname", nativeFn("extname", func(i *interp, this any, args []any) (any, error) {
		return filepath.Ext(toStringValue(arg(args, 0))), nil
	}))
	return o
}

func utilModuleExport() *jsObject {
	o := newObject()
	o.set("isArray", nativeFn("isArray", func(i *interp, this any, args []any) (any, error) {
		obj, ok := arg(args, 0).(*jsObject)
		return ok && obj.isArray, nil
	}))
	return o
}
