// manager.go: PluginManager, the façade (§4.F) wiring the filesystem
// lock, the acquisition pipeline, the version manager and the module
// loader into the public API a host program actually calls.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"context"
	"fmt"
)

// PluginManager is the entry point of this package: install, version,
// isolate and execute third-party CommonJS packages inside a
// long-running Go host.
//
// Every mutating method (the Install* family, Uninstall, UninstallAll)
// runs inside an acquire/release pair over the store's
// filesystem lock; read-only methods (List, GetInfo, Require, RunScript,
// AlreadyInstalled) never take it, per §5's ordering guarantees.
type PluginManager struct {
	cfg ManagerConfig

	lock  *fsLock
	store *store
	vm    *versionManager
	loader *loader
	acq   *acquirer
	watch *configWatcher

	logger Logger
}

// NewManager builds a PluginManager from opts, creating PluginsPath and
// VersionsPath on disk if they do not already exist.
func NewManager(opts Options) (*PluginManager, error) {
	cfg := opts.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := newStore(cfg.PluginsPath, cfg.VersionsPath)
	if err := s.ensureDirs(); err != nil {
		return nil, fmt.Errorf("jsplugins: preparing plugin store: %w", err)
	}

	vm := newVersionManager(s, cfg.Logger)
	l := newLoader(vm, s, loaderOptions{
		RequireCoreModules: cfg.RequireCoreModules,
		HostRequire:        cfg.HostRequire,
		StaticDependencies: cfg.StaticDependencies,
	}, cfg.Logger)
	l.setSandboxTemplate("", cfg.Sandbox)

	hostResolvable := func(name string) bool { return cfg.HostRequire != nil && hostCanResolve(cfg.HostRequire, name) }
	filter := newDependencyFilter(cfg.IgnoredDependencies, cfg.StaticDependencies, hostResolvable)

	top := map[SourceKind]fetcher{
		SourceRegistry:  newRegistryFetcher(cfg.NpmRegistryURL, cfg.NpmInstallMode, vm.versionsOf, cfg.Logger),
		SourceGitHub:    newGitHubFetcher(cfg.GithubAuthentication.toGitAuth(), cfg.Logger),
		SourceBitbucket: newBitbucketFetcher(cfg.BitbucketAuthentication.toGitAuth(), cfg.Logger),
		SourcePath:      newLocalFetcher(),
	}

	depFetcher := newRegistryFetcher(cfg.NpmRegistryURL, cfg.NpmInstallMode, vm.versionsOf, cfg.Logger)
	a := newAcquirer(vm, s, top, depFetcher, filter, cfg.Logger)

	mgr := &PluginManager{
		cfg:    cfg,
		lock:   newFSLock(cfg.PluginsPath, cfg.LockWait, cfg.LockStale, cfg.Logger),
		store:  s,
		vm:     vm,
		loader: l,
		acq:    a,
		logger: cfg.Logger,
	}

	watch, err := newConfigWatcher(mgr, cfg)
	if err != nil {
		return nil, err
	}
	mgr.watch = watch
	if err := watch.start(); err != nil {
		return nil, err
	}

	return mgr, nil
}

// Close releases the resources NewManager acquired: the config
// watcher and audit logger, if either was configured.
func (m *PluginManager) Close() error {
	return m.watch.stop()
}

// hostCanResolve probes hostRequire to decide whether the acquisition
// pipeline should treat name as host-resolvable and skip installing it
// (§4.C). A probe that panics is treated as "cannot resolve."
func hostCanResolve(hostRequire func(string) (any, error), name string) bool {
	defer func() { recover() }()
	_, err := hostRequire(name)
	return err == nil
}

// applyFileConfig is the configWatcher's callback: it swaps the
// manager's ignored/static dependency filter and npm registry override
// atomically under the store lock, matching how every other mutating
// operation serializes against concurrent installs. If the lock cannot
// be acquired, the failure is logged and the current filter and
// registry fetchers stay in place.
func (m *PluginManager) applyFileConfig(fc fileConfig) {
	if err := m.lock.acquire(); err != nil {
		m.logger.Error("config file change not applied: store lock unavailable", "error", err)
		return
	}
	defer m.lock.release()

	hostResolvable := func(name string) bool {
		return m.cfg.HostRequire != nil && hostCanResolve(m.cfg.HostRequire, name)
	}
	m.acq.filter = newDependencyFilter(fc.IgnoredDependencies, m.cfg.StaticDependencies, hostResolvable)
	if fc.NpmRegistryURL != "" {
		m.acq.depFetcher = newRegistryFetcher(fc.NpmRegistryURL, m.cfg.NpmInstallMode, m.vm.versionsOf, m.logger)
		m.acq.topFetchers[SourceRegistry] = m.acq.depFetcher
	}
}

// withLock runs fn inside the acquire/release pair every mutating
// façade method shares (§5).
func (m *PluginManager) withLock(op string, name string, fn func() (*PluginInfo, error)) (*PluginInfo, error) {
	if err := m.lock.acquire(); err != nil {
		return nil, err
	}
	defer m.lock.release()

	info, err := fn()
	m.watch.audit(op, map[string]any{"name": name, "error": errString(err)})
	return info, err
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Install installs name from source using selector, recursing into its
// declared dependency tree (§4.C). A forced or no-cache reinstall
// invalidates name's cached exports (and everything that transitively
// requires it) so a later Require observes the freshly downloaded code
// instead of the export cached from before the reinstall (§8).
func (m *PluginManager) Install(ctx context.Context, source SourceKind, name, selector string, opts InstallOptions) (*PluginInfo, error) {
	return m.withLock("install", name, func() (*PluginInfo, error) {
		info, err := m.acq.install(ctx, source, name, selector, opts)
		if err == nil && (opts.Force || opts.NoCache) {
			m.loader.invalidate(name)
		}
		return info, err
	})
}

// InstallFromNpm installs name at a semver range or exact version from
// the configured npm registry.
func (m *PluginManager) InstallFromNpm(ctx context.Context, name, versionRange string) (*PluginInfo, error) {
	return m.Install(ctx, SourceRegistry, name, versionRange, InstallOptions{})
}

// InstallFromGithub installs a package from a "owner/repo[#ref]"
// selector against github.com.
func (m *PluginManager) InstallFromGithub(ctx context.Context, name, ownerRepoRef string) (*PluginInfo, error) {
	return m.Install(ctx, SourceGitHub, name, ownerRepoRef, InstallOptions{})
}

// InstallFromBitbucket installs a package from a "owner/repo[#ref]"
// selector against bitbucket.org.
func (m *PluginManager) InstallFromBitbucket(ctx context.Context, name, ownerRepoRef string) (*PluginInfo, error) {
	return m.Install(ctx, SourceBitbucket, name, ownerRepoRef, InstallOptions{})
}

// InstallFromPath installs a package already present on the local
// filesystem at path, copying it into the version store.
func (m *PluginManager) InstallFromPath(ctx context.Context, name, path string) (*PluginInfo, error) {
	return m.Install(ctx, SourcePath, name, path, InstallOptions{})
}

// InstallFromCode installs a single-file package whose entire source is
// code, bypassing every fetcher. A version of "" installs as
// defaultInlineVersion and always forces a reinstall (§4.B).
func (m *PluginManager) InstallFromCode(ctx context.Context, name, code, version string) (*PluginInfo, error) {
	return m.withLock("installFromCode", name, func() (*PluginInfo, error) {
		m.acq.topFetchers[SourceInline] = newInlineFetcher(code)
		opts := InstallOptions{Version: version}
		if version != "" {
			opts.Force = true
		}
		info, err := m.acq.install(ctx, SourceInline, name, version, opts)
		if err == nil && (opts.Force || opts.NoCache || version == "") {
			m.loader.invalidate(name)
		}
		return info, err
	})
}

// Uninstall removes name@version's top-level binding. A version still
// depended on by another installed plugin's link survives in
// .versions/ and keeps serving that dependent's require() calls (§9).
func (m *PluginManager) Uninstall(name, version string) error {
	_, err := m.withLock("uninstall", name, func() (*PluginInfo, error) {
		return nil, m.vm.uninstallTopLevel(name, version)
	})
	if err == nil {
		m.loader.invalidate(name)
	}
	return err
}

// UninstallAll removes every top-level name currently installed and
// sweeps whatever that uncovers out of .versions/.
func (m *PluginManager) UninstallAll() error {
	_, err := m.withLock("uninstallAll", "", func() (*PluginInfo, error) {
		for _, name := range m.vm.topLevelNames() {
			for _, version := range m.vm.versionsOf(name) {
				if err := m.vm.uninstallTopLevel(name, version); err != nil {
					return nil, err
				}
			}
			m.loader.invalidate(name)
		}
		return nil, nil
	})
	return err
}

// List returns the name and active version of every top-level installed
// plugin.
func (m *PluginManager) List() []PluginInfo {
	var out []PluginInfo
	for _, name := range m.vm.topLevelNames() {
		version, ok := m.vm.activeVersionOf(name)
		if !ok {
			continue
		}
		info, err := m.acq.infoFor(name, version)
		if err != nil {
			continue
		}
		out = append(out, *info)
	}
	return out
}

// GetInfo returns the installed PluginInfo for name's currently active
// version.
func (m *PluginManager) GetInfo(name string) (*PluginInfo, error) {
	version, ok := m.vm.activeVersionOf(name)
	if !ok {
		return nil, NewNotFoundError(name, "", nil)
	}
	return m.acq.infoFor(name, version)
}

// Require loads name's active version's main file, exactly as a
// require() call from the host's own code would, and returns its
// module.exports.
func (m *PluginManager) Require(name string) (any, error) {
	info, err := m.GetInfo(name)
	if err != nil {
		return nil, err
	}
	return m.loader.requireTopLevel(info)
}

// RunScript evaluates code as a nameless module in the shared ("")
// sandbox, with a require() that resolves against the active view
// (§4.E).
func (m *PluginManager) RunScript(code string) (any, error) {
	return m.loader.runScript(code)
}

// AlreadyInstalled reports whether some installed version of name
// matches selector under mode (§8).
func (m *PluginManager) AlreadyInstalled(name, selector string, mode AlreadyInstalledMode) bool {
	versions := m.vm.versionsOf(name)
	switch mode {
	case ModeSatisfiesOrGreater:
		for _, v := range versions {
			if satisfiesOrGreater(v, selector) {
				return true
			}
		}
		return false
	default:
		_, ok := findSatisfying(versions, selector)
		return ok
	}
}

// QueryPackage resolves name against selector through source's fetcher
// without installing it: a network (or local) resolve only.
func (m *PluginManager) QueryPackage(ctx context.Context, source SourceKind, name, selector string) (*PackageManifest, error) {
	f, ok := m.acq.topFetchers[source]
	if !ok {
		return nil, errUnsupportedSource(source)
	}
	return f.resolve(ctx, name, selector)
}

// QueryPackageFromNpm is QueryPackage pinned to the npm registry.
func (m *PluginManager) QueryPackageFromNpm(ctx context.Context, name, versionRange string) (*PackageManifest, error) {
	return m.QueryPackage(ctx, SourceRegistry, name, versionRange)
}

// QueryPackageFromGithub is QueryPackage pinned to github.com.
func (m *PluginManager) QueryPackageFromGithub(ctx context.Context, name, ownerRepoRef string) (*PackageManifest, error) {
	return m.QueryPackage(ctx, SourceGitHub, name, ownerRepoRef)
}

// SetSandboxTemplate assigns pluginName's sandbox template, taking
// effect when that plugin's sandbox is built on its first load. A
// plugin that has already been loaded keeps the sandbox it has.
func (m *PluginManager) SetSandboxTemplate(pluginName string, tmpl SandboxTemplate) {
	m.loader.setSandboxTemplate(pluginName, tmpl)
}

// GetSandboxTemplate returns pluginName's currently assigned sandbox
// template, if one was set via SetSandboxTemplate.
func (m *PluginManager) GetSandboxTemplate(pluginName string) (SandboxTemplate, bool) {
	return m.loader.getSandboxTemplate(pluginName)
}
