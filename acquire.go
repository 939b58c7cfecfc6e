// acquire.go: the Package Acquisition Pipeline (§4.C), turning a
// (source, name, selector) request into installed files under
// .versions/, a top-level or dependency link in the version manager,
// and a flattened PluginInfo.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"context"
	"path/filepath"
	"regexp"
)

// dependencyFilter decides which declared dependencies the acquisition
// pipeline should recurse into, per §4.C: ignoredDependencies and
// staticDependencies entries are skipped entirely, as is anything the
// host can resolve itself.
type dependencyFilter struct {
	ignored        []*regexp.Regexp
	static         map[string]struct{}
	hostResolvable func(name string) bool
}

func newDependencyFilter(ignoredDependencies []string, staticDependencies map[string]any, hostResolvable func(string) bool) *dependencyFilter {
	f := &dependencyFilter{
		static:         make(map[string]struct{}, len(staticDependencies)),
		hostResolvable: hostResolvable,
	}
	for name := range staticDependencies {
		f.static[name] = struct{}{}
	}
	for _, pattern := range ignoredDependencies {
		if re, err := regexp.Compile(pattern); err == nil {
			f.ignored = append(f.ignored, re)
		}
	}
	return f
}

// skip reports whether depName should be left unresolved by the
// acquisition pipeline: the plugin's own require() calls for it will be
// satisfied by a static export or by falling through to hostRequire
// instead (§4.E resolution steps 2 and 5).
func (f *dependencyFilter) skip(depName string) bool {
	if _, ok := f.static[depName]; ok {
		return true
	}
	if f.hostResolvable != nil && f.hostResolvable(depName) {
		return true
	}
	for _, re := range f.ignored {
		if re.MatchString(depName) {
			return true
		}
	}
	return false
}

// acquirer runs the acquisition pipeline: validate, short-circuit,
// resolve, download, recurse, link. It owns no state of its own beyond
// its collaborators, so a single acquirer instance is reused across
// every install call a PluginManager makes.
type acquirer struct {
	vm          *versionManager
	store       *store
	topFetchers map[SourceKind]fetcher
	depFetcher  fetcher // always the registry: npm semantics resolve a package's own dependencies from the registry regardless of how the package itself was installed.
	filter      *dependencyFilter
	logger      Logger
}

func newAcquirer(vm *versionManager, s *store, topFetchers map[SourceKind]fetcher, depFetcher fetcher, filter *dependencyFilter, logger Logger) *acquirer {
	return &acquirer{
		vm:          vm,
		store:       s,
		topFetchers: topFetchers,
		depFetcher:  depFetcher,
		filter:      filter,
		logger:      logger,
	}
}

// install resolves and materializes a top-level plugin from source,
// recursing into its dependency tree, and returns its flattened info.
func (a *acquirer) install(ctx context.Context, source SourceKind, name, selector string, opts InstallOptions) (*PluginInfo, error) {
	if err := validatePluginName(name); err != nil {
		return nil, err
	}

	if !opts.Force && !opts.NoCache {
		if versions := a.vm.versionsOf(name); len(versions) > 0 {
			if v, ok := findSatisfying(versions, selector); ok {
				a.logger.Debug("plugin already installed, skipping fetch", "name", name, "version", v)
				return a.infoFor(name, v)
			}
		}
	}

	f, ok := a.topFetchers[source]
	if !ok {
		return nil, NewFetchFailedError(source, name, errUnsupportedSource(source))
	}

	manifest, err := f.resolve(ctx, name, selector)
	if err != nil {
		return nil, err
	}

	if manifest.Version == defaultInlineVersion {
		opts.Force = true
	}

	if err := a.materialize(ctx, f, manifest, opts); err != nil {
		return nil, err
	}

	if err := a.vm.unlinkPlugin(manifest.Name, manifest.Version); err != nil {
		return nil, err
	}
	if err := a.vm.installTopLevel(manifest.Name, manifest.Version); err != nil {
		return nil, err
	}

	details, err := a.installDependencies(ctx, manifest)
	if err != nil {
		return nil, err
	}

	return a.buildInfo(manifest, details), nil
}

// installDependencies recurses depth-first into manifest's declared
// dependencies, linking each resolved (depName, depVersion) to
// (manifest.Name, manifest.Version) in the version graph. Errors from
// optionalDependencies are logged and swallowed; the parent install
// proceeds without them (§4.C, §7).
func (a *acquirer) installDependencies(ctx context.Context, manifest *PackageManifest) (map[string]*PackageManifest, error) {
	details := make(map[string]*PackageManifest)

	for depName, depSelector := range manifest.Dependencies {
		if a.filter.skip(depName) {
			continue
		}
		depManifest, err := a.installDependency(ctx, manifest.Name, manifest.Version, depName, depSelector)
		if err != nil {
			return nil, err
		}
		details[depName] = depManifest
	}

	for depName, depSelector := range manifest.OptionalDependencies {
		if a.filter.skip(depName) {
			continue
		}
		depManifest, err := a.installDependency(ctx, manifest.Name, manifest.Version, depName, depSelector)
		if err != nil {
			a.logger.Warn("optional dependency failed, continuing", "plugin", manifest.Name, "dependency", depName, "error", err.Error())
			continue
		}
		details[depName] = depManifest
	}

	return details, nil
}

// installDependency resolves and, if necessary, downloads a single
// dependency, then links it to its parent in the version graph. A
// dependency already present in .versions/ under a satisfying version
// is reused without a new download, and linking never downgrades the
// dependency's own active view (§4.D, §4.C edge case).
func (a *acquirer) installDependency(ctx context.Context, pluginName, pluginVersion, depName, depSelector string) (*PackageManifest, error) {
	var manifest *PackageManifest

	if existing := a.vm.versionsOf(depName); len(existing) > 0 {
		if v, ok := findSatisfying(existing, depSelector); ok {
			manifest = &PackageManifest{Name: depName, Version: v, Source: SourceRegistry}
		}
	}

	if manifest == nil {
		resolved, err := a.depFetcher.resolve(ctx, depName, depSelector)
		if err != nil {
			return nil, err
		}
		manifest = resolved
		if err := a.materialize(ctx, a.depFetcher, manifest, InstallOptions{}); err != nil {
			return nil, err
		}
	}

	if err := a.vm.link(pluginName, pluginVersion, depName, manifest.Version); err != nil {
		return nil, err
	}

	nested, err := a.resolveManifestDetails(ctx, manifest)
	if err != nil {
		return nil, err
	}
	if _, err := a.installDependencies(ctx, nested); err != nil {
		return nil, err
	}

	return manifest, nil
}

// resolveManifestDetails re-reads a dependency's own package.json out
// of its versioned store directory so transitive dependencies can be
// recursed into, without re-fetching a manifest already on disk.
func (a *acquirer) resolveManifestDetails(ctx context.Context, manifest *PackageManifest) (*PackageManifest, error) {
	return readManifestFile(a.store.versionDir(manifest.Name, manifest.Version))
}

// materialize downloads manifest's files into its versioned store slot
// unless that slot already exists and the caller neither forced a
// reinstall nor requested NoCache.
func (a *acquirer) materialize(ctx context.Context, f fetcher, manifest *PackageManifest, opts InstallOptions) error {
	if a.store.hasVersion(manifest.Name, manifest.Version) && !opts.Force && !opts.NoCache {
		return nil
	}
	dest := a.store.versionDir(manifest.Name, manifest.Version)
	if err := removeAndRecreate(dest); err != nil {
		return err
	}
	return f.download(ctx, manifest, dest)
}

// infoFor builds a PluginInfo for an already-installed (name, version)
// without touching the network, used by the already-installed
// short-circuit.
func (a *acquirer) infoFor(name, version string) (*PluginInfo, error) {
	manifest, err := readManifestFile(a.store.versionDir(name, version))
	if err != nil {
		return nil, err
	}
	return a.buildInfo(manifest, nil), nil
}

// buildInfo assembles the PluginInfo the PluginManager façade returns
// from install calls, flattening each dependency to the version it was
// actually bound to rather than its declared selector (§3): details
// (when install just resolved it) wins, falling back to whatever the
// version graph already has linked for an infoFor call that never
// touched the network.
func (a *acquirer) buildInfo(manifest *PackageManifest, details map[string]*PackageManifest) *PluginInfo {
	deps := make(map[string]string, len(manifest.Dependencies))
	for name, selector := range manifest.Dependencies {
		switch {
		case details[name] != nil:
			deps[name] = details[name].Version
		default:
			if v, ok := a.vm.resolveFor(manifest.Name, manifest.Version, name); ok {
				deps[name] = v
			} else {
				// never linked: skipped by the dependency filter (ignored,
				// static, or host-resolvable). No bound version exists, so
				// the declared selector is the closest thing to report.
				deps[name] = selector
			}
		}
	}
	location := a.store.versionDir(manifest.Name, manifest.Version)
	return &PluginInfo{
		Name:              manifest.Name,
		Version:           manifest.Version,
		MainFile:          filepath.Join(location, manifest.mainOrDefault()),
		Location:          location,
		Dependencies:      deps,
		DependencyDetails: details,
	}
}
