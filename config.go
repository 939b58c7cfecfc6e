// config.go: Options and ManagerConfig, the constructor-time and
// file-loadable configuration surfaces for a PluginManager (§6).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultLockWait  = 5 * time.Second
	defaultLockStale = 30 * time.Second
)

// AuthType selects the credential shape for a git host per §6:
// {type: "basic", username, password} or {type: "token", token}.
type AuthType string

const (
	AuthNone  AuthType = ""
	AuthBasic AuthType = "basic"
	AuthToken AuthType = "token"
)

// GitAuthentication is the githubAuthentication / bitbucketAuthentication
// option shape from §6.
type GitAuthentication struct {
	Type     AuthType `json:"type,omitempty" yaml:"type,omitempty"`
	Username string   `json:"username,omitempty" yaml:"username,omitempty"`
	Password string   `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string   `json:"token,omitempty" yaml:"token,omitempty"`
}

func (a GitAuthentication) toGitAuth() gitAuth {
	return gitAuth{Type: authKind(a.Type), Username: a.Username, Password: a.Password, Token: a.Token}
}

// Options configures a PluginManager at construction time. The zero
// value is valid: ApplyDefaults fills every unset field to the
// defaults named in §6.
type Options struct {
	// Cwd anchors PluginsPath and VersionsPath when they are left
	// unset. Defaults to the process's current working directory.
	Cwd string

	// PluginsPath is the active-view root (§3). Defaults to
	// "<Cwd>/plugin_packages".
	PluginsPath string

	// VersionsPath is the versioned-view root (§3). Defaults to
	// "<PluginsPath>/.versions".
	VersionsPath string

	// Sandbox is the template of the shared sandbox RunScript evaluates
	// code in; left unset, that sandbox's process.env and global are
	// empty. It is not applied to plugins: a plugin without a template
	// from SetSandboxTemplate gets a copy of the host's environment and
	// an empty global.
	Sandbox SandboxTemplate

	// NpmRegistryURL overrides the public npm registry.
	NpmRegistryURL string

	// NpmRegistryConfig carries auth/proxy details opaque to this
	// package, passed through to the registry fetcher's HTTP client.
	NpmRegistryConfig map[string]string

	// NpmInstallMode selects whether the registry fetcher resolves a
	// selector to an already-installed satisfying version or to the
	// registry's newest satisfying one. Defaults to NpmUseCache.
	NpmInstallMode npmInstallMode

	// RequireCoreModules enables the loader's core-module resolution
	// step (§4.E step 1). Defaults to true; pass a pointer to false to
	// disable it explicitly.
	RequireCoreModules *bool

	// HostRequire is the host's own require, used as the loader's
	// last-resort resolver (§4.E step 5) and by the acquisition
	// pipeline to decide a dependency is host-resolvable and therefore
	// skipped (§4.C).
	HostRequire func(specifier string) (any, error)

	// IgnoredDependencies lists dependency names, or regular
	// expressions matched against them, that the acquisition pipeline
	// never installs (§4.C).
	IgnoredDependencies []string

	// StaticDependencies maps a dependency name directly to a
	// pre-built export value, short-circuiting both installation and
	// require() resolution for that name (§4.C, §4.E step 2).
	StaticDependencies map[string]any

	// GithubAuthentication / BitbucketAuthentication carry the git
	// host credentials from §6.
	GithubAuthentication    GitAuthentication
	BitbucketAuthentication GitAuthentication

	// LockWait is the total budget an install spends polling for the
	// store lock before failing with LockBusy. Defaults to 5s.
	LockWait time.Duration

	// LockStale is the sentinel age past which a lock is considered
	// abandoned and stolen. Defaults to 30s.
	LockStale time.Duration

	// Logger receives structured logs from every subsystem. Defaults
	// to a NoOpLogger.
	Logger Logger

	// ConfigPath, if set, names a YAML or JSON file that
	// ManagerConfig hot-reloads via argus (§1 ambient stack): the
	// file's IgnoredDependencies/NpmRegistryURL override these fields
	// for every install after a change is detected. StaticDependencies
	// is not read from the file and keeps its constructor value.
	ConfigPath string

	// AuditLogPath, if set, receives one argus.AuditLogger entry per
	// mutating façade call (install, installFromCode, uninstall,
	// uninstallAll) and per config file reload.
	AuditLogPath string
}

// ManagerConfig is the validated, defaulted form of Options that the
// rest of the package actually consumes. Building one never touches
// the filesystem beyond what Validate inspects; NewManager is
// responsible for creating PluginsPath/VersionsPath.
type ManagerConfig struct {
	Cwd                     string
	PluginsPath             string
	VersionsPath            string
	Sandbox                 SandboxTemplate
	NpmRegistryURL          string
	NpmRegistryConfig       map[string]string
	NpmInstallMode          npmInstallMode
	RequireCoreModules      bool
	HostRequire             func(specifier string) (any, error)
	IgnoredDependencies     []string
	StaticDependencies      map[string]any
	GithubAuthentication    GitAuthentication
	BitbucketAuthentication GitAuthentication
	LockWait                time.Duration
	LockStale               time.Duration
	Logger                  Logger
	ConfigPath              string
	AuditLogPath            string
}

// ApplyDefaults returns a ManagerConfig with every unset field of o
// filled to the default named in §6. o itself is left unmodified.
func (o Options) ApplyDefaults() ManagerConfig {
	cfg := ManagerConfig{
		Cwd:                     o.Cwd,
		PluginsPath:             o.PluginsPath,
		VersionsPath:            o.VersionsPath,
		Sandbox:                 o.Sandbox,
		NpmRegistryURL:          o.NpmRegistryURL,
		NpmRegistryConfig:       o.NpmRegistryConfig,
		NpmInstallMode:          o.NpmInstallMode,
		HostRequire:             o.HostRequire,
		IgnoredDependencies:     o.IgnoredDependencies,
		StaticDependencies:      o.StaticDependencies,
		GithubAuthentication:    o.GithubAuthentication,
		BitbucketAuthentication: o.BitbucketAuthentication,
		LockWait:                o.LockWait,
		LockStale:               o.LockStale,
		Logger:                  o.Logger,
		ConfigPath:              o.ConfigPath,
		AuditLogPath:            o.AuditLogPath,
	}

	if cfg.Cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.Cwd = wd
		}
	}
	if cfg.PluginsPath == "" {
		cfg.PluginsPath = filepath.Join(cfg.Cwd, "plugin_packages")
	}
	if cfg.VersionsPath == "" {
		cfg.VersionsPath = filepath.Join(cfg.PluginsPath, ".versions")
	}
	if cfg.NpmInstallMode == "" {
		cfg.NpmInstallMode = NpmUseCache
	}
	if o.RequireCoreModules == nil {
		cfg.RequireCoreModules = true
	} else {
		cfg.RequireCoreModules = *o.RequireCoreModules
	}
	if cfg.LockWait == 0 {
		cfg.LockWait = defaultLockWait
	}
	if cfg.LockStale == 0 {
		cfg.LockStale = defaultLockStale
	}
	if cfg.Logger == nil {
		cfg.Logger = NewNoOpLogger()
	}
	return cfg
}

// Validate checks cfg for the constraints the rest of the package
// relies on, decomposed per concern in the same style as the
// validate* helpers below.
func (cfg ManagerConfig) Validate() error {
	if err := cfg.validatePaths(); err != nil {
		return err
	}
	if err := cfg.validateInstallMode(); err != nil {
		return err
	}
	if err := cfg.validateTimings(); err != nil {
		return err
	}
	if err := cfg.validateAuthentications(); err != nil {
		return err
	}
	return nil
}

func (cfg ManagerConfig) validatePaths() error {
	if cfg.PluginsPath == "" {
		return fmt.Errorf("jsplugins: PluginsPath must not be empty")
	}
	if cfg.VersionsPath == "" {
		return fmt.Errorf("jsplugins: VersionsPath must not be empty")
	}
	if cfg.VersionsPath == cfg.PluginsPath {
		return fmt.Errorf("jsplugins: VersionsPath must differ from PluginsPath")
	}
	return nil
}

func (cfg ManagerConfig) validateInstallMode() error {
	switch cfg.NpmInstallMode {
	case NpmUseCache, NpmNoCache:
		return nil
	default:
		return fmt.Errorf("jsplugins: unknown NpmInstallMode %q", cfg.NpmInstallMode)
	}
}

func (cfg ManagerConfig) validateTimings() error {
	if cfg.LockWait <= 0 {
		return fmt.Errorf("jsplugins: LockWait must be positive")
	}
	if cfg.LockStale <= 0 {
		return fmt.Errorf("jsplugins: LockStale must be positive")
	}
	return nil
}

func (cfg ManagerConfig) validateAuthentications() error {
	if err := validateAuth(cfg.GithubAuthentication); err != nil {
		return fmt.Errorf("jsplugins: githubAuthentication: %w", err)
	}
	if err := validateAuth(cfg.BitbucketAuthentication); err != nil {
		return fmt.Errorf("jsplugins: bitbucketAuthentication: %w", err)
	}
	return nil
}

func validateAuth(a GitAuthentication) error {
	switch a.Type {
	case AuthNone:
		return nil
	case AuthBasic:
		if a.Username == "" {
			return fmt.Errorf("basic auth requires a username")
		}
		return nil
	case AuthToken:
		if a.Token == "" {
			return fmt.Errorf("token auth requires a token")
		}
		return nil
	default:
		return fmt.Errorf("unknown auth type %q", a.Type)
	}
}

// fileConfig is the subset of ManagerConfig a ConfigPath file may
// override at runtime, matching the teacher's split of a small
// hot-reloadable slice of a larger static config.
type fileConfig struct {
	NpmRegistryURL      string   `yaml:"npmRegistryUrl" json:"npmRegistryUrl"`
	IgnoredDependencies []string `yaml:"ignoredDependencies" json:"ignoredDependencies"`
}

// loadFileConfig reads and parses path as YAML (or JSON, a valid YAML
// subset), matching the teacher's "machine-authored JSON, human-authored
// YAML" split named in §1.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("jsplugins: parsing %s: %w", path, err)
	}
	return fc, nil
}
