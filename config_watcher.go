// config_watcher.go: hot reload of a PluginManager's file-based
// configuration override (§1 ambient stack), plus the audit trail
// every mutating façade call emits (§3 supplemented features).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// configWatcher watches Options.ConfigPath for changes and swaps the
// PluginManager's IgnoredDependencies/registry-URL override atomically
// (StaticDependencies is not file-configurable), and emits an audit trail entry for every
// mutating façade call when AuditLogPath is configured.
type configWatcher struct {
	mgr *PluginManager

	watcher     *argus.Watcher
	auditLogger *argus.AuditLogger

	configPath string
	current    atomic.Pointer[fileConfig]

	enabled  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	mu       sync.Mutex

	logger Logger
}

func newConfigWatcher(mgr *PluginManager, cfg ManagerConfig) (*configWatcher, error) {
	w := &configWatcher{mgr: mgr, configPath: cfg.ConfigPath, logger: cfg.Logger}

	if cfg.AuditLogPath != "" {
		auditLogger, err := argus.NewAuditLogger(argus.AuditConfig{
			Enabled:       true,
			OutputFile:    cfg.AuditLogPath,
			MinLevel:      argus.AuditInfo,
			BufferSize:    256,
			FlushInterval: 2 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("jsplugins: creating audit logger: %w", err)
		}
		w.auditLogger = auditLogger
	}

	if cfg.ConfigPath == "" {
		return w, nil
	}

	w.watcher = argus.New(argus.Config{
		PollInterval:         2 * time.Second,
		CacheTTL:             1 * time.Second,
		MaxWatchedFiles:      1,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, path string) {
			w.logger.Error("config file watch error", "error", err, "path", path)
		},
	})
	return w, nil
}

// start loads configPath once synchronously, applies it, and begins
// watching for subsequent changes. A nil configPath makes start a
// no-op beyond whatever audit logger newConfigWatcher already built.
func (w *configWatcher) start() error {
	if w.watcher == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped.Load() {
		return fmt.Errorf("jsplugins: config watcher already stopped")
	}
	if !w.enabled.CompareAndSwap(false, true) {
		return nil
	}

	fc, err := loadFileConfig(w.configPath)
	if err != nil {
		w.enabled.Store(false)
		return err
	}
	w.apply(fc)

	if err := w.watcher.Watch(w.configPath, w.handleChange); err != nil {
		w.enabled.Store(false)
		return fmt.Errorf("jsplugins: watching %s: %w", w.configPath, err)
	}
	if err := w.watcher.Start(); err != nil {
		w.enabled.Store(false)
		return fmt.Errorf("jsplugins: starting config watcher: %w", err)
	}
	w.logger.Info("config watcher started", "path", w.configPath)
	return nil
}

// stop releases the underlying argus watcher and flushes the audit
// logger, exactly once regardless of how many times it is called.
func (w *configWatcher) stop() error {
	var stopErr error
	w.stopOnce.Do(func() {
		w.stopped.Store(true)
		if w.watcher != nil && w.enabled.Load() {
			stopErr = w.watcher.Stop()
		}
		if w.auditLogger != nil {
			if err := w.auditLogger.Close(); err != nil && stopErr == nil {
				stopErr = err
			}
		}
	})
	return stopErr
}

func (w *configWatcher) handleChange(event argus.ChangeEvent) {
	if event.IsDelete {
		w.logger.Warn("config file deleted, keeping last known configuration", "path", event.Path)
		return
	}
	fc, err := loadFileConfig(w.configPath)
	if err != nil {
		w.logger.Error("failed to reload config file", "path", event.Path, "error", err)
		return
	}
	w.apply(fc)
	w.audit("config_reloaded", map[string]any{"path": event.Path})
}

func (w *configWatcher) apply(fc fileConfig) {
	w.current.Store(&fc)
	w.mgr.applyFileConfig(fc)
}

// audit emits one argus.AuditLogger entry for a mutating façade
// operation; a nil auditLogger (AuditLogPath unset) makes this a
// no-op.
func (w *configWatcher) audit(eventType string, context map[string]any) {
	if w.auditLogger == nil {
		return
	}
	if context == nil {
		context = make(map[string]any)
	}
	context["component"] = "jsplugins"
	context["pid"] = os.Getpid()
	w.auditLogger.LogSecurityEvent(eventType, "plugin manager operation", context)
}
