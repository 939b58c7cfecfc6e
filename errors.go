// errors.go: structured error definitions for the plugin manager
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"github.com/agilira/go-errors"
)

// Error codes, one block per error kind named in the specification.
const (
	ErrCodeInvalidPluginName = "PLUGIN_1001"
	ErrCodeNotFound          = "PLUGIN_1002"
	ErrCodeFetchFailed       = "PLUGIN_1003"
	ErrCodeVersionConflict   = "PLUGIN_1004"
	ErrCodeModuleNotFound    = "PLUGIN_1005"
	ErrCodeExecutionError    = "PLUGIN_1006"
	ErrCodeLockBusy          = "PLUGIN_1007"
)

// NewInvalidPluginNameError reports a malformed plugin name passed to a
// public method: empty, a relative path, or failing the registry-name
// rules.
func NewInvalidPluginNameError(name string) *errors.Error {
	return errors.New(ErrCodeInvalidPluginName, "invalid plugin name").
		WithUserMessage("plugin name must be non-empty, not a path, and optionally @scope/name").
		WithContext("name", name).
		WithSeverity("error")
}

// NewNotFoundError reports that a fetcher's resolve step could not
// locate the requested name and selector.
func NewNotFoundError(name, selector string, cause error) *errors.Error {
	e := errors.New(ErrCodeNotFound, "package not found").
		WithUserMessage("no version of the package satisfies the requested selector").
		WithContext("name", name).
		WithContext("selector", selector).
		WithSeverity("error")
	if cause != nil {
		return errors.Wrap(cause, ErrCodeNotFound, "package not found").
			WithUserMessage("no version of the package satisfies the requested selector").
			WithContext("name", name).
			WithContext("selector", selector).
			WithSeverity("error")
	}
	return e
}

// NewFetchFailedError wraps a network or HTTP status error surfaced by
// a fetcher's resolve or download step.
func NewFetchFailedError(source SourceKind, name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeFetchFailed, "fetch failed").
		WithUserMessage("failed to resolve or download the package").
		WithContext("source", string(source)).
		WithContext("name", name).
		WithSeverity("error").
		AsRetryable()
}

// NewVersionConflictError reports that a dependency's required
// selector cannot be satisfied given host or static constraints.
func NewVersionConflictError(depName, selector string) *errors.Error {
	return errors.New(ErrCodeVersionConflict, "version conflict").
		WithUserMessage("the declared dependency selector cannot be satisfied").
		WithContext("dependency", depName).
		WithContext("selector", selector).
		WithSeverity("error")
}

// NewModuleNotFoundError reports that the loader could not resolve a
// require() call through any of the resolution steps in §4.E.
func NewModuleNotFoundError(spec, fromFile string) *errors.Error {
	return errors.New(ErrCodeModuleNotFound, "cannot find module").
		WithUserMessage("the requested module could not be resolved").
		WithContext("specifier", spec).
		WithContext("from", fromFile).
		WithSeverity("error")
}

// NewExecutionError wraps a panic or thrown error from plugin code
// evaluated inside the sandbox. Never cached: the next require() call
// re-runs the module from scratch.
func NewExecutionError(file string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeExecutionError, "plugin execution failed").
		WithUserMessage("the plugin code threw during evaluation").
		WithContext("file", file).
		WithSeverity("error")
}

// NewLockBusyError reports that the filesystem lock could not be
// acquired within lockWait.
func NewLockBusyError(pluginsPath string, waited string) *errors.Error {
	return errors.New(ErrCodeLockBusy, "plugin store lock busy").
		WithUserMessage("another writer currently owns the plugin store").
		WithContext("plugins_path", pluginsPath).
		WithContext("waited", waited).
		WithSeverity("warning").
		AsRetryable()
}
