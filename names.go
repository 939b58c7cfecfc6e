// names.go: plugin name validation, shared by the acquisition pipeline
// and the version manager's on-disk layout.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package jsplugins

import (
	"regexp"
	"strings"
)

// unscopedNamePattern matches a lowercase npm-style package name
// segment: letters, digits, dots, underscores and hyphens, not
// starting with a dot or underscore.
var unscopedNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// validatePluginName enforces the plugin name rules from the
// specification: non-empty, not a relative path, no traversal, and
// either an unscoped lowercase name or a "@scope/name" pair where both
// segments follow the same rule.
func validatePluginName(name string) error {
	if name == "" {
		return NewInvalidPluginNameError(name)
	}
	if strings.ContainsRune(name, '\x00') {
		return NewInvalidPluginNameError(name)
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "/") {
		return NewInvalidPluginNameError(name)
	}
	if strings.Contains(name, "..") {
		return NewInvalidPluginNameError(name)
	}

	if strings.HasPrefix(name, "@") {
		scope, rest, ok := strings.Cut(name, "/")
		if !ok || rest == "" || strings.Contains(rest, "/") {
			return NewInvalidPluginNameError(name)
		}
		scope = strings.TrimPrefix(scope, "@")
		if !unscopedNamePattern.MatchString(scope) || !unscopedNamePattern.MatchString(rest) {
			return NewInvalidPluginNameError(name)
		}
		return nil
	}

	if strings.Contains(name, "/") {
		return NewInvalidPluginNameError(name)
	}
	if !unscopedNamePattern.MatchString(name) {
		return NewInvalidPluginNameError(name)
	}
	return nil
}

// dirNameFor maps a package name to its directory-safe form: scoped
// names become "@scope/name" which is itself a valid relative path
// (Go's path/filepath treats the "@scope" segment as an ordinary
// directory name), matching spec.md's on-disk layout.
func dirNameFor(name string) string {
	return name
}

// versionDirName returns the "<name>@<version>" path used under
// .versions/. For a scoped name "@scope/name" this naturally produces
// "@scope/name@version", keeping the scope as the parent directory.
func versionDirName(name, version string) string {
	return name + "@" + version
}
