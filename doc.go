// Package jsplugins implements a dynamic plugin manager for Node-style
// CommonJS packages: it installs, versions, isolates and executes
// third-party JavaScript packages inside a long-running Go host.
//
// The manager is built around three subsystems:
//
//   - A version manager that owns a content-addressed, on-disk store of
//     installed package versions together with a dependency graph and
//     reference counts that decide when a version becomes garbage.
//   - An acquisition pipeline that resolves a requested name and
//     version selector into a concrete package and materialises its
//     files from a registry, a git host, a local path, or inline
//     source.
//   - A sandboxed module loader that re-implements Node's CommonJS
//     resolution and execution so each plugin sees exactly the
//     dependency versions the version manager has linked to it, and
//     runs inside an isolated global/process context.
//
// Basic usage:
//
//	mgr, err := jsplugins.NewManager(jsplugins.Options{
//		Cwd: "/var/lib/myapp",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer mgr.Close()
//
//	info, err := mgr.InstallFromNpm(ctx, "cookie", "0.3.1")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cookie, err := mgr.Require("cookie")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package jsplugins
