// main.go: jsplugin, a thin CLI over the PluginManager façade.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/agilira/js-plugins/cmd/jsplugin/cmd"

func main() {
	cmd.Execute()
}
