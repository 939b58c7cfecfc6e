// root.go: the jsplugin CLI's base command.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	jsplugins "github.com/agilira/js-plugins"
	"github.com/spf13/cobra"
)

var pluginsPath string

// RootCmd is the base command when jsplugin is called without any
// subcommands.
var RootCmd = &cobra.Command{
	Use:   "jsplugin [sub-command]",
	Short: "Operate a jsplugins plugin store from a shell",
	Long: `jsplugin drives a PluginManager from the command line: install,
uninstall, list, and run CommonJS packages against an on-disk plugin
store, the operational surface a host program's operators use outside
of the Go API itself.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	DisableAutoGenTag: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&pluginsPath, "plugins-path", "", "plugin store directory (default: <cwd>/plugin_packages)")
}

// Execute adds all child commands to RootCmd and runs it. Called once
// by main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newManager builds a PluginManager from the --plugins-path flag,
// shared by every subcommand that touches the store.
func newManager() (*jsplugins.PluginManager, error) {
	mgr, err := jsplugins.NewManager(jsplugins.Options{PluginsPath: pluginsPath})
	if err != nil {
		return nil, fmt.Errorf("opening plugin store: %w", err)
	}
	return mgr, nil
}
