// uninstall.go: `jsplugin uninstall` — removes a package's top-level
// binding from the plugin store.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// UninstallCmd removes name@version's top-level binding.
var UninstallCmd = &cobra.Command{
	Use:   "uninstall <name> <version>",
	Short: "Remove a package's top-level binding from the plugin store",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		if err := mgr.Uninstall(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("uninstalled %s@%s\n", args[0], args[1])
		return nil
	},
}

func init() {
	RootCmd.AddCommand(UninstallCmd)
}
