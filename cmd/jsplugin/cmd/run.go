// run.go: `jsplugin run` — requires an installed package, or evaluates
// an inline script against the store, and prints its export.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runScriptFile string

// RunCmd requires an installed package by name, or evaluates a script
// file against the store's active view if --script is given.
var RunCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Require an installed package or evaluate a script",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		var exports any
		switch {
		case runScriptFile != "":
			data, err := os.ReadFile(runScriptFile)
			if err != nil {
				return err
			}
			exports, err = mgr.RunScript(string(data))
			if err != nil {
				return err
			}
		case len(args) == 1:
			exports, err = mgr.Require(args[0])
			if err != nil {
				return err
			}
		default:
			return cmd.Help()
		}

		fmt.Printf("%v\n", exports)
		return nil
	},
}

func init() {
	RunCmd.Flags().StringVar(&runScriptFile, "script", "", "path to a script file to evaluate instead of requiring a package")
	RootCmd.AddCommand(RunCmd)
}
