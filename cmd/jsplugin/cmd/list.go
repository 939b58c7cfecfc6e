// list.go: `jsplugin list` — enumerates installed top-level packages.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListCmd prints every top-level installed package's name and active
// version.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		for _, info := range mgr.List() {
			fmt.Printf("%s@%s\t%s\n", info.Name, info.Version, info.Location)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(ListCmd)
}
