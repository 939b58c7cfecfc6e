// install.go: `jsplugin install` — resolves and downloads a package
// into the plugin store.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	jsplugins "github.com/agilira/js-plugins"
	"github.com/spf13/cobra"
)

var installSource string

// InstallCmd installs a single package from the configured source.
var InstallCmd = &cobra.Command{
	Use:   "install <name> <selector>",
	Short: "Install a package into the plugin store",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		source := jsplugins.SourceKind(installSource)
		info, err := mgr.Install(context.Background(), source, args[0], args[1], jsplugins.InstallOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("installed %s@%s\n", info.Name, info.Version)
		return nil
	},
}

func init() {
	InstallCmd.Flags().StringVar(&installSource, "source", string(jsplugins.SourceRegistry), "source kind: npm, github, bitbucket, path")
	RootCmd.AddCommand(InstallCmd)
}
