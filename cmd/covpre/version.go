package main

import (
	"fmt"

	"github.com/miku/covpre"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of covpre",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", covpre.AppName, covpre.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
