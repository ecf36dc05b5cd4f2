package main

import (
	"fmt"
	"sort"

	"github.com/miku/covpre/feeds"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List sources and the repositories assigned to them",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		tables, err := c.Rules()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, name := range feeds.Names {
			seen := make(map[string]bool)
			var labels []string
			for _, r := range tables[name] {
				label := r.Label
				if label == "" {
					label = "<" + r.LabelFrom + ">"
				}
				if !seen[label] {
					seen[label] = true
					labels = append(labels, label)
				}
			}
			sort.Strings(labels)
			fmt.Fprintln(w, name)
			for _, l := range labels {
				fmt.Fprintf(w, "\t%s\n", l)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
