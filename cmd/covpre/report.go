package main

import (
	"os"
	"path/filepath"

	"github.com/miku/covpre/dataset"
	"github.com/miku/covpre/report"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Render charts from an exported table",
	Long: `Report reads a previously exported table, by default covid19_preprints.csv
or covid19_preprints.csv.gz from the output directory, and renders daily,
weekly and cumulative counts per repository.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			name = filepath.Join(c.OutputDir, dataset.CSVName)
			if _, err := os.Stat(name); os.IsNotExist(err) {
				name += ".gz"
			}
		}
		threshold, _ := cmd.Flags().GetInt("threshold")
		if threshold == 0 {
			threshold = c.ReportThreshold
		}
		_, err = writeReport(c.OutputDir, name, threshold)
		return err
	},
}

// writeReport reads an exported table back and renders the charts into dir.
func writeReport(dir, table string, threshold int) ([]string, error) {
	records, err := dataset.ReadFile(table)
	if err != nil {
		return nil, err
	}
	paths, err := report.Write(dir, records, threshold)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		log.WithFields(log.Fields{"file": p, "records": len(records)}).Info("wrote chart")
	}
	return paths, nil
}

func init() {
	reportCmd.Flags().Int("threshold", 0, "repositories with fewer records are grouped as other (default 50)")
	rootCmd.AddCommand(reportCmd)
}
