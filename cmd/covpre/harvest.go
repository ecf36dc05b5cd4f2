package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/miku/covpre/config"
	"github.com/miku/covpre/dataset"
	"github.com/miku/covpre/feeds"
	"github.com/miku/covpre/pipeline"
	"github.com/miku/covpre/topic"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest, filter and export preprint metadata",
	Long: `Harvest fetches all preprints posted between the start date and the sample
date from the configured sources, keeps records matching the topic pattern and
writes covid19_preprints.csv, its metadata sidecar and the charts to the output
directory. Raw feeds are cached in the feed directory, so a rerun with the same
window does not hit the APIs again.`,
	RunE: runHarvest,
}

func init() {
	flags := harvestCmd.Flags()
	flags.String("start-date", "", "first posting day, YYYY-MM-DD (default 2020-01-01)")
	flags.String("sample-date", "", "last posting day, YYYY-MM-DD (default today)")
	flags.String("topic", "", "case insensitive topic pattern")
	flags.StringSlice("sources", nil, "sources to harvest, in order")
	flags.String("rules", "", "classifier rules file, YAML")
	flags.Bool("compress", false, "gzip compress the table")
	flags.Int("workers", 0, "number of conversion workers")
	flags.String("mailto", "", "email sent to the Crossref API")
	flags.Bool("no-landing", false, "do not look up landing page dates")
	flags.Bool("no-report", false, "do not render charts")
	flags.Bool("no-cache", false, "keep raw feeds in memory only")
	bindFlags(flags, map[string]string{
		"start-date":  "start_date",
		"sample-date": "sample_date",
		"topic":       "topic_pattern",
		"sources":     "sources",
		"rules":       "rules_file",
		"compress":    "compress",
		"workers":     "workers",
		"mailto":      "http.crossref_mailto",
		"no-landing":  "landing.disabled",
	})
	rootCmd.AddCommand(harvestCmd)
}

// newPipeline wires sources, topic filter and dater from a configuration.
func newPipeline(c *config.Config, runID string) (*pipeline.Pipeline, error) {
	window, err := c.Window()
	if err != nil {
		return nil, err
	}
	filter, err := topic.New(c.TopicPattern)
	if err != nil {
		return nil, err
	}
	tables, err := c.Rules()
	if err != nil {
		return nil, err
	}
	client := newClient(c)
	p := &pipeline.Pipeline{
		Topic:   filter,
		Window:  window,
		FeedDir: c.FeedDir,
		Workers: c.Workers,
		RunID:   runID,
	}
	for _, name := range c.Sources {
		s, err := pipeline.NewSource(name, client, c.FeedOptions(), tables)
		if err != nil {
			return nil, err
		}
		p.Sources = append(p.Sources, s)
	}
	if !c.Landing.Disabled && len(c.Landing.Sources) > 0 {
		dater, err := feeds.NewLandingPageDater(client)
		if err != nil {
			return nil, err
		}
		dater.UserAgent = c.HTTP.UserAgent
		dater.Workers = c.Landing.Workers
		dater.CacheTTL = c.Landing.CacheTTL
		if c.Landing.ResolverURL != "" {
			dater.ResolverURL = c.Landing.ResolverURL
		}
		p.Dater = dater
		p.RedateSources = c.Landing.Sources
	}
	return p, nil
}

func runHarvest(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		c.FeedDir = ""
	}
	runID := uuid.New().String()
	p, err := newPipeline(c, runID)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.WithField("run", runID)
	logger.WithFields(log.Fields{
		"start":   c.StartDate,
		"sample":  c.SampleDate,
		"sources": c.Sources,
		"feeds":   c.FeedDir,
	}).Info("starting harvest")
	started := time.Now()
	records, summary, err := p.Run(ctx)
	if err != nil {
		return err
	}
	m := dataset.NewMetadata(time.Now().UTC(), p.Window.End, c.DatasetURL)
	path, err := pipeline.Export(c.OutputDir, records, m, c.Compress)
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"total":   summary.Total,
		"file":    path,
		"elapsed": time.Since(started).Round(time.Second),
	}).Info("wrote dataset")
	for _, s := range summary.Sources {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %8d raw %8d kept\n", s.Source, s.Raw, s.Kept)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%-10s %8d records in %s\n", "total", summary.Total, filepath.Base(path))
	if noReport, _ := cmd.Flags().GetBool("no-report"); noReport || len(records) == 0 {
		return nil
	}
	_, err = writeReport(c.OutputDir, path, c.ReportThreshold)
	return err
}
