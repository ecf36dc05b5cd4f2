// Package config holds run settings for covpre. Values come from defaults, an
// optional YAML file, COVPRE_* environment variables and command line flags.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/miku/covpre"
	"github.com/miku/covpre/classify"
	"github.com/miku/covpre/dataset"
	"github.com/miku/covpre/dateutil"
	"github.com/miku/covpre/feeds"
	"github.com/miku/covpre/report"
	"github.com/miku/covpre/schema/preprint"
	"github.com/miku/covpre/topic"
	"github.com/spf13/viper"
)

// DefaultStartDate is the first day of the harvest window.
const DefaultStartDate = "2020-01-01"

// DefaultDatasetURL is written into the metadata sidecar.
const DefaultDatasetURL = "https://github.com/nicholasmfraser/covid19_preprints"

// HTTP settings shared by all harvesters.
type HTTP struct {
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`
	CrossrefMailto string        `mapstructure:"crossref_mailto" yaml:"crossref_mailto"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// MaxRetries applies to both transport errors and undecodable pages.
	MaxRetries          int           `mapstructure:"max_retries" yaml:"max_retries"`
	CrossrefRows        int           `mapstructure:"crossref_rows" yaml:"crossref_rows"`
	DataCitePageSize    int           `mapstructure:"datacite_page_size" yaml:"datacite_page_size"`
	ArxivPageSize       int           `mapstructure:"arxiv_page_size" yaml:"arxiv_page_size"`
	ArxivInterval       time.Duration `mapstructure:"arxiv_interval" yaml:"arxiv_interval"`
	// ArxivTerms are searched in arXiv titles and abstracts. They should
	// cover the topic pattern, since arXiv is queried by term.
	ArxivTerms          []string      `mapstructure:"arxiv_terms" yaml:"arxiv_terms"`
	RePEcSet            string        `mapstructure:"repec_set" yaml:"repec_set"`
	AcceptableMissRatio float64       `mapstructure:"acceptable_miss_ratio" yaml:"acceptable_miss_ratio"`
}

// Landing page re-dating.
type Landing struct {
	Disabled    bool          `mapstructure:"disabled" yaml:"disabled"`
	Sources     []string      `mapstructure:"sources" yaml:"sources"`
	Workers     int           `mapstructure:"workers" yaml:"workers"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	ResolverURL string        `mapstructure:"resolver_url" yaml:"resolver_url"`
}

// Config for a harvest run.
type Config struct {
	// DataDir is the base directory. Empty FeedDir and OutputDir mean
	// subdirectories of it.
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir"`
	FeedDir   string `mapstructure:"feed_dir" yaml:"feed_dir"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// StartDate and SampleDate bound the window, as YYYY-MM-DD, inclusive.
	StartDate    string   `mapstructure:"start_date" yaml:"start_date"`
	SampleDate   string   `mapstructure:"sample_date" yaml:"sample_date"`
	TopicPattern string   `mapstructure:"topic_pattern" yaml:"topic_pattern"`
	Sources      []string `mapstructure:"sources" yaml:"sources"`
	// RulesFile replaces the embedded classifier rules, if set.
	RulesFile       string  `mapstructure:"rules_file" yaml:"rules_file"`
	Compress        bool    `mapstructure:"compress" yaml:"compress"`
	DatasetURL      string  `mapstructure:"dataset_url" yaml:"dataset_url"`
	Workers         int     `mapstructure:"workers" yaml:"workers"`
	ReportThreshold int     `mapstructure:"report_threshold" yaml:"report_threshold"`
	HTTP            HTTP    `mapstructure:"http" yaml:"http"`
	Landing         Landing `mapstructure:"landing" yaml:"landing"`
}

// Default returns a configuration with the sample date set to today.
func Default() *Config {
	c := &Config{
		DataDir:         filepath.Join(xdg.DataHome, covpre.AppName),
		StartDate:       DefaultStartDate,
		SampleDate:      time.Now().UTC().Format(preprint.DateLayout),
		TopicPattern:    topic.DefaultPattern,
		Sources:         append([]string(nil), feeds.Names...),
		DatasetURL:      DefaultDatasetURL,
		Workers:         4,
		ReportThreshold: report.DefaultThreshold,
		HTTP: HTTP{
			UserAgent:     fmt.Sprintf("%s/%s", covpre.AppName, covpre.Version),
			Timeout:       60 * time.Second,
			MaxRetries:    3,
			CrossrefRows:  1000,
			ArxivPageSize: 500,
			ArxivInterval: feeds.DefaultArxivInterval,
			ArxivTerms:    append([]string(nil), feeds.DefaultArxivTerms...),
		},
		Landing: Landing{
			Sources:     []string{"SSRN"},
			Workers:     1,
			CacheTTL:    feeds.DefaultCacheTTL,
			ResolverURL: feeds.DefaultResolverURL,
		},
	}
	c.resolveDirs()
	return c
}

func (c *Config) resolveDirs() {
	if c.FeedDir == "" {
		c.FeedDir = filepath.Join(c.DataDir, "feeds")
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.DataDir, "data")
	}
}

// SetDefaults registers the defaults with viper, so that environment
// variables can override nested keys. Feed and output dirs follow the data
// dir, unless set.
func SetDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("data_dir", c.DataDir)
	v.SetDefault("feed_dir", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("start_date", c.StartDate)
	v.SetDefault("sample_date", c.SampleDate)
	v.SetDefault("topic_pattern", c.TopicPattern)
	v.SetDefault("sources", c.Sources)
	v.SetDefault("rules_file", c.RulesFile)
	v.SetDefault("compress", c.Compress)
	v.SetDefault("dataset_url", c.DatasetURL)
	v.SetDefault("workers", c.Workers)
	v.SetDefault("report_threshold", c.ReportThreshold)
	v.SetDefault("http.user_agent", c.HTTP.UserAgent)
	v.SetDefault("http.crossref_mailto", c.HTTP.CrossrefMailto)
	v.SetDefault("http.timeout", c.HTTP.Timeout)
	v.SetDefault("http.max_retries", c.HTTP.MaxRetries)
	v.SetDefault("http.crossref_rows", c.HTTP.CrossrefRows)
	v.SetDefault("http.datacite_page_size", c.HTTP.DataCitePageSize)
	v.SetDefault("http.arxiv_page_size", c.HTTP.ArxivPageSize)
	v.SetDefault("http.arxiv_interval", c.HTTP.ArxivInterval)
	v.SetDefault("http.arxiv_terms", c.HTTP.ArxivTerms)
	v.SetDefault("http.repec_set", c.HTTP.RePEcSet)
	v.SetDefault("http.acceptable_miss_ratio", c.HTTP.AcceptableMissRatio)
	v.SetDefault("landing.disabled", c.Landing.Disabled)
	v.SetDefault("landing.sources", c.Landing.Sources)
	v.SetDefault("landing.workers", c.Landing.Workers)
	v.SetDefault("landing.cache_ttl", c.Landing.CacheTTL)
	v.SetDefault("landing.resolver_url", c.Landing.ResolverURL)
}

// Load decodes a configuration from viper, starting from Default.
func Load(v *viper.Viper) (*Config, error) {
	c := Default()
	SetDefaults(v, c)
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c.resolveDirs()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks dates, pattern and source names.
func (c *Config) Validate() error {
	w, err := c.Window()
	if err != nil {
		return err
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("config: sample date %s before start date %s", c.SampleDate, c.StartDate)
	}
	if _, err := topic.New(c.TopicPattern); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("config: no sources")
	}
	for _, s := range c.Sources {
		if !isKnown(s) {
			return fmt.Errorf("config: unknown source: %s (want one of %s)",
				s, strings.Join(feeds.Names, ", "))
		}
	}
	if c.Workers < 0 || c.Landing.Workers < 0 || c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("config: negative worker or retry count")
	}
	if c.HTTP.AcceptableMissRatio < 0 || c.HTTP.AcceptableMissRatio > 1 {
		return fmt.Errorf("config: acceptable miss ratio must be in [0, 1]")
	}
	return nil
}

func isKnown(name string) bool {
	for _, n := range feeds.Names {
		if n == name {
			return true
		}
	}
	return false
}

// Window returns the harvest window.
func (c *Config) Window() (dataset.Window, error) {
	start, err := dateutil.ParseDay(c.StartDate)
	if err != nil {
		return dataset.Window{}, fmt.Errorf("config: start date: %w", err)
	}
	end, err := dateutil.ParseDay(c.SampleDate)
	if err != nil {
		return dataset.Window{}, fmt.Errorf("config: sample date: %w", err)
	}
	return dataset.Window{Start: start, End: end}, nil
}

// FeedOptions returns harvester options.
func (c *Config) FeedOptions() feeds.Options {
	return feeds.Options{
		UserAgent:           c.HTTP.UserAgent,
		MaxRetries:          c.HTTP.MaxRetries,
		AcceptableMissRatio: c.HTTP.AcceptableMissRatio,
		CrossrefApiEmail:    c.HTTP.CrossrefMailto,
		CrossrefRows:        c.HTTP.CrossrefRows,
		DataCitePageSize:    c.HTTP.DataCitePageSize,
		ArxivPageSize:       c.HTTP.ArxivPageSize,
		ArxivInterval:       c.HTTP.ArxivInterval,
		ArxivTerms:          c.HTTP.ArxivTerms,
		RePEcSet:            c.HTTP.RePEcSet,
	}
}

// Rules returns the classifier tables, embedded or from RulesFile.
func (c *Config) Rules() (classify.Tables, error) {
	if c.RulesFile == "" {
		return classify.Default(), nil
	}
	return classify.LoadFile(c.RulesFile)
}
