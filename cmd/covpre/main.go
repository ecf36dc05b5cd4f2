// covpre harvests metadata of COVID-19 related preprints from Crossref,
// DataCite, arXiv and RePEc and writes a single CSV file, a metadata sidecar
// and a few charts.
//
//	$ covpre harvest --sample-date 2020-06-30
//	$ covpre report
//	$ covpre sources
//
// Settings are read from ./covpre.yaml or $XDG_CONFIG_HOME/covpre/covpre.yaml
// and from COVPRE_* environment variables, e.g. COVPRE_HTTP_CROSSREF_MAILTO.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/miku/covpre"
	"github.com/miku/covpre/config"
	"github.com/sethgrid/pester"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   covpre.AppName,
	Short: "Collect metadata of COVID-19 preprints",
	Long: `covpre harvests preprint metadata from Crossref, DataCite, arXiv and RePEc,
keeps records matching a topic pattern, assigns repository names, removes
duplicates and writes a flat CSV table plus charts of daily and weekly counts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./covpre.yaml or $XDG_CONFIG_HOME/covpre/covpre.yaml)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.String("log-format", "text", "log format, text or json")
	flags.String("data-dir", "", "base directory for feeds and outputs")
	flags.String("output-dir", "", "directory for the table and charts")
	bindFlags(flags, map[string]string{
		"verbose":    "verbose",
		"log-format": "log_format",
		"data-dir":   "data_dir",
		"output-dir": "output_dir",
	})
}

// bindFlags binds flags to viper keys.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(covpre.AppName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, covpre.AppName))
	}
	viper.SetEnvPrefix(strings.ToUpper(covpre.AppName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	switch {
	case err == nil:
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	case cfgFile != "":
		fmt.Fprintln(os.Stderr, "cannot read config:", err)
		os.Exit(1)
	}
}

func setupLogging() error {
	switch f := viper.GetString("log_format"); f {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format: %s", f)
	}
	log.SetOutput(os.Stderr)
	if viper.GetBool("verbose") {
		log.SetLevel(log.DebugLevel)
	}
	return nil
}

// loadConfig merges defaults, config file, environment and flags.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// newClient returns a retrying HTTP client.
func newClient(c *config.Config) *pester.Client {
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = c.HTTP.MaxRetries
	client.RetryOnHTTP429 = true
	client.Timeout = c.HTTP.Timeout
	return client
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
