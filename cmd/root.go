package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/chartlens/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "chartlens",
	Short: "chartlens: early-success metrics and dashboards for music chart data",
	Long: `chartlens loads weekly music chart files (CSV/TSV/XLSX), derives each song's
peak rank in its first weeks on the chart, and answers questions about early
success and longevity from the command line or through an HTTP dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.chartlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	if err := c.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: invalid config, using defaults: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
}

// settings returns the loaded configuration or built-in defaults.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		EarlyWeeks:        4,
		RankMin:           1,
		RankMax:           50,
		TopN:              10,
		HeatmapMaxArtists: 25,
		ListenAddr:        ":8501",
		Watch:             true,
		LogLevel:          "info",
		ChartWidth:        800,
		ChartHeight:       480,
	}
}
