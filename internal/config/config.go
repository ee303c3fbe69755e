package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/logging"
	"github.com/KaramelBytes/chartlens/internal/utils"
)

const dirName = ".chartlens"

// Global configuration structure.
type Global struct {
	DataPath string `mapstructure:"data_path" yaml:"data_path"`

	// Derivation and query defaults
	EarlyWeeks        int `mapstructure:"early_weeks" yaml:"early_weeks"`
	RankMin           int `mapstructure:"rank_min" yaml:"rank_min"`
	RankMax           int `mapstructure:"rank_max" yaml:"rank_max"`
	TopN              int `mapstructure:"top_n" yaml:"top_n"`
	HeatmapMaxArtists int `mapstructure:"heatmap_max_artists" yaml:"heatmap_max_artists"`

	// Dashboard server
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
	Watch       bool   `mapstructure:"watch" yaml:"watch"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	ViewsDir    string `mapstructure:"views_dir" yaml:"views_dir"`

	// Chart size in pixels
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`
}

// Range returns the configured default rank range.
func (c *Global) Range() analysis.RankRange {
	return analysis.RankRange{Min: c.RankMin, Max: c.RankMax}
}

// Validate checks values that would make derivation or queries meaningless.
func (c *Global) Validate() error {
	if c.EarlyWeeks < 1 {
		return fmt.Errorf("early_weeks must be >= 1, got %d", c.EarlyWeeks)
	}
	if err := c.Range().Validate(); err != nil {
		return err
	}
	if c.TopN < 0 || c.HeatmapMaxArtists < 0 || c.CacheTTLSec < 0 {
		return fmt.Errorf("top_n, heatmap_max_artists and cache_ttl_sec must be >= 0")
	}
	if c.ChartWidth < 100 || c.ChartHeight < 100 {
		return fmt.Errorf("chart size must be at least 100x100, got %dx%d", c.ChartWidth, c.ChartHeight)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", c.LogLevel)
	}
	return nil
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"data_path", "early_weeks", "rank_min", "rank_max", "top_n", "heatmap_max_artists",
	"listen_addr", "cache_ttl_sec", "watch", "log_level", "views_dir", "chart_width", "chart_height",
}

// Get returns the string form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "data_path":
		return c.DataPath, nil
	case "early_weeks":
		return strconv.Itoa(c.EarlyWeeks), nil
	case "rank_min":
		return strconv.Itoa(c.RankMin), nil
	case "rank_max":
		return strconv.Itoa(c.RankMax), nil
	case "top_n":
		return strconv.Itoa(c.TopN), nil
	case "heatmap_max_artists":
		return strconv.Itoa(c.HeatmapMaxArtists), nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "cache_ttl_sec":
		return strconv.Itoa(c.CacheTTLSec), nil
	case "watch":
		return strconv.FormatBool(c.Watch), nil
	case "log_level":
		return c.LogLevel, nil
	case "views_dir":
		return c.ViewsDir, nil
	case "chart_width":
		return strconv.Itoa(c.ChartWidth), nil
	case "chart_height":
		return strconv.Itoa(c.ChartHeight), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val into key and validates the result. On error c is unchanged.
func (c *Global) Set(key, val string) error {
	next := *c
	atoi := func() (int, error) {
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "data_path":
		next.DataPath = val
	case "early_weeks":
		next.EarlyWeeks, err = atoi()
	case "rank_min":
		next.RankMin, err = atoi()
	case "rank_max":
		next.RankMax, err = atoi()
	case "top_n":
		next.TopN, err = atoi()
	case "heatmap_max_artists":
		next.HeatmapMaxArtists, err = atoi()
	case "listen_addr":
		next.ListenAddr = val
	case "cache_ttl_sec":
		next.CacheTTLSec, err = atoi()
	case "watch":
		next.Watch, err = strconv.ParseBool(val)
		if err != nil {
			err = fmt.Errorf("invalid bool for watch: %v", val)
		}
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	case "views_dir":
		next.ViewsDir = val
	case "chart_width":
		next.ChartWidth, err = atoi()
	case "chart_height":
		next.ChartHeight, err = atoi()
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.chartlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.chartlens/config.yaml) > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CHARTLENS")
	v.AutomaticEnv()

	v.SetDefault("data_path", "")
	v.SetDefault("early_weeks", analysis.DefaultEarlyWeeks)
	v.SetDefault("rank_min", 1)
	v.SetDefault("rank_max", 50)
	v.SetDefault("top_n", analysis.DefaultTopN)
	v.SetDefault("heatmap_max_artists", 25)
	v.SetDefault("listen_addr", ":8501")
	v.SetDefault("cache_ttl_sec", 0)
	v.SetDefault("watch", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("views_dir", "")
	v.SetDefault("chart_width", 800)
	v.SetDefault("chart_height", 480)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ViewsDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.ViewsDir = filepath.Join(dir, "views")
	}
	var err error
	if c.ViewsDir, err = utils.ExpandHome(c.ViewsDir); err != nil {
		return nil, err
	}
	if c.DataPath != "" {
		if c.DataPath, err = utils.ExpandHome(c.DataPath); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
