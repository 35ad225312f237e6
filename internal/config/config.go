package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SortModeTimestamp = "timestamp"
	SortModeBucket    = "bucket"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	HTTPAddr       string `mapstructure:"http_addr"`
	ProvidersFile  string `mapstructure:"providers_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	ProviderTimeoutSeconds int64         `mapstructure:"provider_timeout_seconds"`
	ProviderTimeout        time.Duration `mapstructure:"-"`
	SortMode               string        `mapstructure:"sort_mode"`
	EnrichImages           bool          `mapstructure:"enrich_images"`

	AnalysisURL            string        `mapstructure:"analysis_url"`
	AnalysisTimeoutSeconds int64         `mapstructure:"analysis_timeout_seconds"`
	AnalysisTimeout        time.Duration `mapstructure:"-"`

	NotifyIntervalSeconds int64         `mapstructure:"notify_interval"`
	NotifyInterval        time.Duration `mapstructure:"-"`
	NotifyRegionsRaw      string        `mapstructure:"notify_regions"`
	NotifyRegions         []string      `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "market-news-desk")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("providers_file", "./configs/providers.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("provider_timeout_seconds", 8)
	v.SetDefault("sort_mode", SortModeTimestamp)
	v.SetDefault("enrich_images", false)
	v.SetDefault("analysis_url", "http://localhost:8000")
	v.SetDefault("analysis_timeout_seconds", 30)
	v.SetDefault("notify_interval", 300) // seconds
	v.SetDefault("notify_regions", "all")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/published.db")
	v.SetDefault("storage_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates raw values and derives durations and lists.
func (cfg *Config) finalize() error {
	if cfg.ProviderTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid provider_timeout_seconds (must be positive seconds)")
	}
	cfg.ProviderTimeout = time.Duration(cfg.ProviderTimeoutSeconds) * time.Second

	cfg.SortMode = strings.ToLower(strings.TrimSpace(cfg.SortMode))
	switch cfg.SortMode {
	case "":
		cfg.SortMode = SortModeTimestamp
	case SortModeTimestamp, SortModeBucket:
	default:
		return fmt.Errorf("invalid sort_mode %q (expected %s or %s)", cfg.SortMode, SortModeTimestamp, SortModeBucket)
	}

	if cfg.AnalysisTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid analysis_timeout_seconds (must be positive seconds)")
	}
	cfg.AnalysisTimeout = time.Duration(cfg.AnalysisTimeoutSeconds) * time.Second

	if cfg.NotifyIntervalSeconds <= 0 {
		return fmt.Errorf("invalid notify_interval (must be positive seconds)")
	}
	cfg.NotifyInterval = time.Duration(cfg.NotifyIntervalSeconds) * time.Second
	cfg.NotifyRegions = splitList(cfg.NotifyRegionsRaw)

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
