// Package config loads stripscan settings from flags, environment, .env and config files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jmylchreest/stripscan/internal/classify"
	imageutil "github.com/jmylchreest/stripscan/internal/image"
)

// Configuration keys.
const (
	KeyThreshold      = "threshold"
	KeyTable          = "table"
	KeyMetric         = "metric"
	KeyListen         = "listen"
	KeyMaxUploadBytes = "max_upload_bytes"
	KeyMaxPixels      = "max_pixels"
	KeyFetchTimeout   = "fetch_timeout"
	KeyLogJSON        = "log_json"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. STRIPSCAN_THRESHOLD.
	EnvPrefix = "STRIPSCAN"

	// DefaultListen is the serve command's default listen address.
	DefaultListen = ":8080"

	// DefaultMaxUploadBytes caps uploaded and fetched images.
	DefaultMaxUploadBytes = 10 << 20

	// DefaultMaxPixels caps the decoded area of any image.
	DefaultMaxPixels = imageutil.DefaultMaxPixels

	// DefaultFetchTimeout bounds remote image downloads.
	DefaultFetchTimeout = 10 * time.Second
)

// ErrThresholdRequired is returned when no classification threshold was configured.
var ErrThresholdRequired = errors.New("threshold is required (set --threshold, STRIPSCAN_THRESHOLD or 'threshold' in the config file)")

// Config holds resolved settings.
type Config struct {
	// Threshold is nil when it was not set anywhere; there is no default.
	Threshold      *float64
	TablePath      string
	Metric         classify.Metric
	Listen         string
	MaxUploadBytes int64
	MaxPixels      int
	FetchTimeout   time.Duration
	LogJSON        bool
}

// NewViper returns a viper instance seeded with defaults, a .env file from
// the working directory (if any), STRIPSCAN_* environment variables and
// either the given config file or stripscan.yaml from the usual locations.
func NewViper(configFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyMetric, string(classify.MetricRGB))
	v.SetDefault(KeyListen, DefaultListen)
	v.SetDefault(KeyMaxUploadBytes, DefaultMaxUploadBytes)
	v.SetDefault(KeyMaxPixels, DefaultMaxPixels)
	v.SetDefault(KeyFetchTimeout, DefaultFetchTimeout)
	v.SetDefault(KeyLogJSON, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	if err := v.BindEnv(KeyThreshold); err != nil {
		return nil, err
	}
	if err := v.BindEnv(KeyTable); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return v, nil
	}

	v.SetConfigName("stripscan")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "stripscan"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Load resolves a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		TablePath:      v.GetString(KeyTable),
		Metric:         classify.Metric(strings.ToLower(v.GetString(KeyMetric))),
		Listen:         v.GetString(KeyListen),
		MaxUploadBytes: v.GetInt64(KeyMaxUploadBytes),
		MaxPixels:      v.GetInt(KeyMaxPixels),
		FetchTimeout:   v.GetDuration(KeyFetchTimeout),
		LogJSON:        v.GetBool(KeyLogJSON),
	}
	if v.IsSet(KeyThreshold) {
		th := v.GetFloat64(KeyThreshold)
		cfg.Threshold = &th
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for out-of-range values.
// A missing threshold is not an error here; see RequireThreshold.
func (c Config) Validate() error {
	if c.Threshold != nil && *c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %v", *c.Threshold)
	}
	if !slices.Contains(classify.ValidMetrics(), c.Metric) {
		return fmt.Errorf("invalid metric: %s (valid metrics: %v)", c.Metric, classify.ValidMetrics())
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxPixels <= 0 {
		return fmt.Errorf("max_pixels must be positive, got %d", c.MaxPixels)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	return nil
}

// RequireThreshold returns the configured threshold or ErrThresholdRequired.
func (c Config) RequireThreshold() (float64, error) {
	if c.Threshold == nil {
		return 0, ErrThresholdRequired
	}
	return *c.Threshold, nil
}

// ReferenceTable loads the configured table, falling back to the built-in copper table.
func (c Config) ReferenceTable() (*classify.ReferenceTable, error) {
	if c.TablePath == "" {
		return classify.DefaultCopperTable(), nil
	}
	return classify.LoadTable(c.TablePath)
}
