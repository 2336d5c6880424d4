package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmylchreest/stripscan/internal/classify"
)

// chdirTemp runs the test from an empty directory so no stray .env or
// stripscan.yaml is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	v, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper() error = %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Threshold != nil {
		t.Errorf("Threshold = %v, want unset", *cfg.Threshold)
	}
	if _, err := cfg.RequireThreshold(); !errors.Is(err, ErrThresholdRequired) {
		t.Errorf("RequireThreshold() error = %v, want ErrThresholdRequired", err)
	}
	if cfg.Metric != classify.MetricRGB {
		t.Errorf("Metric = %q, want rgb", cfg.Metric)
	}
	if cfg.Listen != DefaultListen {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %s", cfg.FetchTimeout)
	}
	if cfg.MaxPixels != DefaultMaxPixels {
		t.Errorf("MaxPixels = %d", cfg.MaxPixels)
	}

	table, err := cfg.ReferenceTable()
	if err != nil {
		t.Fatal(err)
	}
	if table.Name() != "copper" {
		t.Errorf("default table = %q, want copper", table.Name())
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STRIPSCAN_THRESHOLD", "42.5")
	t.Setenv("STRIPSCAN_METRIC", "LAB")
	t.Setenv("STRIPSCAN_FETCH_TIMEOUT", "3s")

	v, err := NewViper("")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	th, err := cfg.RequireThreshold()
	if err != nil || th != 42.5 {
		t.Errorf("RequireThreshold() = %v, %v; want 42.5", th, err)
	}
	if cfg.Metric != classify.MetricLab {
		t.Errorf("Metric = %q, want lab", cfg.Metric)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %s, want 3s", cfg.FetchTimeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	content := "threshold: 30\nlisten: 127.0.0.1:9000\nmax_upload_bytes: 1024\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	v, err := NewViper(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if th, _ := cfg.RequireThreshold(); th != 30 {
		t.Errorf("threshold = %v, want 30", th)
	}
	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, "stripscan.yaml"), []byte("threshold: 12\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	v, err := NewViper("")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if th, _ := cfg.RequireThreshold(); th != 12 {
		t.Errorf("threshold = %v, want 12", th)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STRIPSCAN_THRESHOLD=7\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets the variable process-wide; register cleanup for it.
	t.Setenv("STRIPSCAN_THRESHOLD", "")
	os.Unsetenv("STRIPSCAN_THRESHOLD")

	v, err := NewViper("")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if th, err := cfg.RequireThreshold(); err != nil || th != 7 {
		t.Errorf("RequireThreshold() = %v, %v; want 7 from .env", th, err)
	}
}

func TestValidate(t *testing.T) {
	neg := -1.0
	base := Config{
		Metric:         classify.MetricRGB,
		Listen:         DefaultListen,
		MaxUploadBytes: DefaultMaxUploadBytes,
		MaxPixels:      DefaultMaxPixels,
		FetchTimeout:   DefaultFetchTimeout,
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative threshold", func(c *Config) { c.Threshold = &neg }},
		{"unknown metric", func(c *Config) { c.Metric = "hsv" }},
		{"zero upload size", func(c *Config) { c.MaxUploadBytes = 0 }},
		{"zero pixel limit", func(c *Config) { c.MaxPixels = 0 }},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"empty listen", func(c *Config) { c.Listen = "" }},
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestReferenceTableFromPath(t *testing.T) {
	cfg := Config{TablePath: filepath.Join("..", "classify", "testdata", "ph.yaml")}
	table, err := cfg.ReferenceTable()
	if err != nil {
		t.Fatalf("ReferenceTable() error = %v", err)
	}
	if table.Name() != "ph" {
		t.Errorf("Name() = %q, want ph", table.Name())
	}
}
