package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/casereport/internal/layout"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Analysis service
	AnalysisURL      string
	AnalysisTimeout  time.Duration
	CustomSummary    bool
	SummaryMaxTokens int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Optional YAML file with report settings.
	ConfigFile string
	Report     ReportSettings
}

// ReportSettings controls report layout and naming. Zero values keep defaults.
type ReportSettings struct {
	Format          string   `yaml:"format"`
	SinglePrefix    string   `yaml:"single_prefix"`
	BatchPrefix     string   `yaml:"batch_prefix"`
	OutputDir       string   `yaml:"output_dir"`
	Author          string   `yaml:"author"`
	Margin          float64  `yaml:"margin"`
	LineHeight      float64  `yaml:"line_height"`
	BodySize        float64  `yaml:"body_size"`
	SummarySections []string `yaml:"summary_sections"`
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("CASEREPORT_API_KEY"),

		AnalysisURL:      envOr("ANALYSIS_URL", "http://localhost:8000"),
		AnalysisTimeout:  envDuration("ANALYSIS_TIMEOUT", 120*time.Second),
		CustomSummary:    envBool("CUSTOM_SUMMARY", false),
		SummaryMaxTokens: envInt("SUMMARY_MAX_TOKENS", 2000),

		WorkerCount:  envInt("WORKER_COUNT", 1),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 20),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		ConfigFile: os.Getenv("CASEREPORT_CONFIG"),
		Report: ReportSettings{
			Format:    envOr("REPORT_FORMAT", "pdf"),
			OutputDir: envOr("REPORT_OUTPUT_DIR", "."),
		},
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 120 * time.Second
	}
	if cfg.SummaryMaxTokens <= 0 {
		cfg.SummaryMaxTokens = 2000
	}

	return cfg
}

// LoadFile overlays report settings from a YAML file. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file struct {
		Report ReportSettings `yaml:"report"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.Report.merge(file.Report)
	return nil
}

func (r *ReportSettings) merge(o ReportSettings) {
	if o.Format != "" {
		r.Format = o.Format
	}
	if o.SinglePrefix != "" {
		r.SinglePrefix = o.SinglePrefix
	}
	if o.BatchPrefix != "" {
		r.BatchPrefix = o.BatchPrefix
	}
	if o.OutputDir != "" {
		r.OutputDir = o.OutputDir
	}
	if o.Author != "" {
		r.Author = o.Author
	}
	if o.Margin > 0 {
		r.Margin = o.Margin
	}
	if o.LineHeight > 0 {
		r.LineHeight = o.LineHeight
	}
	if o.BodySize > 0 {
		r.BodySize = o.BodySize
	}
	if len(o.SummarySections) > 0 {
		r.SummarySections = o.SummarySections
	}
}

// Geometry returns A4 geometry with any configured overrides applied.
func (r ReportSettings) Geometry() layout.Geometry {
	g := layout.A4()
	if r.Margin > 0 {
		g.Margin = r.Margin
	}
	if r.LineHeight > 0 {
		g.LineHeight = r.LineHeight
	}
	if r.BodySize > 0 {
		g.BodySize = r.BodySize
	}
	return g
}

// ValidateReport checks the settings needed to render reports.
func (c Config) ValidateReport() error {
	switch strings.ToLower(c.Report.Format) {
	case "", "pdf", "docx":
	default:
		return fmt.Errorf("report format must be pdf or docx, got %q", c.Report.Format)
	}
	g := c.Report.Geometry()
	if g.Margin*2 >= g.PageWidth || g.Margin*2 >= g.PageHeight {
		return fmt.Errorf("margin %.1f leaves no room on the page", g.Margin)
	}
	return nil
}

// Validate checks everything the server needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("CASEREPORT_API_KEY is required")
	}
	u, err := url.Parse(c.AnalysisURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ANALYSIS_URL must be an http(s) URL, got %q", c.AnalysisURL)
	}
	return c.ValidateReport()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
