package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeExtract = "extract"
	ModeServe   = "serve"

	// Default values
	DefaultPort           = 8080
	DefaultHost           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 100 * 1024 * 1024 // 100MB
	DefaultPhotoTextLimit = 120
	DefaultOutputDir      = "out"
	DefaultCachePath      = "dematbt-cache.db"
)

// Config holds all configuration for the work-order extraction tool.
type Config struct {
	// Run mode: one-shot extraction or HTTP server
	Mode string
	Host string
	Port int

	// Input files
	PDFPath    string
	ZonesPath  string
	RulesPath  string
	RosterPath string

	// Output
	CachePath string
	OutputDir string

	// Application configuration
	Version        string
	LogLevel       string
	MaxFileSize    int64 // Maximum source PDF size in bytes
	PhotoTextLimit int   // Compact text length below which an image page is a photo
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:           ModeExtract,
		Host:           DefaultHost,
		Port:           DefaultPort,
		ZonesPath:      "config/zones.json",
		RulesPath:      "config/badges-rules.json",
		RosterPath:     "config/roster.yaml",
		CachePath:      DefaultCachePath,
		OutputDir:      DefaultOutputDir,
		Version:        "1.0.0",
		LogLevel:       DefaultLogLevel,
		MaxFileSize:    DefaultMaxFileSize,
		PhotoTextLimit: DefaultPhotoTextLimit,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.PDFPath != "" {
		if abs, err := filepath.Abs(cfg.PDFPath); err == nil {
			cfg.PDFPath = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults.
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("DEMATBT")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("pdf", cfg.PDFPath)
	viper.SetDefault("zones", cfg.ZonesPath)
	viper.SetDefault("rules", cfg.RulesPath)
	viper.SetDefault("roster", cfg.RosterPath)
	viper.SetDefault("cache", cfg.CachePath)
	viper.SetDefault("outdir", cfg.OutputDir)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("phototextlimit", cfg.PhotoTextLimit)
}

// defineCommandLineFlags sets up all command line flags.
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'extract' for one-shot extraction, 'serve' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (serve mode only)")
	pflag.Int("port", cfg.Port, "Server port (serve mode only)")
	pflag.String("pdf", cfg.PDFPath, "Source PDF file to segment")
	pflag.String("zones", cfg.ZonesPath, "Zone coordinates file (JSON)")
	pflag.String("rules", cfg.RulesPath, "Badge rules file (JSON)")
	pflag.String("roster", cfg.RosterPath, "Technician roster file (YAML or JSON)")
	pflag.String("cache", cfg.CachePath, "Snapshot cache database path")
	pflag.String("outdir", cfg.OutputDir, "Directory for exported PDFs")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum source PDF size in bytes")
	pflag.Int("phototextlimit", cfg.PhotoTextLimit, "Photo-page compact text threshold")
}

// bindFlagsToViper binds command line flags to viper configuration.
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "pdf", "zones", "rules", "roster",
		"cache", "outdir", "loglevel", "maxfilesize", "phototextlimit",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message.
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nDemat BT - work-order PDF segmentation and classification\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --pdf=tournee.pdf                        # extract to stdout\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --pdf=tournee.pdf --outdir=export        # extract and export per-BT PDFs\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=serve --port=8081                 # HTTP API over the cached result\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_MODE           Run mode\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_HOST           Server host\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_PORT           Server port\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_PDF            Source PDF path\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_ZONES          Zone coordinates file\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_RULES          Badge rules file\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_ROSTER         Roster file\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_CACHE          Cache database path\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_OUTDIR         Export directory\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_LOGLEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_MAXFILESIZE    Maximum source PDF size\n")
		fmt.Fprintf(os.Stderr, "  DEMATBT_PHOTOTEXTLIMIT Photo-page text threshold\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper.
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFPath = viper.GetString("pdf")
	cfg.ZonesPath = viper.GetString("zones")
	cfg.RulesPath = viper.GetString("rules")
	cfg.RosterPath = viper.GetString("roster")
	cfg.CachePath = viper.GetString("cache")
	cfg.OutputDir = viper.GetString("outdir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.PhotoTextLimit = viper.GetInt("phototextlimit")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Mode != ModeExtract && c.Mode != ModeServe {
		return errors.New("mode must be either 'extract' or 'serve'")
	}

	if c.Mode == ModeServe && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Extraction needs a source PDF; the server can start from the cache alone.
	if c.Mode == ModeExtract && c.PDFPath == "" {
		return errors.New("source PDF path cannot be empty in extract mode")
	}

	if c.ZonesPath == "" {
		return errors.New("zones file path cannot be empty")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.PhotoTextLimit <= 0 {
		return errors.New("photo text limit must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsServeMode returns true when the tool runs as an HTTP server.
func (c *Config) IsServeMode() bool {
	return c.Mode == ModeServe
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, PDF: %s, Zones: %s, Rules: %s, Roster: %s, Cache: %s, OutDir: %s, LogLevel: %s}",
		c.Mode, c.PDFPath, c.ZonesPath, c.RulesPath, c.RosterPath, c.CachePath, c.OutputDir, c.LogLevel)
}
