package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/lattice/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "lattice.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMountID is the id of the element pages are mounted in.
	DefaultMountID = "app"

	// DefaultOutput is the default export directory.
	DefaultOutput = "dist"
)

// Export targets.
const (
	ExportDir = "dir"
	ExportS3  = "s3"
)

// Config represents the complete lattice.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Render contains page rendering configuration.
	Render RenderConfig `json:"render,omitempty"`

	// Export contains static export configuration.
	Export ExportConfig `json:"export,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Live enables the websocket live endpoint.
	Live bool `json:"live,omitempty"`

	// LivePath is the URL path of the live endpoint (default: "/live").
	LivePath string `json:"livePath,omitempty"`

	// StaticDir is a directory of static files. Empty disables static serving.
	StaticDir string `json:"staticDir,omitempty"`

	// StaticPrefix is the URL prefix of static files (default: "/static/").
	StaticPrefix string `json:"staticPrefix,omitempty"`

	// CacheControl is "none", "production" or empty for no header.
	CacheControl string `json:"cacheControl,omitempty"`
}

// RenderConfig contains page rendering settings.
type RenderConfig struct {
	// Title is the default page title.
	Title string `json:"title,omitempty"`

	// Lang is the html lang attribute (default: "en").
	Lang string `json:"lang,omitempty"`

	// MountID is the id of the mount point element.
	MountID string `json:"mountId,omitempty"`

	// StyleSheets are stylesheet URLs added to every page.
	StyleSheets []string `json:"styleSheets,omitempty"`

	// ClientScript is an optional script URL added to every page.
	ClientScript string `json:"clientScript,omitempty"`
}

// ExportConfig contains static export settings.
type ExportConfig struct {
	// Target is "dir" or "s3".
	Target string `json:"target,omitempty"`

	// Output is the output directory for the dir target.
	Output string `json:"output,omitempty"`

	// Bucket is the S3 bucket for the s3 target.
	Bucket string `json:"bucket,omitempty"`

	// Region is the S3 region.
	Region string `json:"region,omitempty"`

	// Prefix is prepended to every exported key.
	Prefix string `json:"prefix,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3 compatible stores.
	Endpoint string `json:"endpoint,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled serves metrics and records tree activity.
	Enabled bool `json:"enabled,omitempty"`

	// Path is the metrics endpoint (default: "/metrics").
	Path string `json:"path,omitempty"`

	// Namespace is the metrics namespace (default: "lattice").
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled uses the global tracer provider instead of a no-op tracer.
	Enabled bool `json:"enabled,omitempty"`

	// TracerName is the instrumentation name (default: "lattice").
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Format is "text" or "json".
	Format string `json:"format,omitempty"`

	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for lattice.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E141").
				WithDetail("No lattice.json found in " + filepath.Dir(path)).
				WithSuggestion("Create lattice.json or run without --config to use defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse lattice.json: " + err.Error()).
			WithSuggestion("Check that lattice.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.LivePath == "" {
		c.Server.LivePath = "/live"
	}
	if c.Server.StaticPrefix == "" {
		c.Server.StaticPrefix = "/static/"
	}

	if c.Render.Lang == "" {
		c.Render.Lang = "en"
	}
	if c.Render.MountID == "" {
		c.Render.MountID = DefaultMountID
	}

	if c.Export.Target == "" {
		c.Export.Target = ExportDir
	}
	if c.Export.Output == "" {
		c.Export.Output = DefaultOutput
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "lattice"
	}

	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "lattice"
	}

	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E121").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Server.Port))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E122").WithMismatch("text or json", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E122").WithMismatch("debug, info, warn or error", c.Log.Level)
	}

	switch c.Export.Target {
	case ExportDir:
	case ExportS3:
		if c.Export.Bucket == "" || c.Export.Region == "" {
			return errors.New("E123").
				WithSuggestion(`Set "bucket" and "region" in the export section`)
		}
	default:
		return errors.New("E123").WithMismatch("dir or s3", c.Export.Target)
	}

	return nil
}

// Address returns the listen address of the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the base URL of the server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// OutputPath returns the absolute path to the export directory.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Export.Output) {
		return c.Export.Output
	}
	return filepath.Join(c.Dir(), c.Export.Output)
}

// StaticPath returns the absolute path to the static directory, or "" if
// static serving is disabled.
func (c *Config) StaticPath() string {
	if c.Server.StaticDir == "" {
		return ""
	}
	if filepath.IsAbs(c.Server.StaticDir) {
		return c.Server.StaticDir
	}
	return filepath.Join(c.Dir(), c.Server.StaticDir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing lattice.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E141").
				WithDetail("No lattice.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent that has one.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
