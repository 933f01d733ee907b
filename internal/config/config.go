package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sosodev/duration"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/luxboard/internal/analysis"
	"github.com/KaramelBytes/luxboard/internal/parser"
	"github.com/KaramelBytes/luxboard/internal/site"
)

// Global configuration structure.
type Global struct {
	ListenAddr      string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	SessionCapacity int    `mapstructure:"session_capacity" yaml:"session_capacity"`
	// SessionTTL is an ISO 8601 duration such as PT30M.
	SessionTTL  string `mapstructure:"session_ttl" yaml:"session_ttl"`
	ChartWidth  int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height" yaml:"chart_height"`
	BannerImage string `mapstructure:"banner_image" yaml:"banner_image"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Ingestion
	Delimiter        string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ValueColumn      string `mapstructure:"value_column" yaml:"value_column"`

	// Site panel
	SiteName      string  `mapstructure:"site_name" yaml:"site_name"`
	SiteLatitude  float64 `mapstructure:"site_latitude" yaml:"site_latitude"`
	SiteLongitude float64 `mapstructure:"site_longitude" yaml:"site_longitude"`
	SiteZoom      int     `mapstructure:"site_zoom" yaml:"site_zoom"`
	SiteAltitude  string  `mapstructure:"site_altitude" yaml:"site_altitude"`
	SiteSensor    string  `mapstructure:"site_sensor" yaml:"site_sensor"`
	SiteVariable  string  `mapstructure:"site_variable" yaml:"site_variable"`
	SiteFrequency string  `mapstructure:"site_frequency" yaml:"site_frequency"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"listen_addr", "max_upload_mb", "session_capacity", "session_ttl",
	"chart_width", "chart_height", "banner_image", "log_level", "log_format",
	"delimiter", "decimal_separator", "value_column",
	"site_name", "site_latitude", "site_longitude", "site_zoom",
	"site_altitude", "site_sensor", "site_variable", "site_frequency",
}

func setDefaults(v *viper.Viper) {
	s := site.Default()
	v.SetDefault("listen_addr", "127.0.0.1:8501")
	v.SetDefault("max_upload_mb", 200)
	v.SetDefault("session_capacity", 256)
	v.SetDefault("session_ttl", "PT1H")
	v.SetDefault("chart_width", 960)
	v.SetDefault("chart_height", 420)
	v.SetDefault("banner_image", "ola.jpg")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("value_column", "")
	v.SetDefault("site_name", s.Name)
	v.SetDefault("site_latitude", s.Latitude)
	v.SetDefault("site_longitude", s.Longitude)
	v.SetDefault("site_zoom", s.Zoom)
	v.SetDefault("site_altitude", s.Altitude)
	v.SetDefault("site_sensor", s.Sensor)
	v.SetDefault("site_variable", s.Variable)
	v.SetDefault("site_frequency", s.Frequency)
}

// Default returns the built-in configuration.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// DefaultPath is ~/.luxboard/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".luxboard", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.luxboard/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LUXBOARD")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".luxboard"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that viper cannot type-check.
func (c *Global) Validate() error {
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.SessionCapacity <= 0 {
		return fmt.Errorf("session_capacity must be positive, got %d", c.SessionCapacity)
	}
	if _, err := c.TTL(); err != nil {
		return err
	}
	if _, err := singleRune("delimiter", c.Delimiter); err != nil {
		return err
	}
	if _, err := singleRune("decimal_separator", c.DecimalSeparator); err != nil {
		return err
	}
	return c.Site().Validate()
}

// TTL parses SessionTTL. Zero disables session expiry.
func (c *Global) TTL() (time.Duration, error) {
	if strings.TrimSpace(c.SessionTTL) == "" {
		return 0, nil
	}
	d, err := duration.Parse(c.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid session_ttl %q (ISO 8601, e.g. PT30M): %w", c.SessionTTL, err)
	}
	return d.ToTimeDuration(), nil
}

// UploadLimit returns the upload size limit in bytes.
func (c *Global) UploadLimit() int { return c.MaxUploadMB << 20 }

// Site returns the configured site panel.
func (c *Global) Site() site.Info {
	return site.Info{
		Name:      c.SiteName,
		Latitude:  c.SiteLatitude,
		Longitude: c.SiteLongitude,
		Zoom:      c.SiteZoom,
		Altitude:  c.SiteAltitude,
		Sensor:    c.SiteSensor,
		Variable:  c.SiteVariable,
		Frequency: c.SiteFrequency,
	}
}

// ParserOptions maps the ingestion settings onto parser options.
func (c *Global) ParserOptions() parser.Options {
	opt := parser.DefaultOptions()
	opt.Delimiter, _ = singleRune("delimiter", c.Delimiter)
	opt.Normalize.ValueColumn = c.ValueColumn
	if dec, _ := singleRune("decimal_separator", c.DecimalSeparator); dec != 0 {
		opt.Normalize.Numbers = analysis.NumberFormat{DecimalSeparator: dec, ThousandsSeparator: thousandsFor(dec)}
	}
	return opt
}

func thousandsFor(dec rune) rune {
	if dec == ',' {
		return '.'
	}
	return ','
}

// singleRune accepts "", a single character, or the escapes "\t" and "tab".
func singleRune(key, s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%s must be a single character, got %q", key, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Get returns the value of key formatted for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "listen_addr":
		return c.ListenAddr, nil
	case "max_upload_mb":
		return strconv.Itoa(c.MaxUploadMB), nil
	case "session_capacity":
		return strconv.Itoa(c.SessionCapacity), nil
	case "session_ttl":
		return c.SessionTTL, nil
	case "chart_width":
		return strconv.Itoa(c.ChartWidth), nil
	case "chart_height":
		return strconv.Itoa(c.ChartHeight), nil
	case "banner_image":
		return c.BannerImage, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "delimiter":
		return c.Delimiter, nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "value_column":
		return c.ValueColumn, nil
	case "site_name":
		return c.SiteName, nil
	case "site_latitude":
		return strconv.FormatFloat(c.SiteLatitude, 'f', -1, 64), nil
	case "site_longitude":
		return strconv.FormatFloat(c.SiteLongitude, 'f', -1, 64), nil
	case "site_zoom":
		return strconv.Itoa(c.SiteZoom), nil
	case "site_altitude":
		return c.SiteAltitude, nil
	case "site_sensor":
		return c.SiteSensor, nil
	case "site_variable":
		return c.SiteVariable, nil
	case "site_frequency":
		return c.SiteFrequency, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val into key. The result is validated as a whole.
func (c *Global) Set(key, val string) error {
	next := *c
	var err error
	switch key {
	case "listen_addr":
		next.ListenAddr = val
	case "max_upload_mb":
		next.MaxUploadMB, err = parseInt(key, val)
	case "session_capacity":
		next.SessionCapacity, err = parseInt(key, val)
	case "session_ttl":
		next.SessionTTL = val
	case "chart_width":
		next.ChartWidth, err = parseInt(key, val)
	case "chart_height":
		next.ChartHeight, err = parseInt(key, val)
	case "banner_image":
		next.BannerImage = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			next.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			next.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "delimiter":
		next.Delimiter = val
	case "decimal_separator":
		next.DecimalSeparator = val
	case "value_column":
		next.ValueColumn = val
	case "site_name":
		next.SiteName = val
	case "site_latitude":
		next.SiteLatitude, err = parseFloat(key, val)
	case "site_longitude":
		next.SiteLongitude, err = parseFloat(key, val)
	case "site_zoom":
		next.SiteZoom, err = parseInt(key, val)
	case "site_altitude":
		next.SiteAltitude = val
	case "site_sensor":
		next.SiteSensor = val
	case "site_variable":
		next.SiteVariable = val
	case "site_frequency":
		next.SiteFrequency = val
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

func parseInt(key, val string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %v", key, val)
	}
	return i, nil
}

func parseFloat(key, val string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float for %s: %v", key, val)
	}
	return f, nil
}
