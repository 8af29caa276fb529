// Package config loads webdesk settings from defaults, a webdesk.yaml file,
// WEBDESK_* environment variables and bound command flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WEBDESK_ADDR.
const EnvPrefix = "WEBDESK"

// Validation errors.
var (
	ErrInvalidAddr      = errors.New("config: addr must not be empty")
	ErrInvalidTTL       = errors.New("config: session_ttl must be positive")
	ErrInvalidZBase     = errors.New("config: z_base must not be negative")
	ErrInvalidLogFormat = errors.New("config: log.format must be console or json")
	ErrIncompleteTLS    = errors.New("config: tls.cert and tls.key must be set together")
)

// Config holds every setting of the server and the CLI.
type Config struct {
	Addr         string        `mapstructure:"addr"`
	StaticDir    string        `mapstructure:"static_dir"`
	DataDir      string        `mapstructure:"data_dir"`
	Profile      string        `mapstructure:"profile"`
	ContentFile  string        `mapstructure:"content_file"`
	WatchContent bool          `mapstructure:"watch_content"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	ZBase        int           `mapstructure:"z_base"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	TLS          TLSConfig     `mapstructure:"tls"`
	Log          LogConfig     `mapstructure:"log"`
}

// TLSConfig points at the server key pair.
type TLSConfig struct {
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr:       ":8080",
		DataDir:    "~/.webdesk",
		Profile:    "default",
		SessionTTL: 30 * time.Minute,
		ZBase:      1000,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// SetDefaults registers the defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("static_dir", d.StaticDir)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("profile", d.Profile)
	v.SetDefault("content_file", d.ContentFile)
	v.SetDefault("watch_content", d.WatchContent)
	v.SetDefault("session_ttl", d.SessionTTL)
	v.SetDefault("z_base", d.ZBase)
	v.SetDefault("cors_origins", d.CORSOrigins)
	v.SetDefault("tls.cert", d.TLS.Cert)
	v.SetDefault("tls.key", d.TLS.Key)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads the configuration into v and decodes it. An explicit cfgFile
// must exist; otherwise webdesk.yaml is looked up in WEBDESK_CONFIG_PATH,
// the working directory and ~/.webdesk, and a missing file is fine.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return Config{}, fmt.Errorf("expanding config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("webdesk")
		v.SetConfigType("yaml")
		if override := os.Getenv(EnvPrefix + "_CONFIG_PATH"); override != "" {
			v.AddConfigPath(override)
		}
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home + "/.webdesk")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.StaticDir, &c.DataDir, &c.ContentFile, &c.TLS.Cert, &c.TLS.Key} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the settings that have no usable fallback.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return ErrInvalidAddr
	case c.SessionTTL <= 0:
		return ErrInvalidTTL
	case c.ZBase < 0:
		return ErrInvalidZBase
	case c.Log.Format != "console" && c.Log.Format != "json":
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	case (c.TLS.Cert == "") != (c.TLS.Key == ""):
		return ErrIncompleteTLS
	}
	return nil
}
