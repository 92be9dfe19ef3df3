package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Hekkura/LibraryAppBE/pkg/backend/embedded"
)

// Backend kinds
const (
	BackendElastic  = "elastic"
	BackendEmbedded = "embedded"
)

// Config is the runtime configuration of the service
type Config struct {
	Addr    string
	Backend string

	Elastic  ElasticConfig
	Embedded EmbeddedConfig
	Catalog  CatalogConfig

	CORSOrigins []string
	LogLevel    string
	LogPretty   bool
}

type ElasticConfig struct {
	Addresses []string
	Username  string
	Password  string
	Timeout   time.Duration
}

type EmbeddedConfig struct {
	DataFile     string
	SaveInterval time.Duration
}

// CatalogConfig names the indices holding the per-owner catalog documents
type CatalogConfig struct {
	AppIndex  string
	UserIndex string
}

// Default returns the configuration used when no file or flag overrides a key
func Default() Config {
	return Config{
		Addr:    ":8080",
		Backend: BackendElastic,
		Elastic: ElasticConfig{
			Addresses: []string{"http://localhost:9200"},
			Timeout:   10 * time.Second,
		},
		Embedded: EmbeddedConfig{
			DataFile: "libraryapp_data" + embedded.FileExtension,
		},
		Catalog: CatalogConfig{
			AppIndex:  "user_apps",
			UserIndex: "user_list",
		},
		CORSOrigins: []string{"*"},
		LogLevel:    "info",
	}
}

// config.toml key mapping
type fileConfig struct {
	Addr    string `toml:"addr"`
	Backend string `toml:"backend"`
	Elastic struct {
		Addresses []string `toml:"addresses"`
		Username  string   `toml:"username"`
		Password  string   `toml:"password"`
		Timeout   string   `toml:"timeout"`
	} `toml:"elastic"`
	Embedded struct {
		DataFile     string `toml:"data_file"`
		SaveInterval string `toml:"save_interval"`
	} `toml:"embedded"`
	Catalog struct {
		AppIndex  string `toml:"app_index"`
		UserIndex string `toml:"user_index"`
	} `toml:"catalog"`
	CORS struct {
		Origins []string `toml:"origins"`
	} `toml:"cors"`
	Log struct {
		Level  string `toml:"level"`
		Pretty bool   `toml:"pretty"`
	} `toml:"log"`
}

// Load reads path and overlays the keys it defines onto Default
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := overlay(Default(), raw, meta)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text the same way Load does
func Parse(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return overlay(Default(), raw, meta)
}

func overlay(cfg Config, raw fileConfig, meta toml.MetaData) (Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("backend") {
		cfg.Backend = strings.ToLower(strings.TrimSpace(raw.Backend))
	}
	if meta.IsDefined("elastic", "addresses") {
		cfg.Elastic.Addresses = trimAll(raw.Elastic.Addresses)
	}
	if meta.IsDefined("elastic", "username") {
		cfg.Elastic.Username = raw.Elastic.Username
	}
	if meta.IsDefined("elastic", "password") {
		cfg.Elastic.Password = raw.Elastic.Password
	}
	if meta.IsDefined("elastic", "timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Elastic.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("elastic.timeout: %w", err)
		}
		cfg.Elastic.Timeout = d
	}
	if meta.IsDefined("embedded", "data_file") {
		cfg.Embedded.DataFile = strings.TrimSpace(raw.Embedded.DataFile)
	}
	if meta.IsDefined("embedded", "save_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Embedded.SaveInterval))
		if err != nil {
			return Config{}, fmt.Errorf("embedded.save_interval: %w", err)
		}
		cfg.Embedded.SaveInterval = d
	}
	if meta.IsDefined("catalog", "app_index") {
		cfg.Catalog.AppIndex = strings.TrimSpace(raw.Catalog.AppIndex)
	}
	if meta.IsDefined("catalog", "user_index") {
		cfg.Catalog.UserIndex = strings.TrimSpace(raw.Catalog.UserIndex)
	}
	if meta.IsDefined("cors", "origins") {
		cfg.CORSOrigins = trimAll(raw.CORS.Origins)
	}
	if meta.IsDefined("log", "level") {
		cfg.LogLevel = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "pretty") {
		cfg.LogPretty = raw.Log.Pretty
	}
	return cfg, nil
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr is required")
	}
	switch c.Backend {
	case BackendElastic:
		if len(c.Elastic.Addresses) == 0 {
			return fmt.Errorf("elastic backend requires at least one address")
		}
		if c.Elastic.Timeout < 0 {
			return fmt.Errorf("elastic.timeout cannot be negative")
		}
	case BackendEmbedded:
		if c.Embedded.SaveInterval < 0 {
			return fmt.Errorf("embedded.save_interval cannot be negative")
		}
		if c.Embedded.SaveInterval > 0 && c.Embedded.DataFile == "" {
			return fmt.Errorf("embedded.save_interval requires embedded.data_file")
		}
	default:
		return fmt.Errorf("unknown backend %q (expected %s or %s)", c.Backend, BackendElastic, BackendEmbedded)
	}
	if err := validateCatalogIndex("catalog.app_index", c.Catalog.AppIndex); err != nil {
		return err
	}
	if err := validateCatalogIndex("catalog.user_index", c.Catalog.UserIndex); err != nil {
		return err
	}
	if c.Catalog.AppIndex == c.Catalog.UserIndex {
		return fmt.Errorf("catalog.app_index and catalog.user_index must differ")
	}
	return nil
}

// catalog indices cannot contain '.', which would collide with qualified resource names
func validateCatalogIndex(key, name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%s is required", key)
	case name != strings.ToLower(name):
		return fmt.Errorf("%s %q must be lowercase", key, name)
	case strings.ContainsAny(name, ". \t\n"):
		return fmt.Errorf("%s %q must not contain '.' or whitespace", key, name)
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
