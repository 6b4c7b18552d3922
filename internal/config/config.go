// Package config loads the gateway's settings.
//
// Settings are layered, highest precedence first: command-line flags,
// COMPOSER_GATEWAY_* environment variables (a .env file in the working
// directory is loaded into the environment first), a TOML config file,
// and built-in defaults. Nested keys map to environment variables with "_"
// in place of ".", so cache.redis_url is COMPOSER_GATEWAY_CACHE_REDIS_URL.
package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	gwerrors "github.com/matzehuels/composer-gateway/pkg/errors"
	"github.com/matzehuels/composer-gateway/pkg/httputil"
	"github.com/matzehuels/composer-gateway/pkg/integrations/gitlab"
)

const (
	// AppName names the config file, the cache directory and the env prefix.
	AppName = "composer-gateway"

	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "COMPOSER_GATEWAY"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

var backends = []string{BackendFile, BackendMemory, BackendRedis, BackendMongo, BackendNone}

// Config is the effective configuration.
type Config struct {
	InstanceURL string   `mapstructure:"instance_url"`
	Listen      string   `mapstructure:"listen"`
	LogLevel    string   `mapstructure:"log_level"`
	Upstream    Upstream `mapstructure:"upstream"`
	Cache       Cache    `mapstructure:"cache"`
}

// Upstream tunes requests to GitLab.
type Upstream struct {
	Timeout          time.Duration `mapstructure:"timeout"`
	BreakerThreshold int           `mapstructure:"breaker_threshold"`
}

// Cache selects and configures the manifest cache backend.
type Cache struct {
	Backend         string `mapstructure:"backend"`
	Dir             string `mapstructure:"dir"`
	Prefix          string `mapstructure:"prefix"`
	RedisURL        string `mapstructure:"redis_url"`
	MongoURI        string `mapstructure:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection"`
}

// Options controls where Load looks for settings.
type Options struct {
	// File is an explicit config file. When empty, composer-gateway.toml is
	// looked up in the working directory and in $XDG_CONFIG_HOME/composer-gateway.
	File string

	// Flags maps config keys ("listen", "cache.backend") to the flags that
	// override them. Only flags the user set take effect.
	Flags map[string]*pflag.Flag

	// SkipDotEnv disables loading .env.
	SkipDotEnv bool
}

// Load reads the configuration.
func Load(opts Options) (*Config, error) {
	if !opts.SkipDotEnv {
		// A missing .env is not an error.
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range opts.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, gwerrors.Wrap(gwerrors.ErrCodeInvalidInput, err, "bind flag %s", flag.Name)
		}
	}

	if err := readFile(v, opts.File); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, gwerrors.Wrap(gwerrors.ErrCodeInvalidInput, err, "decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("instance_url", gitlab.DefaultInstanceURL)
	v.SetDefault("listen", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("upstream.timeout", httputil.DefaultTimeout)
	v.SetDefault("upstream.breaker_threshold", httputil.DefaultBreakerThreshold)
	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.dir", DefaultCacheDir())
	v.SetDefault("cache.prefix", "")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("cache.mongo_database", "composer_gateway")
	v.SetDefault("cache.mongo_collection", "manifests")
}

func readFile(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return gwerrors.Wrap(gwerrors.ErrCodeInvalidInput, err, "read config file %s", file)
		}
		return nil
	}

	v.SetConfigName(AppName)
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return gwerrors.Wrap(gwerrors.ErrCodeInvalidInput, err, "read config file")
	}
	return nil
}

// Validate checks values that would otherwise fail later and obscurely.
func (c *Config) Validate() error {
	c.InstanceURL = strings.TrimRight(strings.TrimSpace(c.InstanceURL), "/")
	if err := gwerrors.ValidateURL(c.InstanceURL); err != nil {
		return gwerrors.Wrap(gwerrors.ErrCodeInvalidInput, err, "instance_url")
	}
	if c.Upstream.Timeout <= 0 {
		return gwerrors.New(gwerrors.ErrCodeInvalidInput, "upstream.timeout must be positive, got %s", c.Upstream.Timeout)
	}
	if c.Upstream.BreakerThreshold <= 0 {
		return gwerrors.New(gwerrors.ErrCodeInvalidInput, "upstream.breaker_threshold must be positive, got %d", c.Upstream.BreakerThreshold)
	}
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	if !slices.Contains(backends, c.Cache.Backend) {
		return gwerrors.New(gwerrors.ErrCodeInvalidInput, "cache.backend %q is not one of %s", c.Cache.Backend, strings.Join(backends, ", "))
	}
	if c.Cache.Backend == BackendFile && c.Cache.Dir == "" {
		return gwerrors.New(gwerrors.ErrCodeInvalidInput, "cache.dir is required for the file backend")
	}
	return nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/composer-gateway, falling back to
// ~/.cache/composer-gateway.
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", AppName)
}

// tomlConfig mirrors Config with durations rendered as strings.
type tomlConfig struct {
	InstanceURL string `toml:"instance_url"`
	Listen      string `toml:"listen"`
	LogLevel    string `toml:"log_level"`
	Upstream    struct {
		Timeout          string `toml:"timeout"`
		BreakerThreshold int    `toml:"breaker_threshold"`
	} `toml:"upstream"`
	Cache struct {
		Backend         string `toml:"backend"`
		Dir             string `toml:"dir"`
		Prefix          string `toml:"prefix"`
		RedisURL        string `toml:"redis_url"`
		MongoURI        string `toml:"mongo_uri"`
		MongoDatabase   string `toml:"mongo_database"`
		MongoCollection string `toml:"mongo_collection"`
	} `toml:"cache"`
}

// TOML renders c in config file syntax. The output can be loaded back
// with Load.
func (c *Config) TOML() ([]byte, error) {
	var t tomlConfig
	t.InstanceURL = c.InstanceURL
	t.Listen = c.Listen
	t.LogLevel = c.LogLevel
	t.Upstream.Timeout = c.Upstream.Timeout.String()
	t.Upstream.BreakerThreshold = c.Upstream.BreakerThreshold
	t.Cache.Backend = c.Cache.Backend
	t.Cache.Dir = c.Cache.Dir
	t.Cache.Prefix = c.Cache.Prefix
	t.Cache.RedisURL = c.Cache.RedisURL
	t.Cache.MongoURI = c.Cache.MongoURI
	t.Cache.MongoDatabase = c.Cache.MongoDatabase
	t.Cache.MongoCollection = c.Cache.MongoCollection

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
