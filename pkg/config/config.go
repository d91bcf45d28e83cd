package config

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/sotvokun/simple-jsonrpc/pkg/rpccache"
	"github.com/sotvokun/simple-jsonrpc/pkg/sets"
)

const DefaultHome = "~/.jrpc"
const DefaultConfigFile = "jrpc.toml"

const (
	FlagHome    = "home"
	FlagURL     = "url"
	FlagTimeout = "timeout"
	FlagIDMode  = "id_mode"
)

const (
	IDModeNone      = "none"
	IDModeTimestamp = "timestamp"
	IDModeUUID      = "uuid"
	IDModeULID      = "ulid"
)

var ValidIDModes = sets.NewStringSet([]string{
	IDModeNone,
	IDModeTimestamp,
	IDModeUUID,
	IDModeULID,
})

type Config struct {
	Home        string                `mapstructure:"home"`
	URL         string                `mapstructure:"url"`
	Timeout     time.Duration         `mapstructure:"timeout"`
	LogLevel    string                `mapstructure:"log_level"`
	IDMode      string                `mapstructure:"id_mode"`
	Headers     map[string]string     `mapstructure:"headers"`
	AuditLog    string                `mapstructure:"audit_log"`
	RedisConfig *rpccache.RedisConfig `mapstructure:"redis"`
	CacheConfig *CacheConfig          `mapstructure:"cache"`
}

type CacheConfig struct {
	Methods []string      `mapstructure:"methods"`
	TTL     time.Duration `mapstructure:"ttl"`
}

func init() {
	viper.SetDefault(FlagHome, mustExpand(DefaultHome))
	viper.SetDefault(FlagURL, "")
	viper.SetDefault(FlagTimeout, "10s")
	viper.SetDefault(FlagIDMode, IDModeUUID)
	viper.SetDefault("log_level", "info")
}

func ReadConfig(allowDefaults bool) (Config, error) {
	var cfg Config
	cfgFile := path.Join(viper.GetString(FlagHome), DefaultConfigFile)
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if allowDefaults {
			viper.Unmarshal(&cfg)
			return cfg, nil
		} else {
			return cfg, errors.New("config file not found")
		}
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return cfg, err
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	viper.Set(FlagHome, mustExpand(viper.GetString(FlagHome)))

	return cfg, nil
}

func ValidateConfig(cfg *Config) error {
	if cfg.URL == "" {
		return validationError("must define an endpoint url")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return validationError(fmt.Sprintf("invalid url: %s", cfg.URL))
	}

	if cfg.Timeout < 0 {
		return validationError("timeout cannot be negative")
	}

	if cfg.IDMode != "" && !ValidIDModes.Contains(cfg.IDMode) {
		return validationError(fmt.Sprintf("unknown id mode %q, valid modes are %v", cfg.IDMode, ValidIDModes.Values()))
	}

	if cfg.CacheConfig != nil {
		if len(cfg.CacheConfig.Methods) == 0 {
			return validationError("cache enabled with no cacheable methods")
		}
		if cfg.CacheConfig.TTL <= 0 {
			return validationError("cache ttl must be positive")
		}
	}

	return nil
}

func validationError(msg string) error {
	return errors.New(fmt.Sprintf("invalid config: %s", msg))
}

func mustExpand(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		fmt.Println("Failed to find home directory on this system. Exiting.")
		os.Exit(1)
	}

	return expanded
}
