// Package config loads process configuration from lenster.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
	"github.com/spf13/viper"

	lens "github.com/anatolykoptev/go-lenster"
	"github.com/anatolykoptev/go-lenster/logger"
	"github.com/anatolykoptev/go-lenster/store"
)

// EnvPrefix prefixes every environment override, e.g. LENSTER_SERVER_ADDR.
const EnvPrefix = "LENSTER"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Lens   LensConfig   `mapstructure:"lens"`
	OG     OGConfig     `mapstructure:"og"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	PublicURL       string        `mapstructure:"public_url"`
	RateLimit       int           `mapstructure:"rate_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ProfileCookie   string        `mapstructure:"profile_cookie"`
}

type LensConfig struct {
	Upstreams         []string `mapstructure:"upstreams"`
	AccessToken       string   `mapstructure:"access_token"`
	RefreshToken      string   `mapstructure:"refresh_token"`
	SessionDir        string   `mapstructure:"session_dir"`
	Proxy             string   `mapstructure:"proxy"`
	IPFSGateway       string   `mapstructure:"ipfs_gateway"`
	ArweaveGateway    string   `mapstructure:"arweave_gateway"`
	RequestsPerWindow int      `mapstructure:"requests_per_window"`
}

type OGConfig struct {
	FontDir      string        `mapstructure:"font_dir"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	HandleSuffix string        `mapstructure:"handle_suffix"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Driver        string `mapstructure:"driver"`
	MaxCost       int64  `mapstructure:"max_cost"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.public_url", "https://lenster.xyz")
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.profile_cookie", "lenster.profile")

	v.SetDefault("lens.upstreams", []string{lens.DefaultAPIURL})
	v.SetDefault("lens.access_token", "")
	v.SetDefault("lens.refresh_token", "")
	v.SetDefault("lens.session_dir", "")
	v.SetDefault("lens.proxy", "")
	v.SetDefault("lens.ipfs_gateway", "https://lens.infura-ipfs.io/ipfs/")
	v.SetDefault("lens.arweave_gateway", "https://arweave.net/")
	v.SetDefault("lens.requests_per_window", 0)

	v.SetDefault("og.font_dir", "")
	v.SetDefault("og.cache_ttl", 24*time.Hour)
	v.SetDefault("og.handle_suffix", ".lens")
	v.SetDefault("og.timeout", 15*time.Second)

	v.SetDefault("cache.driver", store.DriverMemory)
	v.SetDefault("cache.max_cost", store.DefaultMaxCost)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", "lenster:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. An empty path searches ./lenster.yaml and
// /etc/lenster/lenster.yaml and tolerates neither existing.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lenster")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/lenster/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the defaults cannot repair.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("config: server.rate_limit must be >= 0, got %d", c.Server.RateLimit)
	}
	switch c.Cache.Driver {
	case store.DriverMemory:
	case store.DriverRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("config: cache.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("config: unknown cache.driver %q", c.Cache.Driver)
	}
	return nil
}

// ClientConfig maps the lens section onto the client's config.
func (c *Config) ClientConfig() lens.ClientConfig {
	cc := lens.ClientConfig{
		Upstreams:      c.Lens.Upstreams,
		AccessToken:    c.Lens.AccessToken,
		RefreshToken:   c.Lens.RefreshToken,
		SessionDir:     c.Lens.SessionDir,
		Proxy:          c.Lens.Proxy,
		IPFSGateway:    c.Lens.IPFSGateway,
		ArweaveGateway: c.Lens.ArweaveGateway,
	}
	if c.Lens.RequestsPerWindow > 0 {
		cc.RateLimit = ratelimit.DefaultConfig
		cc.RateLimit.RequestsPerWindow = c.Lens.RequestsPerWindow
	}
	return cc
}

func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Driver:        c.Cache.Driver,
		MaxCost:       c.Cache.MaxCost,
		RedisAddr:     c.Cache.RedisAddr,
		RedisPassword: c.Cache.RedisPassword,
		RedisDB:       c.Cache.RedisDB,
		KeyPrefix:     c.Cache.KeyPrefix,
	}
}

func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.Log.Level, Format: c.Log.Format}
}
