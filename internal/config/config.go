package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"mohaa-portal/assets"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/viper"
)

const configName = "mohaa-portal"

type APIConfig struct {
	BaseURL          string `mapstructure:"baseUrl"`
	ServerToken      string `mapstructure:"serverToken"`
	TimeoutSeconds   int    `mapstructure:"timeoutSeconds"`
	CacheSeconds     int    `mapstructure:"cacheSeconds"`
	LiveCacheSeconds int    `mapstructure:"liveCacheSeconds"`
}

type CacheConfig struct {
	Driver   string `mapstructure:"driver"` // memory or redis
	RedisURL string `mapstructure:"redisUrl"`
	Prefix   string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"` // host:port of the game query port
	Enabled bool   `mapstructure:"enabled"`
}

type SiteConfig struct {
	Title    string `mapstructure:"title"`
	Enabled  bool   `mapstructure:"enabled"`
	PerPage  int    `mapstructure:"perPage"`
	ThemeDir string `mapstructure:"themeDir"` // optional directory overriding embedded templates

	MaxIdentities int `mapstructure:"maxIdentities"` // GUIDs one member may link
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups"` // Number of rotated log files to keep (default: 5)
}

type Config struct {
	API     APIConfig      `mapstructure:"api"`
	Cache   CacheConfig    `mapstructure:"cache"`
	Servers []ServerConfig `mapstructure:"servers"`
	Site    SiteConfig     `mapstructure:"site"`
	Logging LoggingConfig  `mapstructure:"logging"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.baseUrl", "http://localhost:8080")
	v.SetDefault("api.timeoutSeconds", 3)
	v.SetDefault("api.cacheSeconds", 60)
	v.SetDefault("api.liveCacheSeconds", 10)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.prefix", "mohaa:")
	v.SetDefault("site.title", "MOHAA Stats")
	v.SetDefault("site.enabled", true)
	v.SetDefault("site.perPage", 25)
	v.SetDefault("site.maxIdentities", 3)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.maxSizeMB", 10)
	v.SetDefault("logging.maxBackups", 5)
}

// Load reads mohaa-portal.yml (or .toml) from the working directory. It does
// not validate; the serve path calls Validate so init-config can still run.
// A missing file is not an error: defaults plus environment apply.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName(configName)
	v.AddConfigPath(".")

	v.SetEnvPrefix("MOHAA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.BindEnv("api.serverToken", "MOHAA_API_TOKEN")
	v.BindEnv("api.baseUrl", "MOHAA_API_URL")
	v.BindEnv("cache.redisUrl", "MOHAA_REDIS_URL", "REDIS_URL")

	// Try YAML first, then TOML
	v.SetConfigType("yml")
	if err := v.ReadInConfig(); err != nil {
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && Exists() {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// SERVER_ADDRESS_0, SERVER_ADDRESS_1, ... override servers[i].address
	for i := range cfg.Servers {
		if addr := os.Getenv(fmt.Sprintf("SERVER_ADDRESS_%d", i)); addr != "" {
			cfg.Servers[i].Address = addr
		}
	}

	return &cfg, nil
}

// Validate checks the API endpoint, cache driver and every enabled server.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.baseUrl is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.baseUrl %q must be an absolute http(s) URL", c.API.BaseURL)
	}

	switch c.Cache.Driver {
	case "", "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redisUrl is required when cache.driver is redis")
		}
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}

	for i, server := range c.Servers {
		if !server.Enabled {
			continue
		}
		if server.Name == "" {
			return fmt.Errorf("server at index %d is missing 'name' field", i)
		}
		if server.Address == "" {
			return fmt.Errorf("server '%s' (index %d) is missing 'address' field", server.Name, i)
		}
		if _, _, err := net.SplitHostPort(server.Address); err != nil {
			return fmt.Errorf("server '%s' (index %d) has invalid address %q: %w", server.Name, i, server.Address, err)
		}
	}

	return nil
}

// EnabledServers returns the servers the query pool should poll.
func (c *Config) EnabledServers() []ServerConfig {
	var enabled []ServerConfig
	for _, s := range c.Servers {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return enabled
}

// EnsureServersInDatabase creates game_servers records for every enabled server
// and refreshes the display name of existing ones.
func (c *Config) EnsureServersInDatabase(pbApp core.App) error {
	collection, err := pbApp.FindCollectionByNameOrId("game_servers")
	if err != nil {
		return fmt.Errorf("failed to find game_servers collection: %w", err)
	}

	for _, serverCfg := range c.EnabledServers() {
		record, err := pbApp.FindFirstRecordByFilter(
			"game_servers",
			"address = {:address}",
			map[string]any{"address": serverCfg.Address},
		)
		if err != nil {
			record = core.NewRecord(collection)
			record.Set("address", serverCfg.Address)
		} else if record.GetString("name") == serverCfg.Name {
			continue
		}

		record.Set("name", serverCfg.Name)
		if err := pbApp.Save(record); err != nil {
			return fmt.Errorf("failed to save server record for %s: %w", serverCfg.Name, err)
		}
	}

	return nil
}

func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (a APIConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheSeconds) * time.Second
}

func (a APIConfig) LiveCacheTTL() time.Duration {
	return time.Duration(a.LiveCacheSeconds) * time.Second
}

// GenerateExample writes an example config file to the specified path
// format can be "yml" or "toml"
func GenerateExample(path string, format string) error {
	return assets.GetWebAssets().WriteExampleConfig(path, format)
}

// Exists checks if a config file exists in the current directory
func Exists() bool {
	for _, ext := range []string{"yml", "yaml", "toml"} {
		if _, err := os.Stat(configName + "." + ext); err == nil {
			return true
		}
	}
	return false
}
