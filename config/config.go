package config

import (
	"strings"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/userextra"
	"github.com/spf13/viper"
)

const (
	DefaultPort     = 9000
	EnvPrefix       = "VTRENDER"
	defaultRootDir  = "~/.local/share/github.com/jamesrr39/vtrender/"
	defaultTileSize = 256
)

type CacheType string

const (
	CacheTypeNone  CacheType = "none"
	CacheTypeLRU   CacheType = "lru"
	CacheTypeRedis CacheType = "redis"
)

// Config is the configuration of the tile server
type Config struct {
	Addr           string `mapstructure:"addr"`
	StylesDir      string `mapstructure:"styles_dir"`
	DefaultStyleID string `mapstructure:"default_style_id"`
	// TileStores are tile store connection strings, e.g. "mbtiles://planet.mbtiles"
	TileStores  []string `mapstructure:"tile_stores"`
	FontsDirs   []string `mapstructure:"fonts_dirs"`
	PluginsDirs []string `mapstructure:"plugins_dirs"`
	TraceDir    string   `mapstructure:"trace_dir"`

	TileSize             int  `mapstructure:"tile_size"`
	MaxConcurrentRenders uint `mapstructure:"max_concurrent_renders"`
	TileRequestCacheSize int  `mapstructure:"tile_request_cache_size"`
	Profile              bool `mapstructure:"profile"`

	Cache CacheConfig `mapstructure:"cache"`
}

type CacheConfig struct {
	Type      CacheType     `mapstructure:"type"`
	Size      int           `mapstructure:"size"`
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":9000")
	v.SetDefault("styles_dir", defaultRootDir+"styles")
	v.SetDefault("default_style_id", "")
	v.SetDefault("tile_stores", []string{})
	v.SetDefault("fonts_dirs", []string{})
	v.SetDefault("plugins_dirs", []string{})
	v.SetDefault("trace_dir", defaultRootDir+"trace")
	v.SetDefault("tile_size", defaultTileSize)
	v.SetDefault("max_concurrent_renders", 4)
	v.SetDefault("tile_request_cache_size", 256)
	v.SetDefault("profile", false)
	v.SetDefault("cache.type", string(CacheTypeLRU))
	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.ttl", time.Hour)
}

// Load reads the configuration from a file (yaml, json or toml), if given, with VTRENDER_ environment variables taking precedence.
// For example VTRENDER_CACHE_TYPE=redis overrides cache.type.
func Load(path string) (*Config, errorsx.Error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expandedPath, err := userextra.ExpandUser(path)
		if err != nil {
			return nil, errorsx.Wrap(err, "path", path)
		}

		v.SetConfigFile(expandedPath)
		err = v.ReadInConfig()
		if err != nil {
			return nil, errorsx.Wrap(err, "path", expandedPath)
		}
	}

	conf := new(Config)
	err := v.Unmarshal(conf)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	err = conf.expandPaths()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	err = conf.Validate()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return conf, nil
}

func (c *Config) expandPaths() errorsx.Error {
	expand := func(path *string) errorsx.Error {
		expanded, err := userextra.ExpandUser(*path)
		if err != nil {
			return errorsx.Wrap(err, "path", *path)
		}
		*path = expanded
		return nil
	}

	paths := []*string{&c.StylesDir, &c.TraceDir}
	for i := range c.FontsDirs {
		paths = append(paths, &c.FontsDirs[i])
	}
	for i := range c.PluginsDirs {
		paths = append(paths, &c.PluginsDirs[i])
	}

	for _, path := range paths {
		err := expand(path)
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) Validate() errorsx.Error {
	if c.TileSize <= 0 {
		return errorsx.Errorf("tile size must be positive, but was %d", c.TileSize)
	}
	if c.MaxConcurrentRenders == 0 {
		return errorsx.Errorf("max concurrent renders must be at least 1")
	}

	switch c.Cache.Type {
	case CacheTypeNone:
	case CacheTypeLRU:
		if c.Cache.Size <= 0 {
			return errorsx.Errorf("lru cache size must be positive, but was %d", c.Cache.Size)
		}
	case CacheTypeRedis:
		if c.Cache.RedisAddr == "" {
			return errorsx.Errorf("redis cache requires cache.redis_addr")
		}
	default:
		return errorsx.Errorf("unknown cache type: %q", c.Cache.Type)
	}

	return nil
}

// EnsurePaths creates the directories the server writes to or reads styles from
func (c *Config) EnsurePaths(fs gofs.Fs) errorsx.Error {
	for _, dirPath := range []string{c.StylesDir, c.TraceDir} {
		if dirPath == "" {
			continue
		}
		err := fs.MkdirAll(dirPath, 0755)
		if err != nil {
			return errorsx.Wrap(err, "path", dirPath)
		}
	}

	return nil
}
