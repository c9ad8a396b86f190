// Package config loads settings for the map tools from an optional YAML file
// and GEOVIEWPORT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/NERVsystems/geoviewport/pkg/geo"
)

// EnvPrefix is prepended to every environment override:
// GEOVIEWPORT_GEOCODER_API_KEY → geocoder.api_key.
const EnvPrefix = "GEOVIEWPORT"

// Config holds all application configuration.
type Config struct {
	Geocoder   EndpointConfig     `mapstructure:"geocoder"`
	Search     EndpointConfig     `mapstructure:"search"`
	StaticMaps EndpointConfig     `mapstructure:"static_maps"`
	HTTP       HTTPConfig         `mapstructure:"http"`
	Cache      CacheConfig        `mapstructure:"cache"`
	Log        LogConfig          `mapstructure:"log"`
	Viewport   geo.ViewportConfig `mapstructure:"viewport"`
	Sampler    geo.SamplerConfig  `mapstructure:"sampler"`
	Game       GameConfig         `mapstructure:"game"`
}

// EndpointConfig describes one remote API.
type EndpointConfig struct {
	URL    string  `mapstructure:"url"`
	APIKey string  `mapstructure:"api_key"`
	RPS    float64 `mapstructure:"rps"`
	Burst  int     `mapstructure:"burst"`
}

type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	Lang      string        `mapstructure:"lang"`
}

type CacheConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	MaxItems int           `mapstructure:"max_items"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig tunes the guess-the-city slideshow.
type GameConfig struct {
	Cities      []string `mapstructure:"cities"`
	Width       int      `mapstructure:"width"`
	Height      int      `mapstructure:"height"`
	OutputDir   string   `mapstructure:"output_dir"`
	Concurrency int      `mapstructure:"concurrency"`
}

// DefaultCities is the city list used by the guessing game.
var DefaultCities = []string{
	"Москва", "Санкт-Петербург", "Новосибирск", "Екатеринбург", "Казань",
	"Нижний Новгород", "Челябинск", "Самара", "Омск", "Ростов-на-Дону",
	"Уфа", "Красноярск", "Воронеж", "Пермь", "Волгоград", "Сочи",
	"Владивосток", "Калининград", "Якутск", "Иркутск",
}

func setDefaults(v *viper.Viper) {
	vp := geo.DefaultViewportConfig()
	sp := geo.DefaultSamplerConfig()

	v.SetDefault("geocoder.url", "https://geocode-maps.yandex.ru/1.x/")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.rps", 5)
	v.SetDefault("geocoder.burst", 5)
	v.SetDefault("search.url", "https://search-maps.yandex.ru/v1/")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.rps", 2)
	v.SetDefault("search.burst", 2)
	v.SetDefault("static_maps.url", "https://static-maps.yandex.ru/1.x/")
	v.SetDefault("static_maps.api_key", "")
	v.SetDefault("static_maps.rps", 5)
	v.SetDefault("static_maps.burst", 5)
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("http.lang", "ru_RU")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.max_items", 1000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("viewport.buffer_factor", vp.BufferFactor)
	v.SetDefault("viewport.min_span", vp.MinSpan)
	v.SetDefault("sampler.min_zoom", sp.MinZoom)
	v.SetDefault("sampler.max_zoom", sp.MaxZoom)
	v.SetDefault("sampler.min_span", sp.MinSpan)
	v.SetDefault("sampler.max_span", sp.MaxSpan)
	v.SetDefault("sampler.offset_range_factor", sp.OffsetRangeFactor)
	v.SetDefault("sampler.point_span_multiplier", sp.PointSpanMultiplier)
	v.SetDefault("game.cities", DefaultCities)
	v.SetDefault("game.width", 600)
	v.SetDefault("game.height", 450)
	v.SetDefault("game.output_dir", "")
	v.SetDefault("game.concurrency", 4)
}

// Default returns the configuration with no file and no environment applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from file and environment variables. If path is
// empty, geoviewport.yaml is looked up in the working directory and
// ./configs; a missing file is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("geoviewport")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable. API keys are not
// required here; each program checks the keys for the services it calls.
func (c *Config) Validate() error {
	var errs []string

	for name, ep := range map[string]EndpointConfig{
		"geocoder":    c.Geocoder,
		"search":      c.Search,
		"static_maps": c.StaticMaps,
	} {
		if ep.URL == "" {
			errs = append(errs, name+".url is required")
		}
		if ep.RPS <= 0 {
			errs = append(errs, fmt.Sprintf("%s.rps must be positive, got %g", name, ep.RPS))
		}
		if ep.Burst <= 0 {
			errs = append(errs, fmt.Sprintf("%s.burst must be positive, got %d", name, ep.Burst))
		}
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, "http.timeout must be positive")
	}
	if c.Viewport.MinSpan <= 0 {
		errs = append(errs, "viewport.min_span must be positive")
	}
	if c.Viewport.BufferFactor < 0 {
		errs = append(errs, "viewport.buffer_factor must not be negative")
	}
	if err := c.Sampler.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			errs = append(errs, "sampler: "+line)
		}
	}
	if c.Game.Width <= 0 || c.Game.Height <= 0 {
		errs = append(errs, fmt.Sprintf("game size %dx%d is invalid", c.Game.Width, c.Game.Height))
	}
	if c.Game.Concurrency <= 0 {
		errs = append(errs, "game.concurrency must be positive")
	}

	if len(errs) > 0 {
		// Map iteration order is random; keep messages stable.
		sort.Strings(errs)
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// RequireKeys reports which of the named services lack an API key.
func (c *Config) RequireKeys(services ...string) error {
	var missing []string
	for _, s := range services {
		var key string
		switch s {
		case "geocoder":
			key = c.Geocoder.APIKey
		case "search":
			key = c.Search.APIKey
		case "static_maps":
			key = c.StaticMaps.APIKey
		default:
			return fmt.Errorf("unknown service %q", s)
		}
		if key == "" {
			missing = append(missing, fmt.Sprintf("%s_%s_API_KEY", EnvPrefix, strings.ToUpper(s)))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing API keys: set %s", strings.Join(missing, ", "))
	}
	return nil
}
