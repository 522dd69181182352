package sim

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config drives the demo/benchmark runs. Values come from defaults,
// an optional kestrel.yaml in the working directory, and KESTREL_*
// environment variables, in increasing priority.
type Config struct {
	DemoSymbol string `mapstructure:"demo_symbol"`
	Depth      int    `mapstructure:"depth"`

	SmallOrders int `mapstructure:"small_orders"`
	LargeOrders int `mapstructure:"large_orders"`

	PriceMin float64 `mapstructure:"price_min"`
	PriceMax float64 `mapstructure:"price_max"`
	QtyMin   uint64  `mapstructure:"qty_min"`
	QtyMax   uint64  `mapstructure:"qty_max"`

	Seed uint64 `mapstructure:"seed"` // 0 derives a seed from the clock

	ArenaChunkSize int `mapstructure:"arena_chunk_size"`
	ArenaMaxChunks int `mapstructure:"arena_max_chunks"`
}

// Load reads the driver configuration.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("kestrel")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("demo_symbol", "AAPL")
	v.SetDefault("depth", 5)
	v.SetDefault("small_orders", 10_000)
	v.SetDefault("large_orders", 1_000_000)
	v.SetDefault("price_min", 99.0)
	v.SetDefault("price_max", 101.0)
	v.SetDefault("qty_min", 10)
	v.SetDefault("qty_max", 100)
	v.SetDefault("seed", 0)
	v.SetDefault("arena_chunk_size", 1024)
	v.SetDefault("arena_max_chunks", 2048)

	v.SetEnvPrefix("KESTREL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
