package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
	Logger     Logger     `mapstructure:"logger"`
	Rebalance  Rebalance  `mapstructure:"rebalance"`
	MarketData MarketData `mapstructure:"market_data"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port           int      `mapstructure:"port"`
	StatusPort     int      `mapstructure:"status_port"`
	StaticDir      string   `mapstructure:"static_dir"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Rebalance holds the thresholds used when ranking rebalancing options.
type Rebalance struct {
	MinSellValue     float64 `mapstructure:"min_sell_value"`
	SellFraction     float64 `mapstructure:"sell_fraction"`
	MaxSellAmount    float64 `mapstructure:"max_sell_amount"`
	DefaultBuyAmount float64 `mapstructure:"default_buy_amount"`
	MaxOptions       int     `mapstructure:"max_options"`
}

// MarketData holds the configuration for the quote API used to refresh prices.
// An empty BaseURL disables price synchronisation.
type MarketData struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// Scheduler holds cron specs for the background worker.
type Scheduler struct {
	PriceSync string `mapstructure:"price_sync"`
	Monitor   string `mapstructure:"monitor"`
}

// DefaultRebalance returns the ranking thresholds used when nothing is configured.
func DefaultRebalance() Rebalance {
	return Rebalance{
		MinSellValue:     500,
		SellFraction:     0.5,
		MaxSellAmount:    5000,
		DefaultBuyAmount: 2000,
		MaxOptions:       8,
	}
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and env vars still apply.
func LoadConfig(path string) (config Config, err error) {
	// Values already present in the environment win over .env
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}

func setDefaults(v *viper.Viper) {
	rb := DefaultRebalance()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.status_port", 8081)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.dsn", "portfolio.db")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("rebalance.min_sell_value", rb.MinSellValue)
	v.SetDefault("rebalance.sell_fraction", rb.SellFraction)
	v.SetDefault("rebalance.max_sell_amount", rb.MaxSellAmount)
	v.SetDefault("rebalance.default_buy_amount", rb.DefaultBuyAmount)
	v.SetDefault("rebalance.max_options", rb.MaxOptions)

	v.SetDefault("market_data.base_url", "")
	v.SetDefault("market_data.api_key", "")
	v.SetDefault("market_data.rate_limit", 5)       // requests per second
	v.SetDefault("market_data.rate_limit_burst", 2) // burst size
	v.SetDefault("market_data.timeout_seconds", 10)

	v.SetDefault("scheduler.price_sync", "0 */15 * * * *")
	v.SetDefault("scheduler.monitor", "0 0 * * * *")
}
