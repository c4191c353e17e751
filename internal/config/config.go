package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// Config is the runtime configuration of the pricer. Every key can be
// overridden by an environment variable named PRICER_<SECTION>_<KEY>,
// e.g. PRICER_SERVER_ADDR.
type Config struct {
	Log    logger.Config `mapstructure:"log"`
	Server ServerConfig  `mapstructure:"server"`
	Data   DataConfig    `mapstructure:"data"`
	Batch  BatchConfig   `mapstructure:"batch"`
}

// ServerConfig holds REST adapter parameters.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DataConfig selects the spot price provider.
type DataConfig struct {
	Provider string `mapstructure:"provider"` // synthetic, massive or csv
	APIKey   string `mapstructure:"api_key"`
	Dir      string `mapstructure:"dir"`
	Seed     int64  `mapstructure:"seed"`
}

// BatchConfig controls CSV batch pricing.
type BatchConfig struct {
	Workers   int    `mapstructure:"workers"`
	ReportDir string `mapstructure:"report_dir"`
}

const envPrefix = "PRICER"

// Load reads configuration from path (JSON, TOML or YAML by extension; empty
// means defaults only), then applies environment overrides. A .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// same variables the market data providers have always read
	if err := v.BindEnv("data.api_key", "PRICER_DATA_API_KEY", "MASSIVE_API_KEY", "POLYGON_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.verbosity", int(logger.Info))
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 10)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("data.provider", "synthetic")
	v.SetDefault("data.api_key", "")
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.seed", 1)

	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.report_dir", "reports")
}

// Validate rejects settings the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Data.Provider {
	case "synthetic", "massive", "csv":
	default:
		return fmt.Errorf("unknown data provider %q", c.Data.Provider)
	}
	if c.Data.Provider == "massive" && c.Data.APIKey == "" {
		return fmt.Errorf("data provider massive requires an api key")
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be positive, got %d", c.Batch.Workers)
	}
	if c.Log.Verbosity < int(logger.Error) || c.Log.Verbosity > int(logger.Trace) {
		return fmt.Errorf("log.verbosity must be between %d and %d", logger.Error, logger.Trace)
	}
	return nil
}
