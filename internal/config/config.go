// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Rebalance RebalanceConfig
	Insights  InsightsConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	SummaryTTLSeconds int
	LockTTLSeconds    int
}

// RebalanceConfig holds every threshold the rebalancing pipeline reads.
// Values are loaded once per process; components receive the struct by
// value and never consult the environment directly.
type RebalanceConfig struct {
	MinTransferValue     float64 // opportunities below this value are discarded
	TargetDaysMin        float64 // days of stock a needy outlet is topped up to
	SourceKeepDays       float64 // days of stock a surplus outlet always retains
	LowStockDays         float64
	OverstockDays        float64
	HighDemandMultiplier float64
	UrgentCap            int
	HighCap              int
	NormalCap            int
	VelocityDays         int // short velocity window
	TrendDays            int // long trend window
	InventoryBatch       int // per-outlet inventory fetch limit
	RunTimeoutSeconds    int
}

type InsightsConfig struct {
	Enabled   bool
	Dir       string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "rebalancer")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SUMMARY_TTL_SECONDS", 3600)
		viper.SetDefault("CACHE_LOCK_TTL_SECONDS", 600)
		viper.SetDefault("REBALANCE_MIN_TRANSFER_VALUE", 100.0)
		viper.SetDefault("REBALANCE_TARGET_DAYS_MIN", 7.0)
		viper.SetDefault("REBALANCE_SOURCE_KEEP_DAYS", 14.0)
		viper.SetDefault("REBALANCE_LOW_STOCK_DAYS", 7.0)
		viper.SetDefault("REBALANCE_OVERSTOCK_DAYS", 60.0)
		viper.SetDefault("REBALANCE_HIGH_DEMAND_MULTIPLIER", 1.5)
		viper.SetDefault("REBALANCE_URGENT_CAP", 10)
		viper.SetDefault("REBALANCE_HIGH_CAP", 15)
		viper.SetDefault("REBALANCE_NORMAL_CAP", 20)
		viper.SetDefault("REBALANCE_VELOCITY_DAYS", 14)
		viper.SetDefault("REBALANCE_TREND_DAYS", 56)
		viper.SetDefault("REBALANCE_INVENTORY_BATCH", 500)
		viper.SetDefault("REBALANCE_RUN_TIMEOUT_SECONDS", 300)
		viper.SetDefault("INSIGHTS_ENABLED", false)
		viper.SetDefault("INSIGHTS_DIR", "./data/insights")
		viper.SetDefault("INSIGHTS_BUCKET", "")
		viper.SetDefault("INSIGHTS_ENDPOINT", "")
		viper.SetDefault("INSIGHTS_ACCESS_KEY", "")
		viper.SetDefault("INSIGHTS_SECRET_KEY", "")
		viper.SetDefault("INSIGHTS_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		if viper.GetBool("INSIGHTS_ENABLED") {
			ensureDir(viper.GetString("INSIGHTS_DIR"))
		}

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				SummaryTTLSeconds: viper.GetInt("CACHE_SUMMARY_TTL_SECONDS"),
				LockTTLSeconds:    viper.GetInt("CACHE_LOCK_TTL_SECONDS"),
			},
			Rebalance: RebalanceConfig{
				MinTransferValue:     viper.GetFloat64("REBALANCE_MIN_TRANSFER_VALUE"),
				TargetDaysMin:        viper.GetFloat64("REBALANCE_TARGET_DAYS_MIN"),
				SourceKeepDays:       viper.GetFloat64("REBALANCE_SOURCE_KEEP_DAYS"),
				LowStockDays:         viper.GetFloat64("REBALANCE_LOW_STOCK_DAYS"),
				OverstockDays:        viper.GetFloat64("REBALANCE_OVERSTOCK_DAYS"),
				HighDemandMultiplier: viper.GetFloat64("REBALANCE_HIGH_DEMAND_MULTIPLIER"),
				UrgentCap:            viper.GetInt("REBALANCE_URGENT_CAP"),
				HighCap:              viper.GetInt("REBALANCE_HIGH_CAP"),
				NormalCap:            viper.GetInt("REBALANCE_NORMAL_CAP"),
				VelocityDays:         viper.GetInt("REBALANCE_VELOCITY_DAYS"),
				TrendDays:            viper.GetInt("REBALANCE_TREND_DAYS"),
				InventoryBatch:       viper.GetInt("REBALANCE_INVENTORY_BATCH"),
				RunTimeoutSeconds:    viper.GetInt("REBALANCE_RUN_TIMEOUT_SECONDS"),
			},
			Insights: InsightsConfig{
				Enabled:   viper.GetBool("INSIGHTS_ENABLED"),
				Dir:       viper.GetString("INSIGHTS_DIR"),
				Bucket:    viper.GetString("INSIGHTS_BUCKET"),
				Endpoint:  viper.GetString("INSIGHTS_ENDPOINT"),
				AccessKey: viper.GetString("INSIGHTS_ACCESS_KEY"),
				SecretKey: viper.GetString("INSIGHTS_SECRET_KEY"),
				UseSSL:    viper.GetBool("INSIGHTS_USE_SSL"),
			},
		}
	})

	return instance
}

// DefaultRebalanceConfig returns the built-in thresholds without touching
// the environment. Used by tests and by callers that tune fields directly.
func DefaultRebalanceConfig() RebalanceConfig {
	return RebalanceConfig{
		MinTransferValue:     100.0,
		TargetDaysMin:        7.0,
		SourceKeepDays:       14.0,
		LowStockDays:         7.0,
		OverstockDays:        60.0,
		HighDemandMultiplier: 1.5,
		UrgentCap:            10,
		HighCap:              15,
		NormalCap:            20,
		VelocityDays:         14,
		TrendDays:            56,
		InventoryBatch:       500,
		RunTimeoutSeconds:    300,
	}
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
