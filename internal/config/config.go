package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"host=localhost user=postgres password=postgres dbname=reconciliation port=5432 sslmode=disable"`
	CORSOrigin  string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`

	// LedgerBatchSize bounds memory during a full ledger reload.
	LedgerBatchSize int `env:"LEDGER_BATCH_SIZE" envDefault:"5000"`
	PreviewRowLimit int `env:"PREVIEW_ROW_LIMIT" envDefault:"20"`
}

// Load parses configuration from environment variables. Call godotenv.Load
// first if a .env file should be honored.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal("config: ", err)
	}
	return cfg
}

func InitDB(cfg Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}
	return db
}
