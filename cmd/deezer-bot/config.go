package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	BotToken      string        `env:"BOT_TOKEN,required"`
	ARLCookie     string        `env:"ARL_COOKIE,required"`
	DatabaseURL   string        `env:"DATABASE_URL,required"`
	BufferChannel int64         `env:"BUFFER_CHANNEL,required"`
	OpsAddr       string        `env:"OPS_ADDR" envDefault:":8080"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	SearchTTL     time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"5m"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

func loadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
