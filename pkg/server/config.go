package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config is read from the environment. REDIS_URL takes a redis:// url or a plain
// host:port address.
type Config struct {
	ListenAddr    string        `env:"LISTEN_ADDR,default=:8080"`
	SearchUrl     string        `env:"SEARCH_URL,required"`
	SearchToken   string        `env:"SEARCH_TOKEN"`
	RedisUrl      string        `env:"REDIS_URL"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RabbitUrl     string        `env:"RABBIT_URL"`
	Country       string        `env:"COUNTRY,default=se"`
	CacheTtl      time.Duration `env:"CACHE_TTL,default=1m"`
	Debug         bool          `env:"DEBUG,default=false"`
}

func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}
