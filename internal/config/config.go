package config

import (
	"github.com/caarlos0/env/v11"
	"golang.org/x/xerrors"
)

type Config struct {
	Root   string `env:"CONTAINER_STORE_ROOT" envDefault:"/var/lib/containerstore"`
	Listen string `env:"CONTAINER_STORE_LISTEN" envDefault:"127.0.0.1:9102"`
}

func Load() (Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return Config{}, xerrors.Errorf("Failed to parse environment configuration: %w", err)
	}
	return config, nil
}
