// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddr string `env:"BOOST_LISTEN_ADDR" envDefault:":8080"`
	Game       string `env:"BOOST_GAME" envDefault:"lol"`
	// ConfigDir overrides the embedded rule tables and enables hot reload.
	ConfigDir     string        `env:"BOOST_CONFIG_DIR"`
	WatchInterval time.Duration `env:"BOOST_WATCH_INTERVAL" envDefault:"2s"`
	LogLevel      string        `env:"BOOST_LOG_LEVEL" envDefault:"info"`

	CloseGrace      time.Duration `env:"BOOST_CHECKOUT_CLOSE_GRACE" envDefault:"300ms"`
	CompletionDelay time.Duration `env:"BOOST_CHECKOUT_COMPLETION_DELAY" envDefault:"2s"`
	SubmitTimeout   time.Duration `env:"BOOST_CHECKOUT_SUBMIT_TIMEOUT" envDefault:"10s"`
	DashboardPath   string        `env:"BOOST_DASHBOARD_PATH" envDefault:"/dashboard"`
	RetryMax        int           `env:"BOOST_RETRY_MAX" envDefault:"3"`
	RetryInitial    time.Duration `env:"BOOST_RETRY_INITIAL" envDefault:"500ms"`
	RetryMaxWait    time.Duration `env:"BOOST_RETRY_MAX_WAIT" envDefault:"10s"`
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load(dotenv string) (Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Game == "" {
		return errors.New("BOOST_GAME is required")
	}
	if c.RetryMax < 1 {
		return errors.New("BOOST_RETRY_MAX must be >= 1")
	}
	if c.ConfigDir != "" {
		info, err := os.Stat(c.ConfigDir)
		if err != nil {
			return fmt.Errorf("BOOST_CONFIG_DIR: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("BOOST_CONFIG_DIR: %s is not a directory", c.ConfigDir)
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("BOOST_LOG_LEVEL: %w", err)
	}
	return nil
}

// Logger builds the process logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}
