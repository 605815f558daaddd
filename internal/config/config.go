// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Notifier   NotifierConfig   `yaml:"notifier"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

type SchedulerConfig struct {
	DigestHour   int           `yaml:"digest_hour"`   // час утренней рассылки, по умолчанию 6
	DueLookahead time.Duration `yaml:"due_lookahead"` // за сколько предупреждать, по умолчанию 15m
	Recurrence   bool          `yaml:"recurrence"`    // канал повторяющихся напоминаний
	Digest       bool          `yaml:"digest"`        // канал дайджеста
}

type NotifierConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

func Load() (*Config, error) {
	file, err := os.Open("config.yml")
	if err != nil {
		return nil, fmt.Errorf("не могу открыть config.yml: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга config.yml: %w", err)
	}

	if cfg.Scheduler.DigestHour == 0 {
		cfg.Scheduler.DigestHour = 6
	}
	if cfg.Scheduler.DueLookahead == 0 {
		cfg.Scheduler.DueLookahead = 15 * time.Minute
	}

	return &cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
