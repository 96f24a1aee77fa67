package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

var (
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrAuthDisabled  = errors.New("auth cannot be required while it is disabled")
)

type Config struct {
	LogLevel string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage  Storage `yaml:"storage"`
	Redis    Redis   `yaml:"redis"`
	Session  Session `yaml:"session"`
	Auth     Auth    `yaml:"auth"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"redis"`
	SQLitePath string `yaml:"sqlite-path" env:"SQLITE_PATH" env-default:"games.db"`
}

type Redis struct {
	Host         string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port         string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	DialTimeout  time.Duration `yaml:"dial-timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `yaml:"read-timeout" env:"REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `yaml:"write-timeout" env:"REDIS_WRITE_TIMEOUT" env-default:"3s"`
}

type Session struct {
	TTL time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"1h"`
}

// Auth - login sessions. An empty secret means a random one per process, so sessions do not survive restarts.
type Auth struct {
	Disabled bool          `yaml:"disabled" env:"AUTH_DISABLED"`
	Required bool          `yaml:"required" env:"AUTH_REQUIRED" env-default:"false"`
	Secret   string        `yaml:"secret" env:"AUTH_SECRET"`
	TTL      time.Duration `yaml:"ttl" env:"AUTH_TTL" env-default:"24h"`
}

// Load - reads the yaml file, with environment overrides. A missing file means env only.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from environment: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	default:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) Validate() error {
	switch that.Storage.Driver {
	case DriverRedis, DriverSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, that.Storage.Driver)
	}

	if that.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", that.Session.TTL)
	}

	if !that.Auth.Disabled && that.Auth.TTL <= 0 {
		return fmt.Errorf("auth ttl must be positive, got %s", that.Auth.TTL)
	}

	if that.Auth.Required && that.Auth.Disabled {
		return ErrAuthDisabled
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return net.JoinHostPort(that.Host, that.Port)
}
