package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	SocketPort        string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8888"`
	WSPort            string `yaml:"ws-port" env:"WS_PORT" env-default:"8889"`
	HTTPPort          string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"xiangqi.db"`
	Redis             Redis  `yaml:"redis"`
	Game              Game   `yaml:"game"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Game struct {
	ResetDelay     time.Duration `yaml:"reset-delay" env:"GAME_RESET_DELAY" env-default:"3s"`
	ClockInterval  time.Duration `yaml:"clock-interval" env:"GAME_CLOCK_INTERVAL" env-default:"1s"`
	OutboundBuffer int           `yaml:"outbound-buffer" env:"GAME_OUTBOUND_BUFFER" env-default:"64"`
	WriteTimeout   time.Duration `yaml:"write-timeout" env:"GAME_WRITE_TIMEOUT" env-default:"5s"`
	MaxLineBytes   int           `yaml:"max-line-bytes" env:"GAME_MAX_LINE_BYTES" env-default:"65536"`
}

// MustLoad - load all configurations in config.yml file, falling back to the environment when it is absent.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	default:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

var ErrInvalidConfig = errors.New("invalid config")

func (that *Config) Validate() error {
	switch {
	case that.Game.ResetDelay < 0:
		return fmt.Errorf("%w: game.reset-delay must not be negative", ErrInvalidConfig)
	case that.Game.ClockInterval <= 0:
		return fmt.Errorf("%w: game.clock-interval must be positive", ErrInvalidConfig)
	case that.Game.OutboundBuffer <= 0:
		return fmt.Errorf("%w: game.outbound-buffer must be positive", ErrInvalidConfig)
	case that.Game.MaxLineBytes <= 0:
		return fmt.Errorf("%w: game.max-line-bytes must be positive", ErrInvalidConfig)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
