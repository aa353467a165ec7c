package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines the app configuration.
type Config struct {
	Server struct {
		Port int    `yaml:"port" env:"BOOKFORM_PORT" env-description:"form server port" validate:"min=1,max=65535"`
		Env  string `yaml:"env" env:"BOOKFORM_ENV" env-description:"environment (development|staging|production)" validate:"oneof=development staging production"`
	} `yaml:"server"`
	API struct {
		BaseURL string `yaml:"base_url" env:"BOOKFORM_API_BASE_URL" env-description:"base URL of the book API" validate:"required,url"`
		Timeout string `yaml:"timeout" env:"BOOKFORM_API_TIMEOUT" env-description:"overall timeout for one book API call" validate:"required"`
	} `yaml:"api"`
	Limiter struct {
		RPS     float64 `yaml:"rps" env:"BOOKFORM_LIMITER_RPS" env-description:"rate limiter maximum requests per second" validate:"required_if=Enabled true,gte=0"`
		Burst   int     `yaml:"burst" env:"BOOKFORM_LIMITER_BURST" env-description:"rate limiter maximum burst" validate:"required_if=Enabled true,gte=0"`
		Enabled bool    `yaml:"enabled" env:"BOOKFORM_LIMITER_ENABLED" env-description:"enable rate limiter"`
	} `yaml:"limiter"`
	Cors struct {
		TrustedOrigins []string `yaml:"trusted_origins,omitempty" env:"BOOKFORM_CORS_TRUSTED_ORIGINS" env-separator:" " env-description:"trusted CORS origins (space separated)"`
	} `yaml:"cors"`
	Metrics struct {
		Enabled bool `yaml:"enabled" env:"BOOKFORM_METRICS_ENABLED" env-description:"expose /debug/vars"`
	} `yaml:"metrics"`
	BasicAuth struct {
		Username string `yaml:"username" env:"BOOKFORM_BASIC_AUTH_USERNAME" env-description:"username for /debug/vars" validate:"required_with=Password"`
		Password string `yaml:"password" env:"BOOKFORM_BASIC_AUTH_PASSWORD" env-description:"password for /debug/vars" validate:"required_with=Username"`
	} `yaml:"basic_auth"`
	Log struct {
		Level string `yaml:"level" env:"BOOKFORM_LOG_LEVEL" env-description:"minimum log level (debug|info|error|fatal|off)" validate:"omitempty,oneof=debug info error fatal off"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file or environment overrides it.
func Default() Config {
	var cfg Config
	cfg.Server.Port = 4000
	cfg.Server.Env = "development"
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.API.Timeout = "10s"
	cfg.Limiter.RPS = 4
	cfg.Limiter.Burst = 8
	cfg.Limiter.Enabled = true
	cfg.Log.Level = "info"
	return cfg
}

// Decode loads the configuration. Values are layered in this order, later
// sources winning: defaults, the YAML file at path (skipped when path is empty
// or missing), environment variables. The result is not validated; call
// Validate once command line overrides have been applied.
func Decode(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		err := decodeFile(path, &cfg)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv exports the variables in a .env file into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate checks cfg for values the application cannot run with.
func Validate(cfg Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	if _, err := cfg.APITimeout(); err != nil {
		return fmt.Errorf("invalid configuration: api.timeout: %w", err)
	}
	return nil
}

// APITimeout parses API.Timeout. A zero timeout is rejected.
func (c Config) APITimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

// Sample renders the default configuration as a YAML file.
func Sample() ([]byte, error) {
	out, err := yaml.Marshal(Default())
	if err != nil {
		return nil, err
	}
	header := "# bookform configuration. Environment variables override these values;\n# run `bookctl config env` to list them.\n"
	return append([]byte(header), out...), nil
}

// EnvUsage describes every environment variable the configuration reads.
func EnvUsage() (string, error) {
	var cfg Config
	header := "Environment variables:"
	return cleanenv.GetDescription(&cfg, &header)
}
