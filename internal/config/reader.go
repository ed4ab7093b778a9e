package config

import (
	"fmt"
	"io"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the variable that points to an optional config file.
const PathEnv = "CONFIG_PATH"

type Reader interface {
	Read() (*Config, error)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	return validated(cfg)
}

// FileReader reads a YAML, JSON, TOML or .env file. Environment variables
// override values from the file.
type FileReader struct {
	path string
}

func NewFileReader(path string) FileReader {
	return FileReader{path: path}
}

func (r FileReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadConfig(r.path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", r.path, err)
	}
	return validated(cfg)
}

func validated(cfg *Config) (*Config, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// WriteUsage prints every supported variable with its default.
func WriteUsage(w io.Writer) {
	cleanenv.FUsage(w, new(Config), nil)()
}
