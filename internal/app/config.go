package app

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/go-task-manager/internal/config"
)

// MustReadEnv reads the config from the environment, or from the file named
// by CONFIG_PATH when it is set.
func MustReadEnv() {
	var reader config.Reader = config.NewEnvReader()
	if path := os.Getenv(config.PathEnv); path != "" {
		reader = config.NewFileReader(path)
	}

	cfg, err := reader.Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		config.WriteUsage(os.Stderr)
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Str("store_driver", cfg.Store.Driver).
		Msg("read env")

	config.SetGlobal(cfg)
}
