package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-manager/internal/config"
)

const serviceName = "task-manager"

var globalLogger zerolog.Logger

func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"
	zerolog.DurationFieldUnit = time.Millisecond

	globalLogger = newBaseLogger(os.Stdout)
	globalLogger.Info().Msg("initialized default logger")
}

func MustInitApplicationLogger() {
	cfg := config.Global()

	logger, err := newEnvLogger(cfg.Env, os.Stdout)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("env", cfg.Env).
			Msg("failed to init application logger")
		panic(err)
	}
	zerolog.SetGlobalLevel(logger.GetLevel())
	globalLogger = logger

	gin.DebugPrintRouteFunc = func(method, path, handler string, handlers int) {
		globalLogger.Debug().
			Str("method", method).
			Str("path", path).
			Str("handler", handler).
			Int("handlers", handlers).
			Msg("registered route")
	}
	globalLogger.Info().Msg("initialized application logger")
}

func newBaseLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Str("service", serviceName).
		Logger()
}

// newEnvLogger picks the level and output format for env. Local runs get a
// human-readable console writer.
func newEnvLogger(env string, w io.Writer) (zerolog.Logger, error) {
	var level zerolog.Level
	switch env {
	case config.EnvDev:
		level = zerolog.DebugLevel
	case config.EnvProd:
		level = zerolog.InfoLevel
	case config.EnvLocal:
		level = zerolog.TraceLevel

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		w = consoleWriter
	default:
		return zerolog.Nop(), fmt.Errorf("unknown env: %s", env)
	}
	return newBaseLogger(w).Level(level), nil
}

func componentLogger(name string) zerolog.Logger {
	return globalLogger.With().Str("component", name).Logger()
}
