package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-manager/internal/config"
)

func TestNewEnvLogger(t *testing.T) {
	tests := []struct {
		env   string
		level zerolog.Level
	}{
		{config.EnvLocal, zerolog.TraceLevel},
		{config.EnvDev, zerolog.DebugLevel},
		{config.EnvProd, zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			logger, err := newEnvLogger(tt.env, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.level, logger.GetLevel())
		})
	}

	_, err := newEnvLogger("staging", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewEnvLogger_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newEnvLogger(config.EnvProd, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())

	logger.Info().Str("task_id", "42").Msg("kept")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "42", entry["task_id"])
	assert.Equal(t, serviceName, entry["service"])
}
