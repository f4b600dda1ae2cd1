package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/demo-data-assistant/pkg/logger"
)

func TestNew_ProduccionJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Out: &buf})

	log.Info().Msg("descartado")
	log.Warn().Str("model", "crm.lead").Msg("registro omitido")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), "una sola línea JSON")
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "crm.lead", line["model"])
	assert.Equal(t, "registro omitido", line["message"])
}

func TestNew_NivelInvalidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "ruidoso", Out: &buf})

	log.Debug().Msg("no")
	assert.Zero(t, buf.Len())
	log.Info().Msg("sí")
	assert.Contains(t, buf.String(), `"level":"info"`)
}
