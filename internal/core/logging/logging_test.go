package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_RedactsPIIKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	require.NoError(t, err)

	logger.Info("ping stored",
		"device_id", "d1",
		"email", "someone@example.com",
		slog.Group("contact", "phone_number", "+15550100", "relation", "friend"),
		"context", map[string]interface{}{
			"address": "1 Main St",
			"latitude": 37.7749,
		},
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	require.Equal(t, "d1", entry["device_id"])
	require.Equal(t, redacted, entry["email"])

	contact := entry["contact"].(map[string]interface{})
	require.Equal(t, redacted, contact["phone_number"])
	require.Equal(t, "friend", contact["relation"])

	ctx := entry["context"].(map[string]interface{})
	require.Equal(t, redacted, ctx["address"])
	require.Equal(t, 37.7749, ctx["latitude"])
	require.NotContains(t, buf.String(), "someone@example.com")
}

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "text")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	_, err = New(&buf, "loud", "text")
	require.Error(t, err)

	_, err = New(&buf, "info", "xml")
	require.Error(t, err)
}
