package temporal

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAdapter_WritesKeyvals(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewLogAdapter(zerolog.New(&buf))

	adapter.With("workflow", "sweep").Info("started", "attempt", 2, "dangling")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "started", entry["message"])
	assert.Equal(t, "temporal", entry["component"])
	assert.Equal(t, "sweep", entry["workflow"])
	assert.Equal(t, float64(2), entry["attempt"])
	assert.Contains(t, entry, "dangling")
}
