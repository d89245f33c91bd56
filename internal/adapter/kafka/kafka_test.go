package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/fews-explorer/internal/config"
	"github.com/couchcryptid/fews-explorer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	v := 9.81
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	obs := domain.Observation{
		LocationID:  "LOBH",
		ParameterID: "H.obs",
		Timestamp:   &ts,
		Value:       &v,
		SeriesID:    "LOBH - H.obs",
	}

	msg, err := serializeToMessage(obs, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("LOBH - H.obs"), msg.Key)
	assert.JSONEq(t, `{
		"location_id": "LOBH",
		"parameter_id": "H.obs",
		"timestamp": "2024-03-01T00:00:00Z",
		"value": 9.81,
		"series_id": "LOBH - H.obs"
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "series_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("LOBH - H.obs"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_MissingValue(t *testing.T) {
	obs := domain.Observation{LocationID: "L", ParameterID: "P", SeriesID: "L - P"}

	msg, err := serializeToMessage(obs, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"value":null`)
	assert.Contains(t, string(msg.Value), `"timestamp":null`)
}

func TestWriter_LoadBatch_EmptyIsNoop(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaTopic: "fews-observations"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.LoadBatch(context.Background(), nil))
}
