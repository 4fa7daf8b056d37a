package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/boardinghub/boardinghub-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	var info, errs bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	logger.Info("booking created", "booking_id", "b-1")
	logger.Error("booking approval failed", "error", "boom")

	assert.Contains(t, info.String(), "booking created")
	assert.Contains(t, info.String(), "booking approval failed")
	assert.NotContains(t, errs.String(), "booking created")
	assert.Contains(t, errs.String(), "booking approval failed")
}

func TestPGHandlerBuffersErrorRecords(t *testing.T) {
	h := &PGHandler{buffer: make([]models.SystemLog, 0, 50)}

	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))

	logger := slog.New(h).With("request_id", "req-42")
	logger.Error("permit upload failed",
		"user_id", "u-1",
		"action", "upload_permit",
		"error", "disk full",
		"latency", 1500*time.Millisecond,
		"permit_type", "business",
	)

	require.Len(t, h.buffer, 1)
	entry := h.buffer[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "permit upload failed", entry.Message)
	assert.Equal(t, "req-42", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "upload_permit", entry.Action)
	assert.Equal(t, "disk full", entry.Error)
	assert.Equal(t, 1500, entry.LatencyMs)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, "business", extra["permit_type"])
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error {
	return assert.AnError
}

func TestMultiHandlerKeepsGoingAfterSinkError(t *testing.T) {
	var out bytes.Buffer
	h := NewMultiHandler(failingHandler{}, slog.NewJSONHandler(&out, nil))

	rec := slog.NewRecord(time.Now(), slog.LevelError, "review recompute failed", 0)
	err := h.Handle(context.Background(), rec)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, out.String(), "review recompute failed")
}
