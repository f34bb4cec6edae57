package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNATSAttemptPublisherWithoutConnectionIsNoop(t *testing.T) {
	publisher := NewNATSAttemptPublisher(nil, "formkit.attempts.completed", testLogger())

	err := publisher.Publish(context.Background(), AttemptEvent{AttemptID: 1})
	require.NoError(t, err)
}

func TestEncodeAttemptEventFillsIdentity(t *testing.T) {
	completed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	payload, err := encodeAttemptEvent(AttemptEvent{
		FormID:       3,
		AttemptID:    9,
		RespondentID: uintPtr(4),
		Percentage:   87.5,
		Passed:       true,
		PassingMode:  "dual",
		CompletedAt:  completed,
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.NotEmpty(t, decoded["event_id"])
	require.Equal(t, AttemptEventType, decoded["type"])
	require.Equal(t, float64(9), decoded["attempt_id"])
	require.Equal(t, float64(4), decoded["respondent_id"])
	require.Equal(t, "2024-05-01T12:00:00Z", decoded["completed_at"])

	anonymous, err := encodeAttemptEvent(AttemptEvent{EventID: "fixed", Type: "custom"})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(anonymous, &decoded))
	require.Equal(t, "fixed", decoded["event_id"])
	require.Equal(t, "custom", decoded["type"])
}
