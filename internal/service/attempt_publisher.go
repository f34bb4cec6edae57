package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/formkit-api/internal/observability"
)

// AttemptEvent is broadcast after a quiz attempt is graded and stored.
type AttemptEvent struct {
	EventID      string    `json:"event_id"`
	Type         string    `json:"type"`
	FormID       uint      `json:"form_id"`
	FormPublicID string    `json:"form_public_id"`
	OwnerID      uint      `json:"owner_id"`
	ResponseID   uint      `json:"response_id"`
	AttemptID    uint      `json:"attempt_id"`
	RespondentID *uint     `json:"respondent_id,omitempty"`
	Score        int       `json:"score"`
	TotalPoints  int       `json:"total_points"`
	Percentage   float64   `json:"percentage"`
	Passed       bool      `json:"passed"`
	PassingMode  string    `json:"passing_mode"`
	CompletedAt  time.Time `json:"completed_at"`
}

// AttemptEventType is the type tag carried by completed attempt events.
const AttemptEventType = "attempt.completed"

// AttemptPublisher hands attempt events to downstream consumers.
type AttemptPublisher interface {
	Publish(ctx context.Context, event AttemptEvent) error
}

type natsAttemptPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSAttemptPublisher publishes events on subject. A nil connection turns Publish into a no-op.
func NewNATSAttemptPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) AttemptPublisher {
	return &natsAttemptPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "attempt_publisher").Logger(),
	}
}

func (p *natsAttemptPublisher) Publish(ctx context.Context, event AttemptEvent) error {
	if p.conn == nil || p.subject == "" {
		observability.AttemptEvents().WithLabelValues("skipped").Inc()
		p.logger.Debug().Uint("attempt_id", event.AttemptID).Msg("broker not configured; attempt event dropped")
		return nil
	}

	payload, err := encodeAttemptEvent(event)
	if err != nil {
		observability.AttemptEvents().WithLabelValues("error").Inc()
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		observability.AttemptEvents().WithLabelValues("error").Inc()
		return err
	}

	observability.AttemptEvents().WithLabelValues("published").Inc()
	return nil
}

func encodeAttemptEvent(event AttemptEvent) ([]byte, error) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Type == "" {
		event.Type = AttemptEventType
	}
	return json.Marshal(event)
}
