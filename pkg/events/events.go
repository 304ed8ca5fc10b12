package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Assignment lifecycle event types.
const (
	AssignmentCreated   = "assignment.created"
	AssignmentSubmitted = "assignment.submitted"
	AssignmentReviewed  = "assignment.reviewed"
	AssignmentDeleted   = "assignment.deleted"
)

// AssignmentEvent is the payload published for every lifecycle transition.
type AssignmentEvent struct {
	Type         string    `json:"type"`
	AssignmentID uint      `json:"assignment_id"`
	TeacherID    uint      `json:"teacher_id"`
	StudentID    uint      `json:"student_id"`
	ClassID      uint      `json:"class_id"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher emits lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event AssignmentEvent) error
	Close()
}

// NATSPublisher publishes events on a single NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// Connect dials NATS and returns a publisher bound to subject.
func Connect(url, subject string, logger zerolog.Logger) (*NATSPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}
	if subject == "" {
		return nil, fmt.Errorf("nats subject must not be empty")
	}

	conn, err := nats.Connect(url,
		nats.Name("qazaq-teachers"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return NewNATSPublisher(conn, subject, logger), nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

// Publish serialises the event and sends it on the configured subject.
func (p *NATSPublisher) Publish(_ context.Context, event AssignmentEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.logger.Debug().Str("type", event.Type).Uint("assignment_id", event.AssignmentID).Msg("event published")
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to drain nats connection")
	}
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, AssignmentEvent) error { return nil }

// Close implements Publisher.
func (Nop) Close() {}
