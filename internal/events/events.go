// Package events publishes workout change notifications to Kafka so other
// services (coaching, notifications) can follow a user's training log.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/observability"
)

// Event types.
const (
	TypeWorkoutPlanned   = "workout.planned"
	TypeWorkoutCompleted = "workout.completed"
	TypeWorkoutUpdated   = "workout.updated"
	TypeWorkoutDeleted   = "workout.deleted"
	TypeRaceCreated      = "race.created"
)

// Event is the JSON body of every published message.
type Event struct {
	ID          uuid.UUID    `json:"id"`
	Type        string       `json:"type"`
	UserID      uuid.UUID    `json:"user_id"`
	SubjectID   uuid.UUID    `json:"subject_id"`
	Kind        string       `json:"kind,omitempty"`
	Discipline  string       `json:"discipline,omitempty"`
	WorkoutDate caldate.Date `json:"workout_date,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// Publisher delivers events after a write has been committed.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event. It is used when Kafka is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single topic keyed by user id, so one
// user's events stay ordered within a partition.
type KafkaPublisher struct {
	w   messageWriter
	now func() time.Time
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
	})
}

func newKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w, now: time.Now}
}

// Publish marshals ev and writes it synchronously. Missing ids and
// timestamps are filled in.
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = p.now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.UserID.String()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	})
	observability.RecordEventPublished(ev.Type, err)
	if err != nil {
		return fmt.Errorf("writing %s event: %w", ev.Type, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
