// Package events publishes best-effort notifications about logged exercises.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/GalladeX3/exercise-tracker-test-project/internal/domain"
)

// ExerciseLoggedEvent is the payload emitted after an exercise is persisted.
type ExerciseLoggedEvent struct {
	ExerciseID  string    `json:"exercise_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	DurationMin int       `json:"duration_min"`
	PerformedAt time.Time `json:"performed_at"`
	EmittedAt   time.Time `json:"emitted_at"`
}

// messageWriter is the slice of kafka.Writer the publisher depends on.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits exercise.logged events to Kafka. Publishing is best
// effort: failures are logged and never propagated to the request path.
type Publisher struct {
	writer messageWriter
}

// NewPublisher builds a Publisher writing to the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

// ExerciseLogged implements domain.EventSink.
func (p *Publisher) ExerciseLogged(ctx context.Context, user domain.User, exercise domain.Exercise) {
	payload, err := json.Marshal(ExerciseLoggedEvent{
		ExerciseID:  exercise.ID,
		UserID:      user.ID,
		Username:    user.Username,
		Description: exercise.Description,
		DurationMin: exercise.DurationMin,
		PerformedAt: exercise.PerformedAt,
		EmittedAt:   time.Now().UTC(),
	})
	if err != nil {
		log.Printf("events: marshal exercise.logged: %v", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(user.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("exercise.logged")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("events: publish exercise.logged for user %s: %v", user.ID, err)
	}
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
