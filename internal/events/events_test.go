package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tritrack/tritrack/internal/caldate"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w)
	p.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	user := uuid.New()
	err := p.Publish(context.Background(), Event{
		Type:        TypeWorkoutCompleted,
		UserID:      user,
		SubjectID:   uuid.New(),
		Discipline:  "run",
		WorkoutDate: caldate.MustParse("2024-03-15"),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, user.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, TypeWorkoutCompleted, string(msg.Headers[0].Value))

	var ev Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, "2024-03-15", ev.WorkoutDate.String())
	assert.Equal(t, 2024, ev.OccurredAt.Year())
}

func TestKafkaPublisherError(t *testing.T) {
	w := &fakeWriter{err: errors.New("no brokers")}
	p := newKafkaPublisher(w)
	err := p.Publish(context.Background(), Event{Type: TypeWorkoutDeleted})
	assert.ErrorContains(t, err, "workout.deleted")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
