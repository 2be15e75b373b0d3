package kafkaclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockWriter records written messages in place of the kafka-go Writer.
type mockWriter struct {
	messages []kafka.Message
	err      error
	isClosed bool
}

func (mw *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if mw.isClosed {
		return errors.New("kafka: writer closed")
	}
	if mw.err != nil {
		return mw.err
	}
	mw.messages = append(mw.messages, msgs...)
	return nil
}

func (mw *mockWriter) Close() error {
	mw.isClosed = true
	return nil
}

type testEvent struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestPublish(t *testing.T) {
	mw := &mockWriter{}
	producer := NewKafkaProducerWithWriter(mw, "snapshots")

	err := producer.Publish(context.Background(), "run-1", testEvent{Name: "facilities", Count: 3})
	require.NoError(t, err)

	require.Len(t, mw.messages, 1)
	msg := mw.messages[0]
	assert.Equal(t, "run-1", string(msg.Key))
	assert.False(t, msg.Time.IsZero())

	var got testEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, testEvent{Name: "facilities", Count: 3}, got)
}

func TestPublishWriteError(t *testing.T) {
	mw := &mockWriter{err: errors.New("leader not available")}
	producer := NewKafkaProducerWithWriter(mw, "snapshots")

	err := producer.Publish(context.Background(), "run-1", testEvent{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `topic "snapshots"`)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestPublishUnencodableEvent(t *testing.T) {
	mw := &mockWriter{}
	producer := NewKafkaProducerWithWriter(mw, "snapshots")

	err := producer.Publish(context.Background(), "run-1", make(chan int))

	require.Error(t, err)
	assert.Empty(t, mw.messages)
}

func TestClose(t *testing.T) {
	mw := &mockWriter{}
	producer := NewKafkaProducerWithWriter(mw, "snapshots")

	require.NoError(t, producer.Close())
	assert.True(t, mw.isClosed)
	assert.Error(t, producer.Publish(context.Background(), "run-1", testEvent{}))
}
