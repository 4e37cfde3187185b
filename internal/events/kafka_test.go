package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	e := New(ProductCreated, "64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", string(msg.Key))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ProductCreated, decoded.Type)
	assert.Equal(t, e.ID, decoded.ID)

	require.NotEmpty(t, msg.Headers)
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, ProductCreated, string(msg.Headers[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}

	err := p.Publish(context.Background(), New(OrderCreated, "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewKafkaWriter_DoesNotBlockRequests(t *testing.T) {
	w := newKafkaWriter([]string{"k1:9092", "k2:9092"}, "eshop-events")

	assert.True(t, w.Async)
	assert.Equal(t, 1, w.MaxAttempts)
	assert.Equal(t, "eshop-events", w.Topic)
	require.NotNil(t, w.Completion)

	assert.NotPanics(t, func() {
		w.Completion([]kafka.Message{{Key: []byte("x")}}, errors.New("broker down"))
		w.Completion(nil, nil)
	})
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), New(UserDeleted, "x")))
	assert.NoError(t, p.Close())
}
