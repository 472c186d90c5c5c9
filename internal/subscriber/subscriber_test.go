package subscriber

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jeffleon2/draftea-paymentscore/config"
	"github.com/jeffleon2/draftea-paymentscore/internal/models"
	"github.com/jeffleon2/draftea-paymentscore/internal/service/mocks"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	messages chan kafka.Message
	closed   chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{messages: make(chan kafka.Message, len(msgs)), closed: make(chan struct{})}
	for _, m := range msgs {
		r.messages <- m
	}
	return r
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) Close() error {
	close(r.closed)
	return nil
}

func newConsumer(t *testing.T, readers ...MessageReader) (*KafkaConsumer, *mocks.MockPublisher, *[]time.Duration) {
	dlq := mocks.NewMockPublisher(t)
	var slept []time.Duration
	return &KafkaConsumer{
		Readers:      readers,
		DLQPublisher: dlq,
		RetryConfig:  config.RetryConfig{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond, MaxDelay: time.Second},
		Sleep:        func(d time.Duration) { slept = append(slept, d) },
	}, dlq, &slept
}

func TestProcessMessage_SucceedsAfterRetry(t *testing.T) {
	consumer, _, slept := newConsumer(t)
	calls := 0
	handler := func(ctx context.Context, topic string, value []byte) error {
		calls++
		if calls < 2 {
			return errors.New("database unavailable")
		}
		return nil
	}

	consumer.processMessage(context.Background(), kafka.Message{Topic: "fraud.decisions", Value: []byte(`{}`)}, handler)

	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, *slept)
}

func TestProcessMessage_DeadLettersAfterMaxAttempts(t *testing.T) {
	consumer, dlq, slept := newConsumer(t)
	msg := kafka.Message{Topic: "fraud.decisions", Key: []byte("SESS_1"), Value: []byte(`{"session_id":"SESS_1"}`)}

	dlq.EXPECT().
		Publish(mock.Anything, models.PaymentsDLQTopic, mock.MatchedBy(func(m models.DLQMessage) bool {
			return m.OriginalTopic == "fraud.decisions" && m.Key == "SESS_1" &&
				m.Value == `{"session_id":"SESS_1"}` && m.Attempts == 3
		})).
		Return(nil).
		Once()

	consumer.processMessage(context.Background(), msg, func(ctx context.Context, topic string, value []byte) error {
		return errors.New("always fails")
	})

	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}, *slept)
}

func TestProcessMessage_NoDLQConfigured(t *testing.T) {
	consumer, _, _ := newConsumer(t)
	consumer.DLQPublisher = nil

	assert.NotPanics(t, func() {
		consumer.processMessage(context.Background(), kafka.Message{Topic: "t"}, func(ctx context.Context, topic string, value []byte) error {
			return errors.New("fails")
		})
	})
}

func TestListen_DeliversAndStopsOnCancel(t *testing.T) {
	reader := newFakeReader(
		kafka.Message{Topic: "fraud.decisions", Value: []byte("a")},
		kafka.Message{Topic: "fraud.decisions", Value: []byte("b")},
	)
	consumer, _, _ := newConsumer(t, reader)

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer.Listen(ctx, func(ctx context.Context, topic string, value []byte) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(value))
		if len(seen) == 2 {
			close(done)
		}
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("messages were not delivered")
	}
	cancel()

	select {
	case <-reader.closed:
	case <-time.After(time.Second):
		t.Fatal("reader was not closed after cancel")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"a", "b"}, seen)
}
