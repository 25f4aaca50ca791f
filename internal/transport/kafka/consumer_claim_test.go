package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"

	"sulytrack/internal/events"
	"sulytrack/internal/testutil"
)

type fakeSession struct {
	ctx context.Context

	mu     sync.Mutex
	marked int
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(*sarama.ConsumerMessage, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked++
}

func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "" }
func (s *fakeSession) GenerationID() int32                      { return 0 }

func (s *fakeSession) MarkedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked
}

type fakeClaim struct {
	ch chan *sarama.ConsumerMessage
}

func (c fakeClaim) Topic() string              { return "t" }
func (c fakeClaim) Partition() int32           { return 0 }
func (c fakeClaim) InitialOffset() int64       { return 0 }
func (c fakeClaim) HighWaterMarkOffset() int64 { return 0 }
func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage {
	return c.ch
}

func claimOf(values ...[]byte) fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(values))
	for _, v := range values {
		ch <- &sarama.ConsumerMessage{Value: v}
	}
	close(ch)
	return fakeClaim{ch: ch}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestConsumeClaim_BadJSON_Skips(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecorder()
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, events.Event) error {
			t.Fatal("handler must not be called")
			return nil
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf([]byte("not-json")))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())

	_, ok := rec.Find("warn", "kafka bad json")
	require.True(t, ok)
}

func TestConsumeClaim_EmptyType_Skips(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecorder()
	calls := 0

	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, events.Event) error {
			calls++
			return nil
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(mustJSON(t, EventDTO{Type: "   ", DriverID: "d1"})))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())
	require.Equal(t, 0, calls)

	_, ok := rec.Find("warn", "kafka empty event type")
	require.True(t, ok)
}

func TestConsumeClaim_PermanentError_SkipsAndMarks(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecorder()
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, events.Event) error {
			return Permanent(errors.New("chat not found"))
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(mustJSON(t, EventDTO{Type: events.DriverRegistered, DriverID: "d1"})))
	require.NoError(t, err)
	require.Equal(t, 1, sess.MarkedCount())

	_, ok := rec.Find("warn", "kafka permanent failure, skipping message")
	require.True(t, ok)
}

func TestConsumeClaim_TransientError_StopsWithoutMarking(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecorder()
	sentinel := errors.New("telegram timeout")
	c := &Consumer{
		logger: rec.Logger(),
		handler: func(context.Context, events.Event) error {
			return sentinel
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(
		mustJSON(t, EventDTO{Type: events.DriverRegistered, DriverID: "d1", OccurredAt: time.Now().UTC()}),
		mustJSON(t, EventDTO{Type: events.DriverRegistered, DriverID: "d2"}),
	))
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 0, sess.MarkedCount())

	e, ok := rec.Find("error", "kafka handle failed, will retry")
	require.True(t, ok)
	key, _ := e.Field("key")
	require.Equal(t, "d1", key)
}

func TestConsumeClaim_Success_Marks(t *testing.T) {
	t.Parallel()

	rec := testutil.NewRecorder()
	calls := 0

	c := &Consumer{
		logger: rec.Logger(),
		handler: func(_ context.Context, ev events.Event) error {
			calls++
			require.Equal(t, "d1", ev.DriverID)
			require.Equal(t, events.DriverAvailabilityChanged, ev.Type)
			return nil
		},
	}
	h := &groupHandler{c: c}

	sess := &fakeSession{ctx: context.Background()}
	err := h.ConsumeClaim(sess, claimOf(mustJSON(t, EventDTO{Type: " Driver.Availability_Changed ", DriverID: "d1"})))
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, sess.MarkedCount())
}
