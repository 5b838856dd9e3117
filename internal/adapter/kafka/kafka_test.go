package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sea-ice-etl/internal/domain"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("key-1"),
		Value:     []byte(`{"input_path":"/data/a.nc"}`),
		Topic:     "sea-ice-datasets",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("osisaf")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("key-1"), raw.Key)
	assert.JSONEq(t, `{"input_path":"/data/a.nc"}`, string(raw.Value))
	assert.Equal(t, "sea-ice-datasets", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "osisaf", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestToMessage_SortsHeaders(t *testing.T) {
	event := domain.OutputEvent{
		Key:   []byte("req-1"),
		Value: []byte(`{"request_id":"req-1"}`),
		Headers: map[string]string{
			"processed_at": "2024-03-01T12:00:00Z",
			"dataset":      "a.nc",
		},
	}

	msg := toMessage(event)

	assert.Equal(t, []byte("req-1"), msg.Key)
	assert.Equal(t, event.Value, msg.Value)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "dataset", msg.Headers[0].Key)
	assert.Equal(t, []byte("a.nc"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
}

type fakeFetcher struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	err       error
	committed []int64
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	if len(f.msgs) > 0 {
		m := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return m, nil
	}
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return kafkago.Message{}, err
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeFetcher) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeFetcher) Close() error { return nil }

func newTestReader(f *fakeFetcher) *Reader {
	return &Reader{reader: f, flushInterval: 50 * time.Millisecond, logger: slog.Default()}
}

func TestReader_ExtractBatch(t *testing.T) {
	f := &fakeFetcher{msgs: []kafkago.Message{{Offset: 1}, {Offset: 2}, {Offset: 3}}}
	r := newTestReader(f)

	batch, err := r.ExtractBatch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, int64(1), batch[0].Offset)

	require.NoError(t, batch[1].Commit(context.Background()))
	assert.Equal(t, []int64{2}, f.committed)

	// The remaining message arrives before the flush interval expires.
	batch, err = r.ExtractBatch(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, int64(3), batch[0].Offset)
}

func TestReader_ExtractBatch_EmptyOnTimeout(t *testing.T) {
	r := newTestReader(&fakeFetcher{})

	batch, err := r.ExtractBatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestReader_ExtractBatch_CancelledContext(t *testing.T) {
	r := newTestReader(&fakeFetcher{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ExtractBatch(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReader_ExtractBatch_FetchError(t *testing.T) {
	boom := errors.New("broker gone")

	r := newTestReader(&fakeFetcher{err: boom})
	_, err := r.ExtractBatch(context.Background(), 10)
	require.ErrorIs(t, err, boom)

	r = newTestReader(&fakeFetcher{msgs: []kafkago.Message{{Offset: 7}}, err: boom})
	batch, err := r.ExtractBatch(context.Background(), 10)
	require.NoError(t, err, "a partial batch is returned when fetching fails mid-batch")
	assert.Len(t, batch, 1)
}
