package tracker

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository/memory"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSink struct {
	mu      sync.Mutex
	records []domain.RequestRecord
	err     error
	block   chan struct{}
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Record(ctx context.Context, r domain.RequestRecord) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return s.err
}

func (s *recordingSink) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.Path
	}
	return out
}

func record(path string) domain.RequestRecord {
	return domain.RequestRecord{Method: "GET", Path: path, Route: path, Status: 200, ReceivedAt: time.Now()}
}

func TestTracker_DeliversInOrder(t *testing.T) {
	sink := &recordingSink{}
	tr := New(zap.NewNop(), 8, sink)
	tr.Start()

	for _, p := range []string{"/a", "/b", "/c"} {
		assert.True(t, tr.Track(record(p)))
	}
	require.NoError(t, tr.Close(context.Background()))
	assert.Equal(t, []string{"/a", "/b", "/c"}, sink.paths())
}

func TestTracker_FailingSinkDoesNotStopOthers(t *testing.T) {
	failing := &recordingSink{err: errors.New("sink down")}
	healthy := &recordingSink{}
	core, logs := observer.New(zapcore.WarnLevel)
	tr := New(zap.New(core), 8, failing, healthy)
	tr.Start()

	tr.Track(record("/x"))
	require.NoError(t, tr.Close(context.Background()))

	assert.Equal(t, []string{"/x"}, healthy.paths())
	assert.Equal(t, 1, logs.FilterMessage("request tracker sink failed").Len())
}

func TestTracker_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	tr := New(zap.NewNop(), 1, sink)
	tr.Start()

	// The worker may pick the first record up and block on it, so the queue
	// holds at most one more. Everything after that is dropped.
	queued := 0
	for i := 0; i < 10; i++ {
		if tr.Track(record("/r")) {
			queued++
		}
	}
	assert.LessOrEqual(t, queued, 2)
	assert.Equal(t, uint64(10-queued), tr.Dropped())

	close(sink.block)
	require.NoError(t, tr.Close(context.Background()))
	assert.Len(t, sink.paths(), queued)
}

func TestTracker_TrackAfterClose(t *testing.T) {
	tr := New(zap.NewNop(), 1)
	require.NoError(t, tr.Close(context.Background()))
	assert.False(t, tr.Track(record("/late")))
}

func TestTracker_TrackDuringClose(t *testing.T) {
	sink := &recordingSink{}
	tr := New(zap.NewNop(), 16, sink)
	tr.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tr.Track(record("/busy"))
			}
		}()
	}
	require.NoError(t, tr.Close(context.Background()))
	wg.Wait()

	assert.False(t, tr.Track(record("/late")))
	assert.NotContains(t, sink.paths(), "/late")
}

func TestTracker_CloseHonoursContext(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	tr := New(zap.NewNop(), 4, sink)
	tr.Start()
	tr.Track(record("/slow"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tr.Close(ctx), context.DeadlineExceeded)
	close(sink.block)
}

func TestStoreSink(t *testing.T) {
	store := memory.NewStore()
	sink := NewStoreSink(store.Requests())

	require.NoError(t, sink.Record(context.Background(), record("/api")))
	recorded := store.Recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, "/api", recorded[0].Path)
}

func TestMetricsSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewMetricsSink(reg).(*metricsSink)

	require.NoError(t, sink.Record(context.Background(), record("/api/machines/get")))
	require.NoError(t, sink.Record(context.Background(), record("/api/machines/get")))
	unmatched := record("/nope")
	unmatched.Route = ""
	unmatched.Status = 404
	require.NoError(t, sink.Record(context.Background(), unmatched))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.requests.WithLabelValues("GET", "/api/machines/get", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sink := NewLogSink(zap.New(core))

	require.NoError(t, sink.Record(context.Background(), record("/api")))
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api", entries[0].ContextMap()["path"])
}
