package reporter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"tomoru/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type recordingSink struct {
	mu      sync.Mutex
	reports []string
	err     error
}

func (s *recordingSink) Emit(ctx context.Context, entries []stats.IPCount, report string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return s.err
}

type brokenCounter struct{}

func (brokenCounter) Snapshot() ([]stats.IPCount, error) {
	return nil, stats.ErrPoisoned
}

func TestReportWritesFormattedSnapshot(t *testing.T) {
	c := stats.NewRequestCounter()
	require.NoError(t, c.Increment("127.0.0.1"))
	require.NoError(t, c.Increment("127.0.0.1"))
	require.NoError(t, c.Increment("127.0.0.2"))

	var out bytes.Buffer
	sink := &recordingSink{}
	r := New(c, &out, time.Second, sink)

	require.NoError(t, r.Report(context.Background()))

	assert.Equal(t, "IPs:\n  127.0.0.1: 2\n  127.0.0.2: 1\n\n", out.String())
	assert.Equal(t, []string{"IPs:\n  127.0.0.1: 2\n  127.0.0.2: 1\n"}, sink.reports)
}

func TestSinkFailureDoesNotStopReport(t *testing.T) {
	c := stats.NewRequestCounter()
	require.NoError(t, c.Increment("::1"))

	var out bytes.Buffer
	failing := &recordingSink{err: errors.New("redis down")}
	after := &recordingSink{}
	r := New(c, &out, time.Second, failing, after)

	require.NoError(t, r.Report(context.Background()))
	assert.Len(t, after.reports, 1)
	assert.Equal(t, "IPs:\n  ::1: 1\n\n", out.String())
}

func TestRunReportsEveryTick(t *testing.T) {
	c := stats.NewRequestCounter()
	require.NoError(t, c.Increment("127.0.0.1"))

	out := &syncBuffer{}
	r := New(c, out, 10*time.Millisecond)

	cycles := make(chan struct{}, 16)
	r.OnReport = func() {
		select {
		case cycles <- struct{}{}:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	for i := 0; i < 3; i++ {
		select {
		case <-cycles:
		case <-time.After(2 * time.Second):
			t.Fatal("reporter did not tick")
		}
	}
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reporter did not stop after cancel")
	}

	assert.GreaterOrEqual(t, strings.Count(out.String(), "IPs:\n  127.0.0.1: 1\n\n"), 3)
}

func TestRunStopsOnCounterFailure(t *testing.T) {
	var out bytes.Buffer
	r := New(brokenCounter{}, &out, time.Millisecond)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(context.Background()) }()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, stats.ErrPoisoned)
	case <-time.After(2 * time.Second):
		t.Fatal("reporter kept running on a broken counter")
	}
	assert.Empty(t, out.String())
}
