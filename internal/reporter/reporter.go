package reporter

import (
	"context"
	"fmt"
	"io"
	"time"

	"tomoru/internal/logger"
	"tomoru/internal/stats"

	"go.uber.org/zap"
)

// Sink receives every report after it has been written to the output
type Sink interface {
	Emit(ctx context.Context, entries []stats.IPCount, report string) error
}

// Snapshotter is the read side of the request counter
type Snapshotter interface {
	Snapshot() ([]stats.IPCount, error)
}

// Reporter periodically writes a ranked report of the request counts
type Reporter struct {
	counter  Snapshotter
	out      io.Writer
	interval time.Duration
	sinks    []Sink

	// OnReport is called after every completed cycle
	OnReport func()
}

func New(counter Snapshotter, out io.Writer, interval time.Duration, sinks ...Sink) *Reporter {
	return &Reporter{
		counter:  counter,
		out:      out,
		interval: interval,
		sinks:    sinks,
	}
}

// Run reports once per interval until ctx is cancelled, in which case it
// returns nil. A counter that can no longer be read stops the loop and the
// error is returned to the caller.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Report(ctx); err != nil {
				return err
			}
		}
	}
}

// Report performs one snapshot, format and emit cycle
func (r *Reporter) Report(ctx context.Context) error {
	entries, err := r.counter.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to read request counts: %w", err)
	}

	report := stats.FormatReport(entries)
	// blank line separates consecutive reports
	if _, err := io.WriteString(r.out, report+"\n"); err != nil {
		logger.L().Warn("failed to write report", zap.Error(err))
	}

	for _, sink := range r.sinks {
		if err := sink.Emit(ctx, entries, report); err != nil {
			logger.L().Warn("failed to emit report", zap.Error(err))
		}
	}

	if r.OnReport != nil {
		r.OnReport()
	}
	return nil
}
