package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// snapshotTimeout bounds one snapshot run.
const snapshotTimeout = 30 * time.Second

// Scheduler periodically writes every event to an ICS file so other
// calendar clients can subscribe to a static copy.
type Scheduler struct {
	cron  *cron.Cron
	svc   EventService
	path  string
	clock Clock
}

// NewScheduler validates spec (standard five-field cron syntax) and
// registers the snapshot job. Call Start to begin running it.
func NewScheduler(svc EventService, spec, path string, clock Clock) (*Scheduler, error) {
	s := &Scheduler{
		cron:  cron.New(),
		svc:   svc,
		path:  path,
		clock: clock,
	}

	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			slog.Error("ics snapshot failed", slog.String("path", s.path), slog.Any("error", err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("ics snapshot scheduled", slog.String("path", s.path))
}

// Stop halts the schedule and waits for a running snapshot to finish or
// ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// RunOnce writes a snapshot now. The file is replaced atomically via a
// temp file in the same directory.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	events, err := s.svc.List(ctx)
	if err != nil {
		return err
	}
	body := ExportICS(events, s.clock.Now())

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".calview-snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	slog.Info("ics snapshot written",
		slog.String("path", s.path),
		slog.Int("events", len(events)),
	)
	return nil
}
