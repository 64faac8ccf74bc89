package schedule

import (
	"errors"
	"log/slog"
	"time"

	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/scan"
	"github.com/git-atharvb/nexashield-app/pkg/storage/jsondb"
)

// ScanStarter kicks off a scan of the given type. It reports
// scan.ErrScanInProgress when a scan is already running, in which case the
// scheduler leaves last_run untouched so the slot is not considered spent.
type ScanStarter interface {
	StartScheduled(scanType models.ScanType) error
}

// StarterFunc adapts a plain function to ScanStarter.
type StarterFunc func(models.ScanType) error

func (f StarterFunc) StartScheduled(t models.ScanType) error { return f(t) }

// Scheduler polls the schedule file roughly once a minute and fires the
// configured scan when the wall clock reaches the stored HH:mm on a day it
// has not fired yet. Config is re-read on every tick so edits take effect
// without a restart.
type Scheduler struct {
	file     *jsondb.ScheduleFile
	starter  ScanStarter
	interval time.Duration
	now      func() time.Time
	log      *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewScheduler builds a scheduler over the schedule file. A zero interval
// falls back to the one-minute default.
func NewScheduler(file *jsondb.ScheduleFile, starter ScanStarter, interval time.Duration, log *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = models.DefaultSchedulerInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		file:     file,
		starter:  starter,
		interval: interval,
		now:      time.Now,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Run blocks, ticking until Stop is called.
func (s *Scheduler) Run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				s.log.Error("scheduler tick failed", "error", err)
			}
		}
	}
}

// Stop signals Run to exit and waits for it.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// Tick performs one evaluation of the schedule. Exposed so the polling loop
// and tests share the exact same decision path.
func (s *Scheduler) Tick() error {
	cfg, err := s.file.Load()
	if err != nil {
		return err
	}
	if !cfg.Enabled {
		return nil
	}

	now := s.now()
	if now.Format(models.ClockLayout) != cfg.Time {
		return nil
	}

	today := now.Format(models.DateLayout)
	if cfg.LastRun == today {
		return nil
	}

	// A schedule only ever carries Quick or Full; anything else in the file
	// (hand edits, stale data) falls back to Quick rather than failing the
	// tick every minute forever.
	scanType := models.ScanType(cfg.Type)
	if scanType != models.ScanQuick && scanType != models.ScanFull {
		scanType = models.ScanQuick
	}

	if err := s.starter.StartScheduled(scanType); err != nil {
		if errors.Is(err, scan.ErrScanInProgress) {
			s.log.Info("scheduled scan skipped, another scan is running", "type", scanType)
			return nil
		}
		return err
	}

	s.log.Info("scheduled scan started", "type", scanType, "time", cfg.Time)
	return s.file.SetLastRun(today)
}
