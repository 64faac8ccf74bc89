package scan

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/git-atharvb/nexashield-app/pkg/models"
)

// ErrScanInProgress rejects a Start while a run is active. This is normal
// control flow, not an exceptional condition: there is no queueing, the
// caller simply tries again after the finished event.
var ErrScanInProgress = errors.New("scan already in progress")

// FileClassifier is the pluggable detector the controller drives.
type FileClassifier interface {
	Classify(path string) (*models.ThreatFinding, error)
}

// Controller orchestrates one scan run at a time over a filesystem tree:
// work estimation, iteration, pause/resume/stop, progress and ETA tracking,
// and event emission. State machine:
//
//	Idle -> Running -> {Paused <-> Running} -> Idle
//
// The terminal outcome (Completed or Stopped) is recorded separately; the
// controller is ready for the next Start as soon as the worker has exited.
type Controller struct {
	detector FileClassifier

	mu sync.Mutex
	// running means the worker goroutine is alive, not merely that work is
	// wanted: it stays set through a stop wind-down until the worker has
	// fully exited, so a Start in that window is rejected instead of racing
	// the dying worker. stopReq is the cancellation request for the current
	// run and is reset by the next Start.
	cond    *sync.Cond
	running bool
	stopReq bool
	paused  bool
	outcome models.ScanOutcome
	lastErr error

	// tracker is replaced per run. Reads from caller threads go through
	// its atomics.
	tracker *progressTracker
	done    chan struct{}
}

// NewController builds an idle controller over the given detector.
func NewController(detector FileClassifier) *Controller {
	c := &Controller{
		detector: detector,
		done:     make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	close(c.done) // no run yet; Wait must not block
	return c
}

// Start launches a scan over the given roots on a dedicated worker
// goroutine. The "already running" check and the transition to Running are
// one atomic step, so concurrent initiators (manual start, scheduler tick)
// serialize here and the loser gets ErrScanInProgress without disturbing the
// in-flight run.
func (c *Controller) Start(scanType models.ScanType, roots []string, sink EventSink) error {
	if !scanType.Valid() {
		return errors.New("invalid scan type")
	}
	if sink == nil {
		sink = EventFuncs{}
	}

	c.mu.Lock()
	if c.running {
		// Still set during a stop wind-down: the previous worker may be
		// mid-file, and handing it a fresh run's state would let it scan on
		// or clobber the new run's result.
		c.mu.Unlock()
		return ErrScanInProgress
	}
	c.running = true
	c.stopReq = false
	c.paused = false
	c.outcome = models.OutcomeNone
	c.lastErr = nil
	c.tracker = newProgressTracker(time.Now())
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.run(scanType, roots, sink)
	return nil
}

// Pause flags the run; the worker blocks before its next file. Idempotent
// and harmless when nothing is running.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.running && !c.stopReq {
		c.paused = true
	}
	c.mu.Unlock()
}

// Resume clears the pause flag and wakes the waiting worker.
func (c *Controller) Resume() {
	c.mu.Lock()
	c.paused = false
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Stop requests cooperative cancellation. The file currently being hashed is
// allowed to finish; no further file begins. A paused worker is woken so it
// can observe the stop and exit instead of hanging forever. The controller
// reports Running until the worker has actually exited; callers await Done
// (or the finished event) for the transition to Idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.running {
		c.stopReq = true
		if c.paused {
			c.paused = false
			c.cond.Broadcast()
		}
	}
	c.mu.Unlock()
}

// State reports the controller's current position in the state machine.
func (c *Controller) State() models.ScanState {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.running && c.paused:
		return models.StatePaused
	case c.running:
		return models.StateRunning
	default:
		return models.StateIdle
	}
}

// LastOutcome reports how the most recent run ended.
func (c *Controller) LastOutcome() models.ScanOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Err returns the fatal error of the last run, if any. Per-file I/O errors
// never land here; only environment failures like the signature store going
// away mid-scan.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Done returns a channel closed when the current run's worker has fully
// exited. Scan threads do not die instantly on Stop; callers await this (or
// the finished event) before treating the controller as idle.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

//-- Worker --

func (c *Controller) run(scanType models.ScanType, roots []string, sink EventSink) {
	c.mu.Lock()
	tracker := c.tracker
	done := c.done
	c.mu.Unlock()

	stopped := false
	if scanType == models.ScanFull {
		stopped = !c.runByBytes(roots, tracker, sink)
	} else {
		stopped = !c.runByFiles(roots, tracker, sink)
	}

	files, threats := tracker.counts()
	tracker.markFinished()
	sink.Finished(files, threats)

	c.mu.Lock()
	c.running = false
	c.stopReq = false
	c.paused = false
	if stopped {
		c.outcome = models.OutcomeStopped
	} else {
		c.outcome = models.OutcomeCompleted
	}
	c.mu.Unlock()
	close(done)
}

// runByBytes is the Full-scan strategy: estimate total work from used disk
// space, then stream the walk without a pre-enumeration pass. Returns false
// if the run was stopped early.
func (c *Controller) runByBytes(roots []string, tracker *progressTracker, sink EventSink) bool {
	sink.Progress(models.Progress{Percent: 0, CurrentPath: "Calculating drive usage...", ETA: etaCalculating})

	var total int64
	for _, root := range roots {
		used, err := usedBytes(root)
		if err != nil {
			// Inaccessible volume. The estimate loses this root but the
			// scan still visits whatever the walk can reach.
			continue
		}
		total += used
	}
	tracker.setTotalBytes(total)

	for _, root := range roots {
		if c.stopRequested() {
			return false
		}
		info, err := os.Stat(root)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			if !c.processFile(root, tracker, sink) {
				return false
			}
			continue
		}
		aborted := false
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !c.processFile(path, tracker, sink) {
				aborted = true
				return filepath.SkipAll
			}
			return nil
		})
		if aborted {
			return false
		}
	}
	return true
}

// runByFiles is the strategy for Quick, Custom and File scans: enumerate the
// complete target list first for an exact denominator, then iterate it.
// Directory-scoped targets are cheap to enumerate, and file-count progress
// is the more intuitive unit at that scale.
func (c *Controller) runByFiles(roots []string, tracker *progressTracker, sink EventSink) bool {
	files := enumerateFiles(context.Background(), roots)
	tracker.setTotalFiles(int64(len(files)))

	for _, path := range files {
		if !c.processFile(path, tracker, sink) {
			return false
		}
	}
	return true
}

// processFile is the pausable unit of work. Returns false once a stop has
// been observed; the caller abandons the rest of the walk immediately.
func (c *Controller) processFile(path string, tracker *progressTracker, sink EventSink) bool {
	// Pause gate. A condition wait, not a spin: a paused scan consumes no
	// CPU. Stop wakes this too, and the loop re-check sees the stop request.
	c.mu.Lock()
	for c.paused && !c.stopReq {
		c.cond.Wait()
	}
	stopReq := c.stopReq
	c.mu.Unlock()
	if stopReq {
		return false
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	tracker.advance(size)

	percent, eta := tracker.percentAndETA(time.Now())
	sink.Progress(models.Progress{Percent: percent, CurrentPath: path, ETA: eta})

	finding, err := c.detector.Classify(path)
	if err != nil {
		// The store is gone. No point hashing thousands more files against
		// a dead backend; surface and wind down.
		c.mu.Lock()
		c.lastErr = err
		c.stopReq = true
		c.mu.Unlock()
		return false
	}
	if finding != nil {
		tracker.threatFound()
		sink.ThreatFound(*finding)
	}
	return true
}

func (c *Controller) stopRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopReq
}
