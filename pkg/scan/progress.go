package scan

import (
	"fmt"
	"sync/atomic"
	"time"
)

// etaCalculating is reported while there is not enough throughput data for a
// meaningful estimate.
const etaCalculating = "Calculating..."

// minElapsed guards the throughput division. The very first file can land
// within the same clock tick as the start timestamp.
const minElapsed = time.Millisecond

// progressTracker accumulates per-run counters. The worker goroutine mutates
// them while a caller thread reads them for display, so everything is atomic;
// no single-threaded assumption anywhere.
//
// A run tracks work in exactly one unit: bytes when totalBytes is set (Full
// scans, where pre-walking the tree would stall the start) or files when
// totalFiles is set (directory-scoped scans, enumerated upfront).
type progressTracker struct {
	startedAt time.Time

	totalBytes   atomic.Int64
	totalFiles   atomic.Int64
	scannedBytes atomic.Int64
	scannedFiles atomic.Int64
	threats      atomic.Int64

	// lastPercent makes reported progress monotonically non-decreasing even
	// when the byte estimate was low and the raw ratio dips or jitters.
	lastPercent atomic.Int64
	finished    atomic.Bool
}

func newProgressTracker(start time.Time) *progressTracker {
	return &progressTracker{startedAt: start}
}

func (t *progressTracker) setTotalBytes(n int64) { t.totalBytes.Store(n) }
func (t *progressTracker) setTotalFiles(n int64) { t.totalFiles.Store(n) }

// advance records one processed file of the given size.
func (t *progressTracker) advance(size int64) {
	t.scannedFiles.Add(1)
	if size > 0 {
		t.scannedBytes.Add(size)
	}
}

func (t *progressTracker) threatFound() { t.threats.Add(1) }

func (t *progressTracker) counts() (files, threats int) {
	return int(t.scannedFiles.Load()), int(t.threats.Load())
}

// markFinished switches percent reporting from the 99 cap to a flat 100.
func (t *progressTracker) markFinished() { t.finished.Store(true) }

// percentAndETA computes the current progress percentage and an ETA string
// from elapsed time and throughput. Percent is capped at 99 until
// markFinished, so a run never shows a premature 100 while finalization is
// still pending.
func (t *progressTracker) percentAndETA(now time.Time) (int, string) {
	if t.finished.Load() {
		return 100, "0:00:00"
	}

	elapsed := now.Sub(t.startedAt)
	if elapsed < minElapsed {
		elapsed = minElapsed
	}

	var done, total int64
	if tb := t.totalBytes.Load(); tb > 0 {
		done, total = t.scannedBytes.Load(), tb
	} else if tf := t.totalFiles.Load(); tf > 0 {
		done, total = t.scannedFiles.Load(), tf
	} else {
		return t.clampMonotonic(0), etaCalculating
	}

	percent := int(done * 100 / total)
	if percent > 99 {
		percent = 99
	}

	eta := etaCalculating
	if done > 0 {
		rate := float64(done) / elapsed.Seconds()
		if rate > 0 {
			remaining := total - done
			if remaining < 0 {
				remaining = 0
			}
			eta = formatETA(time.Duration(float64(remaining)/rate) * time.Second)
		}
	}

	return t.clampMonotonic(percent), eta
}

// clampMonotonic never lets a reported percentage go backwards within a run.
func (t *progressTracker) clampMonotonic(percent int) int {
	for {
		last := t.lastPercent.Load()
		if int64(percent) <= last {
			return int(last)
		}
		if t.lastPercent.CompareAndSwap(last, int64(percent)) {
			return percent
		}
	}
}

// formatETA renders a duration as H:MM:SS.
func formatETA(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
