// -- internal/cli/daemon.go --
package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/git-atharvb/nexashield-app/internal/config"
	"github.com/git-atharvb/nexashield-app/pkg/detection"
	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/quarantine"
	"github.com/git-atharvb/nexashield-app/pkg/scan"
	"github.com/git-atharvb/nexashield-app/pkg/schedule"
	"github.com/git-atharvb/nexashield-app/pkg/storage/jsondb"
	"github.com/git-atharvb/nexashield-app/pkg/storage/pebbledb"
	"github.com/git-atharvb/nexashield-app/pkg/watch"
)

// RunDaemon runs the background protection loop: the scheduler fires the
// configured daily scan and, when the platform supports it, the watcher
// scans files as they land in the watch root. Blocks until SIGINT/SIGTERM.
func RunDaemon(cfg *config.Config, log *slog.Logger) error {
	store, err := pebbledb.Open(cfg.DBPath, pebbledb.DefaultOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	detector := detection.NewDetector(store, cfg.HashChunkSize)
	controller := scan.NewController(detector)
	mgr := quarantine.NewManager(cfg.QuarantineDir, cfg.QuarantineLogPath)

	starter := schedule.StarterFunc(func(scanType models.ScanType) error {
		roots, err := ScanRoots(scanType, "")
		if err != nil {
			return err
		}
		startedAt := time.Now()
		sink := &scan.EventFuncs{
			OnThreat: func(f models.ThreatFinding) {
				log.Warn("threat detected", "name", f.ThreatName, "severity", f.Severity, "path", f.Path)
			},
			OnFinished: func(files, threats int) {
				if err := store.AppendHistory(models.ScanRun{
					ScanType:     scanType,
					FilesScanned: files,
					ThreatsFound: threats,
					StartedAt:    startedAt,
					FinishedAt:   time.Now(),
				}); err != nil {
					log.Error("failed to record scan history", "error", err)
				}
				log.Info("scheduled scan finished", "type", scanType, "files", files, "threats", threats)
			},
		}
		return controller.Start(scanType, roots, sink)
	})

	scheduler := schedule.NewScheduler(jsondb.NewScheduleFile(cfg.ScheduleFilePath), starter, cfg.SchedulerInterval, log)
	go scheduler.Run()
	defer scheduler.Stop()
	log.Info("scheduler running", "schedule_file", cfg.ScheduleFilePath)

	if err := watch.Probe(); err != nil {
		log.Warn("real-time watch disabled", "error", err)
	} else {
		watcher := watch.NewWatcher(cfg.WatchRoot, func(path string) {
			onWatchedFile(path, detector, mgr, log)
		}, log)
		if err := watcher.Start(); err != nil {
			log.Warn("real-time watch disabled", "root", cfg.WatchRoot, "error", err)
		} else {
			defer watcher.Stop()
			log.Info("watching", "root", cfg.WatchRoot)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", "signal", sig.String())

	controller.Stop()
	<-controller.Done()
	return nil
}

// onWatchedFile classifies a freshly written file and quarantines it on a
// hit. Errors are logged, never fatal: the daemon outlives a flaky file.
func onWatchedFile(path string, detector *detection.Detector, mgr *quarantine.Manager, log *slog.Logger) {
	finding, err := detector.Classify(path)
	if err != nil {
		log.Error("classification failed", "path", path, "error", err)
		return
	}
	if finding == nil {
		return
	}
	log.Warn("threat detected", "name", finding.ThreatName, "severity", finding.Severity, "path", path)
	res, err := mgr.Quarantine([]string{path})
	if err != nil {
		log.Error("quarantine failed", "path", path, "error", err)
		return
	}
	if len(res.Succeeded) > 0 {
		log.Info("file quarantined", "path", path, "cell", res.Succeeded[0].QuarantinePath)
	}
	for _, f := range res.Failed {
		log.Error("quarantine failed", "path", f.Path, "reason", f.Reason)
	}
}
