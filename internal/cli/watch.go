// -- internal/cli/watch.go --
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/git-atharvb/nexashield-app/pkg/detection"
	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/storage/pebbledb"
	"github.com/git-atharvb/nexashield-app/pkg/watch"
)

// RunWatch watches a single directory and prints one line per file event.
// With withScan, each file is also checked against the signature database
// and flagged on a hit; by default the command only notifies.
func RunWatch(root, dbPath string, withScan bool, log *slog.Logger) error {
	if err := watch.Probe(); err != nil {
		return err
	}

	var detector *detection.Detector
	if withScan {
		store, err := pebbledb.Open(dbPath, pebbledb.DefaultOptions())
		if err != nil {
			return err
		}
		defer store.Close()
		detector = detection.NewDetector(store, models.DefaultHashChunkSize)
	}

	watcher := watch.NewWatcher(root, func(path string) {
		fmt.Printf("event: %s\n", path)
		if detector == nil {
			return
		}
		finding, err := detector.Classify(path)
		if err != nil {
			log.Error("classification failed", "path", path, "error", err)
			return
		}
		if finding != nil {
			fmt.Printf("threat: %s (%s, %s) at %s\n", finding.ThreatName, finding.Category, finding.Severity, finding.Path)
		}
	}, log)

	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()
	fmt.Fprintf(os.Stderr, "watching %s (Ctrl-C to stop)\n", root)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	return nil
}
