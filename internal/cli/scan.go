// -- internal/cli/scan.go --
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/git-atharvb/nexashield-app/pkg/detection"
	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/quarantine"
	"github.com/git-atharvb/nexashield-app/pkg/scan"
	"github.com/git-atharvb/nexashield-app/pkg/storage/pebbledb"
)

// ScanOptions carries the flags for a scan invocation.
type ScanOptions struct {
	DBPath        string
	Target        string
	ShowProgress  bool
	AutoIsolate   bool
	QuarantineDir string
	QuarantineLog string
}

// RunScan executes one scan to completion and prints the result document to
// stdout. Progress goes to stderr so stdout stays parseable. SIGINT requests
// a graceful stop; the partial result is still printed and recorded.
func RunScan(scanType models.ScanType, opts ScanOptions) error {
	store, err := pebbledb.Open(opts.DBPath, pebbledb.DefaultOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	roots, err := ScanRoots(scanType, opts.Target)
	if err != nil {
		return err
	}

	detector := detection.NewDetector(store, models.DefaultHashChunkSize)
	controller := scan.NewController(detector)

	var findings []models.ThreatFinding
	var summary models.ScanSummary
	var filesScanned, threatsFound int

	sink := &scan.EventFuncs{
		OnProgress: func(p models.Progress) {
			if opts.ShowProgress {
				fmt.Fprintf(os.Stderr, "\r[%3d%%] ETA %s  %s", p.Percent, p.ETA, truncatePath(p.CurrentPath, 60))
			}
		},
		OnThreat: func(f models.ThreatFinding) {
			findings = append(findings, f)
			summary.Tally(f)
			if opts.ShowProgress {
				fmt.Fprintf(os.Stderr, "\nthreat: %s (%s, %s) at %s\n", f.ThreatName, f.Category, f.Severity, f.Path)
			}
		},
		OnFinished: func(files, threats int) {
			filesScanned, threatsFound = files, threats
		},
	}

	startedAt := time.Now()
	if err := controller.Start(scanType, roots, sink); err != nil {
		return err
	}
	done := controller.Done()

	// Ctrl-C stops the scan cooperatively instead of killing the process;
	// the history entry and partial results survive.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-done:
	case <-sigCh:
		controller.Stop()
		<-done
	}
	finishedAt := time.Now()
	if opts.ShowProgress {
		fmt.Fprintln(os.Stderr)
	}

	output := models.ScanOutput{
		Target:       strings.Join(roots, ", "),
		ScanType:     scanType,
		Outcome:      controller.LastOutcome(),
		FilesScanned: filesScanned,
		ThreatsFound: threatsFound,
		DurationSecs: finishedAt.Sub(startedAt).Seconds(),
		Findings:     findings,
		Summary:      summary,
	}
	if err := controller.Err(); err != nil {
		output.Error = err.Error()
	}

	if opts.AutoIsolate && len(findings) > 0 {
		isolateFindings(findings, opts)
	}

	if err := store.AppendHistory(models.ScanRun{
		ScanType:     scanType,
		FilesScanned: filesScanned,
		ThreatsFound: threatsFound,
		StartedAt:    startedAt,
		FinishedAt:   finishedAt,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record scan history: %v\n", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return err
	}
	return controller.Err()
}

// isolateFindings quarantines every on-disk finding. Manual hash checks have
// no real path and are skipped.
func isolateFindings(findings []models.ThreatFinding, opts ScanOptions) {
	mgr := quarantine.NewManager(opts.QuarantineDir, opts.QuarantineLog)
	var paths []string
	for _, f := range findings {
		if f.Method == models.MethodManual {
			continue
		}
		paths = append(paths, f.Path)
	}
	if len(paths) == 0 {
		return
	}
	res, err := mgr.Quarantine(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: quarantine failed: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "quarantined %d file(s), %d failure(s)\n", len(res.Succeeded), len(res.Failed))
	for _, f := range res.Failed {
		fmt.Fprintf(os.Stderr, "  failed: %s (%s)\n", f.Path, f.Reason)
	}
}

func truncatePath(path string, max int) string {
	if len(path) <= max {
		return path
	}
	return "..." + path[len(path)-max+3:]
}
