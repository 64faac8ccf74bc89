// -- internal/cli/quarantine.go --
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/quarantine"
)

// RunQuarantineList prints the quarantine log with per-entry status.
func RunQuarantineList(dir, logPath string) error {
	mgr := quarantine.NewManager(dir, logPath)
	entries, err := mgr.Entries()
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []quarantine.EntryStatus{}
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// RunQuarantineApply isolates the given paths.
func RunQuarantineApply(dir, logPath string, paths []string) error {
	mgr := quarantine.NewManager(dir, logPath)
	res, err := mgr.Quarantine(paths)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(res); err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d of %d file(s) could not be quarantined", len(res.Failed), len(paths))
	}
	return nil
}

// RunQuarantineRestore puts quarantined files back at their original paths.
// Selectors are original paths; with none given, everything is restored.
func RunQuarantineRestore(dir, logPath string, originals []string) error {
	return applyToSelected(dir, logPath, originals, func(mgr *quarantine.Manager, entries []models.QuarantineEntry) ([]quarantine.Failure, error) {
		return mgr.Restore(entries)
	})
}

// RunQuarantinePurge permanently deletes quarantined files. Selectors are
// original paths; with none given, everything is purged.
func RunQuarantinePurge(dir, logPath string, originals []string) error {
	return applyToSelected(dir, logPath, originals, func(mgr *quarantine.Manager, entries []models.QuarantineEntry) ([]quarantine.Failure, error) {
		return mgr.DeletePermanently(entries)
	})
}

func applyToSelected(dir, logPath string, originals []string, op func(*quarantine.Manager, []models.QuarantineEntry) ([]quarantine.Failure, error)) error {
	mgr := quarantine.NewManager(dir, logPath)
	all, err := mgr.Entries()
	if err != nil {
		return err
	}

	wanted := make(map[string]bool, len(originals))
	for _, p := range originals {
		wanted[p] = true
	}

	var selected []models.QuarantineEntry
	for _, e := range all {
		if len(originals) == 0 || wanted[e.OriginalPath] {
			selected = append(selected, e.QuarantineEntry)
		}
	}
	if len(selected) == 0 {
		fmt.Fprintln(os.Stderr, "no matching quarantine entries")
		return nil
	}

	failures, err := op(mgr, selected)
	if err != nil {
		return err
	}

	output := struct {
		Processed int                  `json:"processed"`
		Failures  []quarantine.Failure `json:"failures"`
	}{
		Processed: len(selected) - len(failures),
		Failures:  failures,
	}
	if output.Failures == nil {
		output.Failures = []quarantine.Failure{}
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return err
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d entr(ies) had errors", len(failures))
	}
	return nil
}
