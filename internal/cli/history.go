// -- internal/cli/history.go --
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/storage/pebbledb"
)

// RunHistory prints past scan runs, most recent first, or wipes them with
// clear=true.
func RunHistory(dbPath string, clear bool) error {
	store, err := pebbledb.Open(dbPath, pebbledb.DefaultOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	if clear {
		if err := store.ClearHistory(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "scan history cleared")
		return nil
	}

	runs, err := store.History()
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []models.ScanRun{}
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(runs)
}
