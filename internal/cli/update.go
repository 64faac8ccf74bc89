// -- internal/cli/update.go --
package cli

import (
	"encoding/json"
	"os"

	"github.com/git-atharvb/nexashield-app/pkg/storage/pebbledb"
)

// RunUpdate merges the bundled definition set into the signature database
// and reports how many signatures were new. Existing signatures are never
// overwritten.
func RunUpdate(dbPath string) error {
	store, err := pebbledb.Open(dbPath, pebbledb.DefaultOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	added, err := store.UpdateDefinitions(nil)
	if err != nil {
		return err
	}
	total, err := store.SignatureCount()
	if err != nil {
		return err
	}

	fsys := RealFileSystem{}
	fileSize, _ := GetPathSize(fsys, dbPath)

	output := struct {
		Database        string `json:"database"`
		SignaturesAdded int    `json:"signatures_added"`
		SignatureCount  int    `json:"signature_count"`
		FileSizeBytes   int64  `json:"file_size_bytes"`
		FileSizeHuman   string `json:"file_size_human"`
	}{
		Database:        dbPath,
		SignaturesAdded: added,
		SignatureCount:  total,
		FileSizeBytes:   fileSize,
		FileSizeHuman:   HumanizeBytes(fileSize),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
