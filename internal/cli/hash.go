// -- internal/cli/hash.go --
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/git-atharvb/nexashield-app/pkg/detection"
	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/storage/pebbledb"
)

var hexDigestRe = regexp.MustCompile(`^[0-9a-fA-F]{32,64}$`)

// RunHash checks a single hash against the signature database. The argument
// is either a bare hex digest or a file path, in which case the file is
// hashed first. Output is one JSON object either way.
func RunHash(arg, dbPath string) error {
	digest := arg
	hashedFrom := ""
	if !hexDigestRe.MatchString(arg) {
		if _, err := os.Stat(arg); err != nil {
			return fmt.Errorf("argument is neither a hex digest nor a readable file: %s", arg)
		}
		d, err := detection.HashFile(arg)
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", arg, err)
		}
		digest = d
		hashedFrom = arg
	}

	store, err := pebbledb.Open(dbPath, pebbledb.DefaultOptions())
	if err != nil {
		return err
	}
	defer store.Close()

	detector := detection.NewDetector(store, models.DefaultHashChunkSize)
	finding, err := detector.CheckHash(digest)
	if err != nil {
		return err
	}

	output := struct {
		Hash    string                `json:"hash"`
		File    string                `json:"file,omitempty"`
		Match   bool                  `json:"match"`
		Finding *models.ThreatFinding `json:"finding,omitempty"`
	}{
		Hash:    digest,
		File:    hashedFrom,
		Match:   finding != nil,
		Finding: finding,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
