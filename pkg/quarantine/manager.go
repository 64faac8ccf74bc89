package quarantine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/storage/jsondb"
)

// quarantineSuffix marks isolated files so nothing mistakes them for their
// original type.
const quarantineSuffix = ".quarantined"

// nameTimestampLayout prefixes quarantined filenames for collision
// resistance: two copies of "invoice.exe" caught a second apart get distinct
// cell names.
const nameTimestampLayout = "20060102150405"

// Failure reports one path that could not be processed in a batch.
type Failure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the outcome of a quarantine batch. Partial success is the
// expected case, never an error: some files vanish between detection and
// quarantine, and the rest must still be isolated.
type Result struct {
	Succeeded []models.QuarantineEntry `json:"succeeded"`
	Failed    []Failure                `json:"failed"`
}

// EntryStatus pairs a log entry with whether its isolated file still exists.
type EntryStatus struct {
	models.QuarantineEntry
	Status string `json:"status"`
}

// Manager isolates flagged files into a dedicated directory and keeps the
// JSON log as the single source of truth for what is quarantined. The log
// and the filesystem are kept consistent: a restore or delete that cannot
// find the physical file still removes the log entry rather than leaving an
// orphaned record.
type Manager struct {
	dir string
	log *jsondb.QuarantineLog
	now func() time.Time
}

// NewManager wraps the quarantine directory and log file. Neither needs to
// exist yet.
func NewManager(dir, logPath string) *Manager {
	return &Manager{
		dir: filepath.Clean(dir),
		log: jsondb.NewQuarantineLog(logPath),
		now: time.Now,
	}
}

// Entries lists the log with a per-entry Secured/Missing status.
func (m *Manager) Entries() ([]EntryStatus, error) {
	entries, err := m.log.Load()
	if err != nil {
		return nil, err
	}
	out := make([]EntryStatus, 0, len(entries))
	for _, e := range entries {
		status := models.QuarantineSecured
		if _, err := os.Stat(e.QuarantinePath); err != nil {
			status = models.QuarantineMissing
		}
		out = append(out, EntryStatus{QuarantineEntry: e, Status: status})
	}
	return out, nil
}

// Quarantine moves each path into the quarantine directory and appends a log
// entry per success. A failed move (permissions, file already gone) is
// recorded and leaves the log untouched for that item; the remaining paths
// are still processed.
func (m *Manager) Quarantine(paths []string) (Result, error) {
	var res Result

	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return res, fmt.Errorf("failed to create quarantine directory: %w", err)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			res.Failed = append(res.Failed, Failure{Path: path, Reason: err.Error()})
			continue
		}

		dest := m.nextCellPath(filepath.Base(path))

		if err := moveFile(path, dest); err != nil {
			res.Failed = append(res.Failed, Failure{Path: path, Reason: err.Error()})
			continue
		}

		res.Succeeded = append(res.Succeeded, models.QuarantineEntry{
			OriginalPath:   path,
			QuarantinePath: dest,
			Timestamp:      m.now().Format(models.TimestampLayout),
		})
	}

	if len(res.Succeeded) > 0 {
		err := m.log.Update(func(entries []models.QuarantineEntry) []models.QuarantineEntry {
			return append(entries, res.Succeeded...)
		})
		if err != nil {
			return res, fmt.Errorf("quarantine moves applied but log update failed: %w", err)
		}
	}
	return res, nil
}

// Restore moves each entry's file back to its original path, creating parent
// directories as needed. The log entry is removed regardless of whether the
// physical move succeeded; a missing cell file must not leave a zombie
// record. Individual failures are reported.
func (m *Manager) Restore(entries []models.QuarantineEntry) ([]Failure, error) {
	var failures []Failure
	removed := make(map[string]bool, len(entries))

	for _, e := range entries {
		removed[e.QuarantinePath] = true

		if _, err := os.Stat(e.QuarantinePath); err != nil {
			failures = append(failures, Failure{Path: e.OriginalPath, Reason: "quarantined file missing"})
			continue
		}
		if err := os.MkdirAll(filepath.Dir(e.OriginalPath), 0755); err != nil {
			failures = append(failures, Failure{Path: e.OriginalPath, Reason: err.Error()})
			continue
		}
		if err := moveFile(e.QuarantinePath, e.OriginalPath); err != nil {
			failures = append(failures, Failure{Path: e.OriginalPath, Reason: err.Error()})
		}
	}

	if err := m.removeFromLog(removed); err != nil {
		return failures, err
	}
	return failures, nil
}

// DeletePermanently erases each entry's physical file (absence is fine) and
// removes the log entry unconditionally.
func (m *Manager) DeletePermanently(entries []models.QuarantineEntry) ([]Failure, error) {
	var failures []Failure
	removed := make(map[string]bool, len(entries))

	for _, e := range entries {
		removed[e.QuarantinePath] = true

		if err := os.Remove(e.QuarantinePath); err != nil && !os.IsNotExist(err) {
			failures = append(failures, Failure{Path: e.QuarantinePath, Reason: err.Error()})
		}
	}

	if err := m.removeFromLog(removed); err != nil {
		return failures, err
	}
	return failures, nil
}

// nextCellPath picks an unoccupied cell name. The timestamp prefix covers
// the common case; two same-named threats caught within the same second get
// a numbered variant, so os.Rename in moveFile can never land on top of an
// existing cell and leave two log entries sharing one quarantine_path.
func (m *Manager) nextCellPath(base string) string {
	stamp := m.now().Format(nameTimestampLayout)
	dest := filepath.Join(m.dir, fmt.Sprintf("%s_%s%s", stamp, base, quarantineSuffix))
	for i := 1; ; i++ {
		if _, err := os.Lstat(dest); os.IsNotExist(err) {
			return dest
		}
		dest = filepath.Join(m.dir, fmt.Sprintf("%s_%s.%d%s", stamp, base, i, quarantineSuffix))
	}
}

func (m *Manager) removeFromLog(quarantinePaths map[string]bool) error {
	if len(quarantinePaths) == 0 {
		return nil
	}
	return m.log.Update(func(entries []models.QuarantineEntry) []models.QuarantineEntry {
		kept := entries[:0]
		for _, e := range entries {
			if !quarantinePaths[e.QuarantinePath] {
				kept = append(kept, e)
			}
		}
		return kept
	})
}

// moveFile renames when possible and falls back to copy-and-delete when the
// quarantine directory sits on a different filesystem than the threat.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, models.FilePermSecure)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	in.Close()
	return os.Remove(src)
}
