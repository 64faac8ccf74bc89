package jsondb

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/git-atharvb/nexashield-app/pkg/models"
)

// QuarantineLog is the JSON file backing the quarantine record. The file is
// the single source of truth for what is quarantined; every mutation is a
// full read-modify-write, never a partial update.
//
// A mutex guards the whole cycle. The UI only ever drove one writer at a
// time, but nothing stops a future concurrent caller and the lock is cheap.
type QuarantineLog struct {
	path string
	mu   sync.Mutex
}

// NewQuarantineLog wraps the log file at path. The file does not need to
// exist yet; a missing log reads as empty.
func NewQuarantineLog(path string) *QuarantineLog {
	return &QuarantineLog{path: filepath.Clean(path)}
}

// Path returns the backing file location.
func (l *QuarantineLog) Path() string { return l.path }

// Load reads the full ordered entry list. A missing file is an empty log,
// not an error.
func (l *QuarantineLog) Load() ([]models.QuarantineEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

func (l *QuarantineLog) loadLocked() ([]models.QuarantineEntry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open quarantine log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat quarantine log: %w", err)
	}
	// Refuse named pipes or devices. Reading from a blocking pipe would hang
	// every quarantine operation behind the mutex.
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("quarantine log %s is not a regular file", l.path)
	}

	// If the file claims to be huge we stop reading at the cap rather than
	// blowing the heap on a corrupt or hostile log.
	var entries []models.QuarantineEntry
	decoder := json.NewDecoder(io.LimitReader(f, models.MaxLogFileBytes))
	if err := decoder.Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse quarantine log: %w", err)
	}
	return entries, nil
}

// Replace atomically rewrites the whole log with the given entries.
func (l *QuarantineLog) Replace(entries []models.QuarantineEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.replaceLocked(entries)
}

// Update applies fn to the current entries under the lock and persists the
// result. This is the read-modify-write cycle every mutating quarantine
// operation goes through.
func (l *QuarantineLog) Update(fn func(entries []models.QuarantineEntry) []models.QuarantineEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.loadLocked()
	if err != nil {
		return err
	}
	return l.replaceLocked(fn(entries))
}

func (l *QuarantineLog) replaceLocked(entries []models.QuarantineEntry) error {
	if entries == nil {
		// An empty log still serializes as [], keeping the wire shape stable.
		entries = []models.QuarantineEntry{}
	}
	return writeJSONAtomic(l.path, entries)
}

// writeJSONAtomic writes v to path via a same-directory temp file, fsync and
// rename, so a power failure never leaves a truncated log behind.
func writeJSONAtomic(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	// Temp file in the same directory keeps the rename atomic; moving across
	// partitions is not.
	tmp, err := os.CreateTemp(dir, ".nexashield-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	// Strict permissions before any bytes land; no world-readable window.
	if err := tmp.Chmod(models.FilePermSecure); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ") // Humans read these files too.
	if err := encoder.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync log to disk: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace log file: %w", err)
	}
	return nil
}
