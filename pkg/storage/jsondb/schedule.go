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

// ScheduleFile persists the daily-scan trigger config as a small JSON file.
// Reads happen every scheduler tick, so a missing file must be cheap and
// silent: it decodes to the zero config with the trigger disabled.
type ScheduleFile struct {
	path string
	mu   sync.Mutex
}

func NewScheduleFile(path string) *ScheduleFile {
	return &ScheduleFile{path: filepath.Clean(path)}
}

func (f *ScheduleFile) Path() string { return f.path }

// Load reads the current config. Missing file means disabled defaults.
func (f *ScheduleFile) Load() (models.ScheduleConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadLocked()
}

func (f *ScheduleFile) loadLocked() (models.ScheduleConfig, error) {
	cfg := models.ScheduleConfig{Type: models.ScanQuick, Time: "12:00"}

	file, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to open schedule config: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(io.LimitReader(file, models.MaxLogFileBytes))
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse schedule config: %w", err)
	}
	return cfg, nil
}

// Save persists a user edit. The last_run field belongs to the scheduler,
// not the user, so the stored value is preserved across saves.
func (f *ScheduleFile) Save(cfg models.ScheduleConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if old, err := f.loadLocked(); err == nil {
		cfg.LastRun = old.LastRun
	}
	return writeJSONAtomic(f.path, cfg)
}

// SetLastRun marks the calendar day the scheduler last fired. Only the
// scheduler calls this, which is what enforces at most one triggered scan
// per day.
func (f *ScheduleFile) SetLastRun(date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cfg, err := f.loadLocked()
	if err != nil {
		return err
	}
	cfg.LastRun = date
	return writeJSONAtomic(f.path, cfg)
}
