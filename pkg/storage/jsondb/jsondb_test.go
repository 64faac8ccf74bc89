package jsondb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/git-atharvb/nexashield-app/pkg/models"
)

func TestQuarantineLogMissingFileReadsEmpty(t *testing.T) {
	log := NewQuarantineLog(filepath.Join(t.TempDir(), "quarantine_log.json"))
	entries, err := log.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty", entries)
	}
}

func TestQuarantineLogRoundTrip(t *testing.T) {
	log := NewQuarantineLog(filepath.Join(t.TempDir(), "quarantine_log.json"))
	want := []models.QuarantineEntry{
		{OriginalPath: "/home/u/a.exe", QuarantinePath: "/q/20260101120000_a.exe.quarantined", Timestamp: "2026-01-01 12:00:00"},
		{OriginalPath: "/home/u/b.exe", QuarantinePath: "/q/20260101120001_b.exe.quarantined", Timestamp: "2026-01-01 12:00:01"},
	}
	if err := log.Replace(want); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := log.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestQuarantineLogWireFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarantine_log.json")
	log := NewQuarantineLog(path)
	if err := log.Replace([]models.QuarantineEntry{
		{OriginalPath: "/a", QuarantinePath: "/q/a", Timestamp: "2026-01-01 00:00:00"},
	}); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"original_path"`, `"quarantine_path"`, `"timestamp"`} {
		if !strings.Contains(string(raw), field) {
			t.Errorf("serialized log missing field %s:\n%s", field, raw)
		}
	}

	// An empty log still writes [], never null.
	if err := log.Replace(nil); err != nil {
		t.Fatal(err)
	}
	raw, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("empty log serialized as %q, want []", raw)
	}
}

func TestQuarantineLogFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarantine_log.json")
	log := NewQuarantineLog(path)
	if err := log.Replace([]models.QuarantineEntry{{OriginalPath: "/a", QuarantinePath: "/q/a"}}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != models.FilePermSecure {
		t.Errorf("log permissions = %o, want %o", perm, models.FilePermSecure)
	}
}

func TestQuarantineLogUpdateCycle(t *testing.T) {
	log := NewQuarantineLog(filepath.Join(t.TempDir(), "quarantine_log.json"))
	if err := log.Replace([]models.QuarantineEntry{
		{OriginalPath: "/a", QuarantinePath: "/q/a"},
		{OriginalPath: "/b", QuarantinePath: "/q/b"},
	}); err != nil {
		t.Fatal(err)
	}

	err := log.Update(func(entries []models.QuarantineEntry) []models.QuarantineEntry {
		kept := entries[:0]
		for _, e := range entries {
			if e.OriginalPath != "/a" {
				kept = append(kept, e)
			}
		}
		return kept
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := log.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].OriginalPath != "/b" {
		t.Errorf("entries after update = %+v", got)
	}
}

func TestQuarantineLogRejectsNonRegularFile(t *testing.T) {
	dir := t.TempDir()
	log := NewQuarantineLog(dir) // a directory, not a file
	if _, err := log.Load(); err == nil {
		t.Fatal("directory accepted as quarantine log")
	}
}

func TestScheduleFileDefaults(t *testing.T) {
	file := NewScheduleFile(filepath.Join(t.TempDir(), "schedule.json"))
	cfg, err := file.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Enabled {
		t.Error("schedule enabled by default")
	}
	if cfg.Type != models.ScanQuick || cfg.Time != "12:00" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestScheduleSavePreservesLastRun(t *testing.T) {
	file := NewScheduleFile(filepath.Join(t.TempDir(), "schedule.json"))
	if err := file.Save(models.ScheduleConfig{Enabled: true, Type: models.ScanQuick, Time: "09:00"}); err != nil {
		t.Fatal(err)
	}
	if err := file.SetLastRun("2026-08-29"); err != nil {
		t.Fatal(err)
	}

	// A user edit must not re-arm today's slot.
	if err := file.Save(models.ScheduleConfig{Enabled: true, Type: models.ScanFull, Time: "10:30", LastRun: "bogus"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := file.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LastRun != "2026-08-29" {
		t.Errorf("last_run = %q, want preserved 2026-08-29", cfg.LastRun)
	}
	if cfg.Type != models.ScanFull || cfg.Time != "10:30" {
		t.Errorf("user edit lost: %+v", cfg)
	}
}

func TestScheduleWireFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	file := NewScheduleFile(path)
	if err := file.Save(models.ScheduleConfig{Enabled: true, Type: models.ScanQuick, Time: "12:00"}); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"enabled"`, `"type"`, `"time"`, `"last_run"`} {
		if !strings.Contains(string(raw), field) {
			t.Errorf("schedule file missing field %s:\n%s", field, raw)
		}
	}
}
