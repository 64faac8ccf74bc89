package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/storage/pebbledb"
)

// EICARContent is the standard antivirus test string. Its sha256 is the one
// signature every fresh database is seeded with, so tests can produce a real
// detection without shipping anything harmful.
const EICARContent = `X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`

// WriteFile creates a file (and parent dirs) under dir and returns its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// BuildTree writes a set of relative-path -> content files under a fresh
// temp dir and returns the dir.
func BuildTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
	return dir
}

// SHA256Hex returns the hex digest of content, matching what the detector
// computes for a file holding exactly that content.
func SHA256Hex(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// OpenTestStore opens a seeded pebble store in a temp dir and closes it when
// the test ends.
func OpenTestStore(t *testing.T) *pebbledb.Store {
	t.Helper()
	store, err := pebbledb.Open(filepath.Join(t.TempDir(), "signatures.db"), pebbledb.DefaultOptions())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// InsertSignature adds a signature for the given content and returns it.
func InsertSignature(t *testing.T, store *pebbledb.Store, content, name, category string, sev models.Severity) models.Signature {
	t.Helper()
	sig := models.Signature{
		Hash:     SHA256Hex(content),
		Name:     name,
		Category: category,
		Severity: sev,
	}
	if _, err := store.InsertIfAbsent(sig); err != nil {
		t.Fatalf("insert signature %s: %v", name, err)
	}
	return sig
}
