package storage

import (
	"github.com/git-atharvb/nexashield-app/pkg/models"
)

// SignatureStore defines the contract for signature persistence and retrieval.
// This abstraction keeps the detector agnostic of the underlying storage
// implementation; only exact hash lookups are supported, no fuzzy matching.
type SignatureStore interface {
	// Lookup returns the signature for an exact content hash match.
	// A miss is (zero value, false, nil); errors are reserved for the backing
	// storage being unavailable, which is fatal to the calling scan.
	Lookup(hash string) (models.Signature, bool, error)

	// InsertIfAbsent adds a signature unless its hash already exists.
	// Re-inserting an existing hash is a no-op and reports inserted=false.
	InsertIfAbsent(sig models.Signature) (bool, error)
}

// HistoryStore records completed scan runs.
type HistoryStore interface {
	AppendHistory(run models.ScanRun) error
	// History returns past runs, most recent first.
	History() ([]models.ScanRun, error)
	ClearHistory() error
}
