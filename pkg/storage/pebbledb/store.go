package pebbledb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/storage"
)

var (
	_ storage.SignatureStore = (*Store)(nil)
	_ storage.HistoryStore   = (*Store)(nil)
)

// Key prefixes simulate logical buckets in Pebble's flat key space.
// Keep these short to minimize storage overhead per key.
var (
	prefixSignatures = []byte("sig:")  // sig:<sha256 hex> -> JSON Signature
	prefixHistory    = []byte("hist:") // hist:<zero padded unix nanos> -> JSON ScanRun
	prefixMeta       = []byte("meta:") // meta:key -> value
)

const (
	// CurrentSchemaVersion enforces binary compatibility.
	// Increment only if the serialized value shapes change.
	CurrentSchemaVersion = 1
)

// EICAR test vector. Every fresh store carries at least this one signature so
// detection can be verified end to end without shipping live malware.
var seedSignatures = []models.Signature{
	{
		Hash:     "275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f",
		Name:     "EICAR-Test-File",
		Category: models.CategoryVirus,
		Severity: models.SeverityHigh,
	},
}

// DefinitionUpdates is the built-in definitions set applied by the update
// operation. Insertion is idempotent; re-running an update never overwrites.
var DefinitionUpdates = []models.Signature{
	{
		Hash:     "44d88612fea8a8f36de82e1278abb02f",
		Name:     "EICAR-Test-File-MD5",
		Category: models.CategoryVirus,
		Severity: models.SeverityHigh,
	},
	{
		Hash:     "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8",
		Name:     "WannaCry",
		Category: models.CategoryRansomware,
		Severity: models.SeverityCritical,
	},
	{
		Hash:     "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Name:     "Empty-Test",
		Category: models.CategorySuspicious,
		Severity: models.SeverityLow,
	},
}

// Store is the Pebble backed signature database and scan history log.
// Lookups are read-mostly and safe for concurrent readers; insertions take the
// write lock so a definitions update cannot race a history append.
type Store struct {
	db *pebble.DB
	mu sync.RWMutex
}

// Options configures Store initialization.
type Options struct {
	ReadOnly  bool
	CacheSize int64
	// SkipSeed leaves a fresh store empty. Tests use this to control the
	// signature set exactly.
	SkipSeed bool
}

// DefaultOptions returns sensible defaults for a standard deployment.
func DefaultOptions() Options {
	return Options{
		ReadOnly:  false,
		CacheSize: 8 << 20, // 8MB cache
	}
}

// Open opens or creates a Pebble backed store. It includes retry logic to
// handle transient file locks common in containerized environments, and seeds
// the EICAR test vector on first creation.
func Open(dbPath string, opts Options) (*Store, error) {
	// We prevent the engine from initializing a database in sensitive system
	// roots; a misconfigured env var must not point the store at /etc.
	absPath, err := filepath.EvalSymlinks(dbPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to resolve absolute path for db: %w", err)
		}
		absPath, _ = filepath.Abs(dbPath)
	}
	if runtime.GOOS == "linux" {
		sensitivePrefixes := []string{"/etc", "/root", "/usr", "/bin", "/sbin", "/boot"}
		for _, sp := range sensitivePrefixes {
			if strings.HasPrefix(absPath, sp) {
				return nil, fmt.Errorf("refusing to initialize database in system directory %q", absPath)
			}
		}
	}

	if opts.CacheSize == 0 {
		opts.CacheSize = 8 << 20
	}
	if opts.ReadOnly {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database does not exist: %s", dbPath)
		}
	}

	pebbleOpts := &pebble.Options{
		Cache:    pebble.NewCache(opts.CacheSize),
		ReadOnly: opts.ReadOnly,
	}

	// Automated pipelines and rapid restarts often leave the lock file held
	// for a few milliseconds, so we retry with exponential backoff.
	var db *pebble.DB
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		db, err = pebble.Open(dbPath, pebbleOpts)
		if err == nil {
			break
		}
		if strings.Contains(err.Error(), "lock") || strings.Contains(err.Error(), "temporarily unavailable") {
			time.Sleep(100 * time.Millisecond * time.Duration(1<<i))
			continue
		}
		return nil, fmt.Errorf("failed to open signature db %q: %w", dbPath, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire db lock for %q after %d attempts: %w", dbPath, maxRetries, err)
	}

	s := &Store{db: db}

	// Schema version check. A newer binary must not corrupt an older format,
	// and an older binary must not misread a newer one.
	metaVer, err := s.GetMetadata("schema_version")
	if err == nil && metaVer != "" {
		var dbVer int
		if _, scanErr := fmt.Sscanf(metaVer, "%d", &dbVer); scanErr == nil {
			if dbVer > CurrentSchemaVersion {
				db.Close()
				return nil, fmt.Errorf("database schema version %d is newer than supported version %d; please upgrade nexashield", dbVer, CurrentSchemaVersion)
			}
		}
	} else if !opts.ReadOnly {
		if err := s.SetMetadata("schema_version", fmt.Sprintf("%d", CurrentSchemaVersion)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema version: %w", err)
		}
	}

	if !opts.ReadOnly && !opts.SkipSeed {
		for _, sig := range seedSignatures {
			if _, err := s.InsertIfAbsent(sig); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to seed signature database: %w", err)
			}
		}
	}

	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

//-- Signatures --

func signatureKey(hash string) []byte {
	return append(append([]byte{}, prefixSignatures...), []byte(hash)...)
}

// Lookup performs an exact hash match. A miss is not an error.
func (s *Store) Lookup(hash string) (models.Signature, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, closer, err := s.db.Get(signatureKey(hash))
	if err != nil {
		if err == pebble.ErrNotFound {
			return models.Signature{}, false, nil
		}
		return models.Signature{}, false, fmt.Errorf("signature lookup failed: %w", err)
	}
	defer closer.Close()

	var sig models.Signature
	if err := json.Unmarshal(data, &sig); err != nil {
		return models.Signature{}, false, fmt.Errorf("corrupt signature record for %q: %w", hash, err)
	}
	return sig, true, nil
}

// InsertIfAbsent adds a signature unless its hash already exists.
// Existing records are never overwritten; definitions are append only.
func (s *Store) InsertIfAbsent(sig models.Signature) (bool, error) {
	if sig.Hash == "" {
		return false, fmt.Errorf("cannot insert signature with empty hash")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := signatureKey(sig.Hash)
	if existing, closer, err := s.db.Get(key); err == nil {
		_ = existing
		closer.Close()
		return false, nil
	} else if err != pebble.ErrNotFound {
		return false, fmt.Errorf("signature existence check failed: %w", err)
	}

	data, err := json.Marshal(sig)
	if err != nil {
		return false, fmt.Errorf("failed to encode signature: %w", err)
	}
	if err := s.db.Set(key, data, pebble.Sync); err != nil {
		return false, fmt.Errorf("failed to store signature: %w", err)
	}
	return true, nil
}

// UpdateDefinitions inserts the given set (or the built-in set when sigs is
// nil) and reports how many were newly added.
func (s *Store) UpdateDefinitions(sigs []models.Signature) (int, error) {
	if sigs == nil {
		sigs = DefinitionUpdates
	}
	added := 0
	for _, sig := range sigs {
		inserted, err := s.InsertIfAbsent(sig)
		if err != nil {
			return added, err
		}
		if inserted {
			added++
		}
	}
	return added, nil
}

// SignatureCount walks the signature bucket. Intended for stats output, not
// hot paths.
func (s *Store) SignatureCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefixSignatures,
		UpperBound: upperBound(prefixSignatures),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create signature iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}
	return count, iter.Error()
}

//-- Scan History --

func historyKey(t time.Time) []byte {
	// Zero padded nanos keep byte order equal to chronological order, so a
	// reverse iteration yields most recent first.
	return append(append([]byte{}, prefixHistory...), []byte(fmt.Sprintf("%020d", t.UnixNano()))...)
}

// AppendHistory records a finished run. Runs are never mutated afterwards.
func (s *Store) AppendHistory(run models.ScanRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode scan run: %w", err)
	}
	if err := s.db.Set(historyKey(run.FinishedAt), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to append scan history: %w", err)
	}
	return nil
}

// History returns past runs, most recent first.
func (s *Store) History() ([]models.ScanRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefixHistory,
		UpperBound: upperBound(prefixHistory),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create history iterator: %w", err)
	}
	defer iter.Close()

	var runs []models.ScanRun
	for ok := iter.Last(); ok; ok = iter.Prev() {
		var run models.ScanRun
		if err := json.Unmarshal(iter.Value(), &run); err != nil {
			return nil, fmt.Errorf("corrupt history record: %w", err)
		}
		runs = append(runs, run)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ClearHistory empties the whole history bucket.
func (s *Store) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteRange(prefixHistory, upperBound(prefixHistory), pebble.Sync); err != nil {
		return fmt.Errorf("failed to clear scan history: %w", err)
	}
	return nil
}

//-- Metadata --

func metaKey(key string) []byte {
	return append(append([]byte{}, prefixMeta...), []byte(key)...)
}

func (s *Store) GetMetadata(key string) (string, error) {
	data, closer, err := s.db.Get(metaKey(key))
	if err != nil {
		if err == pebble.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	defer closer.Close()
	return string(data), nil
}

func (s *Store) SetMetadata(key, value string) error {
	return s.db.Set(metaKey(key), []byte(value), pebble.Sync)
}

// upperBound returns the exclusive end key for a prefix scan.
func upperBound(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	end[len(end)-1]++
	return end
}
