package detection

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/storage"
)

// HeuristicDoubleExtension is the threat name reported by the filename rule.
const HeuristicDoubleExtension = "Suspicious Double Extension"

// Detector classifies single files. It is pure and synchronous: same content
// and same signature set always produce the same verdict. The only state is
// the signature store reference and the I/O chunk size.
type Detector struct {
	store     storage.SignatureStore
	chunkSize int
}

// NewDetector builds a detector over the given store. chunkSize <= 0 selects
// the default; the chunk size tunes read throughput and never changes the
// resulting digest.
func NewDetector(store storage.SignatureStore, chunkSize int) *Detector {
	if chunkSize <= 0 {
		chunkSize = models.DefaultHashChunkSize
	}
	return &Detector{store: store, chunkSize: chunkSize}
}

// Classify runs the detection pipeline against one file, first match wins:
//
//  1. streamed SHA-256 against the signature store
//  2. double extension filename heuristic
//
// Files that cannot be opened (permission denied, vanished, locked) are
// skipped, not findings: the error is swallowed and the verdict is nil so a
// single unreadable file never aborts a whole scan. A store failure is the
// one condition that does surface, since every subsequent lookup would be
// equally broken.
func (d *Detector) Classify(path string) (*models.ThreatFinding, error) {
	digest, err := d.hashFile(path)
	if err != nil {
		// Transient per-file I/O error. Skip.
		return nil, nil
	}

	sig, found, err := d.store.Lookup(digest)
	if err != nil {
		return nil, fmt.Errorf("signature lookup for %s: %w", path, err)
	}
	if found {
		return &models.ThreatFinding{
			Path:       path,
			ThreatName: sig.Name,
			Category:   sig.Category,
			Severity:   sig.Severity,
			Method:     models.MethodSignature,
			DetectedAt: time.Now(),
		}, nil
	}

	if HasDoubleExtension(path) {
		return &models.ThreatFinding{
			Path:       path,
			ThreatName: HeuristicDoubleExtension,
			Category:   models.CategorySuspicious,
			Severity:   models.SeverityMedium,
			Method:     models.MethodHeuristic,
			DetectedAt: time.Now(),
		}, nil
	}

	return nil, nil
}

// CheckHash looks a caller-supplied hex digest up directly, without touching
// the filesystem. Hits carry the manual-check method so reports distinguish
// them from real file scans.
func (d *Detector) CheckHash(digest string) (*models.ThreatFinding, error) {
	digest = strings.ToLower(strings.TrimSpace(digest))
	if digest == "" {
		return nil, fmt.Errorf("empty hash")
	}

	sig, found, err := d.store.Lookup(digest)
	if err != nil {
		return nil, fmt.Errorf("signature lookup: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &models.ThreatFinding{
		Path:       "Manual Hash: " + digest,
		ThreatName: sig.Name,
		Category:   sig.Category,
		Severity:   sig.Severity,
		Method:     models.MethodManual,
		DetectedAt: time.Now(),
	}, nil
}

// hashFile streams the file through SHA-256 in fixed-size chunks so
// arbitrarily large files never get loaded into memory.
func (d *Detector) hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if err := copyChunked(h, f, d.chunkSize); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func copyChunked(h hash.Hash, r io.Reader, chunkSize int) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			// Hash writes never fail.
			h.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// HashFile computes the hex SHA-256 of a file with the default chunk size.
func HashFile(path string) (string, error) {
	d := Detector{chunkSize: models.DefaultHashChunkSize}
	return d.hashFile(path)
}

// HasDoubleExtension reports whether the base filename carries more than one
// dot and ends in an executable-adjacent extension, the classic
// "invoice.pdf.exe" masquerade.
func HasDoubleExtension(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	if strings.Count(name, ".") <= 1 {
		return false
	}
	for _, ext := range models.SuspiciousExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
