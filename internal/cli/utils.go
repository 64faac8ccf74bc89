// -- internal/cli/utils.go --
package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// -- Real Implementations --

// RealFileSystem implements FileSystem using the actual OS.
type RealFileSystem struct{}

func (fs RealFileSystem) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (fs RealFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// -- Helpers --

// ResolveDBPath picks the signature database location: explicit flag, then
// environment, then the first existing well-known candidate.
func ResolveDBPath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv("NEXASHIELD_DB_PATH"); env != "" {
		return env
	}
	candidates := []string{
		"./signatures.db",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".nexashield", "signatures.db"))
	}
	candidates = append(candidates,
		"/usr/local/share/nexashield/signatures.db",
		"/var/lib/nexashield/signatures.db",
	)
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".nexashield", "signatures.db")
	}
	return "./signatures.db"
}

func levenshtein(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	n, m := len(r1), len(r2)
	if n > m {
		r1, r2 = r2, r1
		n, m = m, n
	}
	current := make([]int, n+1)
	for i := 0; i <= n; i++ {
		current[i] = i
	}
	for j := 1; j <= m; j++ {
		previous := current[0]
		current[0] = j
		targetChar := r2[j-1]
		for i := 1; i <= n; i++ {
			temp := current[i]
			cost := 0
			if r1[i-1] != targetChar {
				cost = 1
			}
			// Use built-in variadic min for cleaner comparison logic
			current[i] = min(current[i-1]+1, current[i]+1, previous+cost)
			previous = temp
		}
	}
	return current[n]
}

func SuggestCommand(cmd string) string {
	commands := []string{"scan", "hash", "update", "quarantine", "history", "schedule", "daemon", "watch", "version"}
	bestMatch := ""
	minDist := 100
	cmdLower := strings.ToLower(cmd)
	for _, c := range commands {
		dist := levenshtein(cmdLower, c)
		if dist < minDist {
			minDist = dist
			bestMatch = c
		}
	}
	if minDist <= 2 {
		return bestMatch
	}
	return ""
}

func HumanizeBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := "KMGTPE"
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), suffixes[exp])
}

// Calculates the size of a file or recursively sums the size of a directory.
func GetPathSize(fsys FileSystem, path string) (int64, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var size int64
	err = fsys.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			info, err := d.Info()
			if err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size, err
}

func ExitError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
