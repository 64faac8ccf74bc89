// -- internal/cli/targets.go --
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/git-atharvb/nexashield-app/pkg/models"
)

// ScanRoots resolves the filesystem roots for a scan type. Quick covers the
// directories where downloaded and user-authored files land; Full covers the
// whole system; Custom and File take an explicit target.
func ScanRoots(scanType models.ScanType, target string) ([]string, error) {
	switch scanType {
	case models.ScanQuick:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve home directory for quick scan: %w", err)
		}
		var roots []string
		for _, sub := range []string{"Documents", "Downloads"} {
			dir := filepath.Join(home, sub)
			if _, err := os.Stat(dir); err == nil {
				roots = append(roots, dir)
			}
		}
		if len(roots) == 0 {
			roots = []string{home}
		}
		return roots, nil

	case models.ScanFull:
		if runtime.GOOS == "windows" {
			return windowsDrives(), nil
		}
		return []string{"/"}, nil

	case models.ScanCustom, models.ScanFile:
		if target == "" {
			return nil, fmt.Errorf("%s scan requires a target path", scanType)
		}
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("invalid scan target: %w", err)
		}
		if scanType == models.ScanFile && info.IsDir() {
			return nil, fmt.Errorf("file scan target is a directory: %s", abs)
		}
		return []string{abs}, nil

	default:
		return nil, fmt.Errorf("unknown scan type: %s", scanType)
	}
}

func windowsDrives() []string {
	var drives []string
	for c := 'A'; c <= 'Z'; c++ {
		root := string(c) + `:\`
		if _, err := os.Stat(root); err == nil {
			drives = append(drives, root)
		}
	}
	if len(drives) == 0 {
		drives = []string{`C:\`}
	}
	return drives
}
