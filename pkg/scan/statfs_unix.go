//go:build !windows

package scan

import "golang.org/x/sys/unix"

// usedBytes returns the used disk space of the volume holding root. Full
// scans use the sum over their roots as the total-work estimate: it is
// available instantly, where a pre-walk of an entire filesystem could take
// longer than the scan itself. The figure overcounts (it includes files the
// walk will never reach), so it is an approximation, never treated as exact.
func usedBytes(root string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(root, &stat); err != nil {
		return 0, err
	}
	used := (int64(stat.Blocks) - int64(stat.Bfree)) * int64(stat.Bsize)
	if used < 0 {
		used = 0
	}
	return used, nil
}
