//go:build windows

package scan

import "golang.org/x/sys/windows"

// usedBytes returns the used disk space of the volume holding root, from
// which Full scans derive their total-work estimate. An approximation: it
// counts bytes the walk may never reach.
func usedBytes(root string) (int64, error) {
	var free, total, totalFree uint64
	p, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return 0, err
	}
	if err := windows.GetDiskFreeSpaceEx(p, &free, &total, &totalFree); err != nil {
		return 0, err
	}
	used := int64(total) - int64(totalFree)
	if used < 0 {
		used = 0
	}
	return used, nil
}
