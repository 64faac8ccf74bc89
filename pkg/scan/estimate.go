package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// enumerateFiles walks every root fully and returns the regular files found,
// preserving root order so findings later stream in deterministic walk order.
// Roots are walked in parallel; unreadable entries are skipped silently, the
// same policy the scan itself applies.
func enumerateFiles(ctx context.Context, roots []string) []string {
	perRoot := make([][]string, len(roots))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			var files []string
			_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					// Vanished or permission denied. Not our problem.
					return nil
				}
				select {
				case <-ctx.Done():
					return filepath.SkipAll
				default:
				}
				if d.Type().IsRegular() {
					files = append(files, path)
				}
				return nil
			})
			mu.Lock()
			perRoot[i] = files
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var all []string
	for _, files := range perRoot {
		all = append(all, files...)
	}
	return all
}
