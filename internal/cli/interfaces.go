// -- internal/cli/interfaces.go --
package cli

import (
	"io/fs"
	"os"
)

// FileSystem abstracts OS file operations to enable hermetic testing.
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	WalkDir(root string, fn fs.WalkDirFunc) error
}
