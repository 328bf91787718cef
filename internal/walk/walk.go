// Package walk enumerates regular files from filesystems and container
// images as a lazy iterator of entries.
package walk

import (
	"io"
	"io/fs"
)

// Entry is a handle for one regular file found by a walk. Open must be
// called at most once per detection pass and the returned reader closed by
// the caller.
type Entry interface {
	// Path returns an identifier of the file, an absolute path when the
	// source filesystem has one.
	Path() string
	Open() (io.ReadCloser, error)
	Stat() (fs.FileInfo, error)
}
