package types

import (
	"os"
	"syscall"

	"github.com/cespare/xxhash/v2"
)

// FileID is an opaque, comparable identifier for a physical file. Two paths
// that resolve to the same inode produce equal FileIDs, so the registry can
// deduplicate files reached through different symlinks or relative paths.
type FileID struct {
	dev uint64
	ino uint64
	// fallback is populated only when the platform's stat result is not a
	// syscall.Stat_t (a failed stat returns an error instead); it hashes
	// the path string as given so FileID stays comparable, at the cost of
	// not detecting hardlinks or different spellings of one path.
	fallback uint64
}

// Stat derives a FileID from the file at path. The file must exist.
func Stat(path string) (FileID, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileID{}, err
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return FileID{dev: uint64(st.Dev), ino: st.Ino}, nil
	}
	return FileID{fallback: xxhash.Sum64String(path)}, nil
}

// Valid reports whether the id was ever populated by Stat.
func (id FileID) Valid() bool {
	return id.dev != 0 || id.ino != 0 || id.fallback != 0
}
