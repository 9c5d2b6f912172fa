//go:build unix

package scan

import (
	"os"
	"syscall"
)

// inodeKey identifies a file's on-disk identity for hardlink detection.
// ok is false on platforms or filesystems without inode semantics.
func inodeKey(path string) (string, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok || st.Nlink < 2 {
		return "", false
	}
	return inodeString(uint64(st.Dev), st.Ino), true
}
