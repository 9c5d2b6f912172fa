//go:build !unix

package scan

// Hardlink detection is disabled where inode identity is unavailable.
func inodeKey(path string) (string, bool) {
	return "", false
}
