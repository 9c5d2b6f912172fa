//go:build !unix

package scan

import (
	"os"
	"time"
)

func fileDates(fi os.FileInfo) (time.Time, time.Time) {
	return fi.ModTime(), fi.ModTime()
}
