//go:build !linux

package walker

import (
	"io/fs"
	"time"
)

// statTimes reports zero times where the platform stat has no portable
// access or change time; temporal predicates on those fields then compare
// against the zero instant.
func statTimes(fs.FileInfo) (atime, ctime time.Time) {
	return time.Time{}, time.Time{}
}
