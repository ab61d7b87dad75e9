//go:build linux

package walker

import (
	"io/fs"
	"syscall"
	"time"
)

// statTimes pulls access and inode-change times out of the platform stat.
func statTimes(info fs.FileInfo) (atime, ctime time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, time.Time{}
	}
	return time.Unix(st.Atim.Sec, st.Atim.Nsec), time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
}
