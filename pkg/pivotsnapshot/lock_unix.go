//go:build !windows

package pivotsnapshot

import (
	"os"

	"golang.org/x/sys/unix"

	"pivotsql/pkg/sqlerr"
)

// lockPath advisory-locks path (creating it if needed) for the duration
// of an export/import call, so two engine processes sharing the same
// export file don't interleave writes. The returned func releases the
// lock and closes the lock file handle.
func lockPath(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.IO, err, "opening %q for locking", path)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, sqlerr.Wrap(sqlerr.IO, err, "locking %q", path)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
