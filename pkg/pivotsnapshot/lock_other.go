//go:build windows

package pivotsnapshot

import (
	"os"

	"pivotsql/pkg/sqlerr"
)

// lockPath on Windows just ensures path exists; advisory
// flock has no portable equivalent here and cross-process export
// interleaving is out of scope on this platform.
func lockPath(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.IO, err, "opening %q", path)
	}
	return func() { f.Close() }, nil
}
