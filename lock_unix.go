//go:build unix

package optiman

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// acquireLaunchLock takes a non-blocking exclusive flock on path. A held
// lock means another manager is launching (or supervising) the same
// optimizer directory.
func acquireLaunchLock(path string) (func() error, error) {
	lockFile, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening launch lock: %w", err)
	}

	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("locking %s (another manager may own this optimizer): %w", path, err)
	}

	return func() error {
		unlockErr := unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
		closeErr := lockFile.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}
