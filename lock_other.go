//go:build !unix

package optiman

// No advisory launch locking outside unix; concurrent managers on the same
// optimizer directory are caught by the port check instead.
func acquireLaunchLock(path string) (func() error, error) {
	return func() error { return nil }, nil
}
