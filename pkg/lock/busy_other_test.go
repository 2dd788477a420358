//go:build !unix && !windows

package lock

// no remove error is retried on this platform
func busyRemoveError(string) error {
	return nil
}
