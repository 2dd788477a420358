//go:build !unix

package lock

import "os"

// publishExclusive creates path with O_EXCL. The caller writes the content,
// so the file is briefly empty.
func publishExclusive(path string, _ []byte) (*os.File, error) {
	return openExclusive(path)
}
