//go:build unix

package lock

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// publishExclusive creates path with content already in it. The content is
// written to a temporary file in the same directory which is then hard-linked
// to path; the link fails if path exists, so creation stays exclusive and a
// reader never sees an empty lock file. The returned file is positioned at
// the start of the content.
//
// File systems without hard links fall back to openExclusive.
func publishExclusive(path string, content []byte) (*os.File, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(f.Name())

	if err := prepare(f, content); err != nil {
		f.Close()
		return nil, err
	}

	linkErr := os.Link(f.Name(), path)
	if linkErr == nil {
		return f, nil
	}
	f.Close()
	if errors.Is(linkErr, fs.ErrExist) {
		return nil, linkErr
	}
	return openExclusive(path)
}

func prepare(f *os.File, content []byte) error {
	if err := f.Chmod(0o644); err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		return err
	}
	_, err := f.Seek(0, io.SeekStart)
	return err
}
