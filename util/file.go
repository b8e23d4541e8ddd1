package util

import (
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes through a temporary file in the same
// directory and renames it over savePath once write succeeded.
func WriteFileAtomic(savePath string, write func(io.Writer) error) error {
	dir := filepath.Dir(savePath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(savePath)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, savePath)
}

// EnsureDir creates the directory if missing
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return os.MkdirAll(dir, os.ModePerm)
	}
	return nil
}
