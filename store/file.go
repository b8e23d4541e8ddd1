package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeu5/maze-rl/util"
)

type FileStore struct {
	Path string
}

var _ Store = &FileStore{}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Save(_ context.Context, table io.WriterTo) error {
	err := util.WriteFileAtomic(f.Path, func(w io.Writer) error {
		_, err := table.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("save table to %s: %w", f.Path, err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context, load func(io.Reader) error) error {
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, f.Path)
		}
		return fmt.Errorf("open table: %w", err)
	}
	defer file.Close()
	if err := load(file); err != nil {
		return fmt.Errorf("load table from %s: %w", f.Path, err)
	}
	return nil
}

func (f *FileStore) String() string {
	return "file://" + f.Path
}
