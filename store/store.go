// Package store persists serialized Q-tables. Backends move the
// flat table dump around as is, they never reinterpret it.
package store

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("store: no table saved")

type Store interface {
	// Save writes the table dump
	Save(ctx context.Context, table io.WriterTo) error
	// Load hands the saved dump to load
	Load(ctx context.Context, load func(io.Reader) error) error
	String() string
}
