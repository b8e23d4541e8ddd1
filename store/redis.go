package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the table dump as a single string value
type RedisStore struct {
	client *redis.Client
	key    string
}

var _ Store = &RedisStore{}

func NewRedisStore(addr, key string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
		key: key,
	}
}

func (r *RedisStore) Save(ctx context.Context, table io.WriterTo) error {
	var buf bytes.Buffer
	if _, err := table.WriteTo(&buf); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, buf.String(), 0).Err(); err != nil {
		return fmt.Errorf("save table to redis key %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, load func(io.Reader) error) error {
	dump, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: redis key %s", ErrNotFound, r.key)
	} else if err != nil {
		return fmt.Errorf("load table from redis key %s: %w", r.key, err)
	}
	if err := load(strings.NewReader(dump)); err != nil {
		return fmt.Errorf("load table from redis key %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) String() string {
	return "redis://" + r.client.Options().Addr + "/" + r.key
}
