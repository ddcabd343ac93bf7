// Package redistore persists the session record in Redis, for clients that
// share a durable store with other tooling on the host.
package redistore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/jrsteele09/go-auth-client/session"
)

var _ session.Store = (*Store)(nil)

const keyPrefix = "go-auth-client:"

// Store is a Redis-backed session.Store.
type Store struct {
	client *redis.Client
}

// New creates a Redis store on an existing client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Load(ctx context.Context, key string) (*session.Record, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redistore.Load")
	}

	var record session.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, "redistore.Load unmarshal")
	}
	return &record, nil
}

func (s *Store) Save(ctx context.Context, key string, record *session.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "redistore.Save marshal")
	}
	if err := s.client.Set(ctx, keyPrefix+key, data, 0).Err(); err != nil {
		return errors.Wrap(err, "redistore.Save")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return errors.Wrap(err, "redistore.Delete")
	}
	return nil
}
