package storefakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session.Store for tests. It counts writes and
// deletes so tests can assert that mutations persist.
type FakeStore struct {
	records map[string]session.Record
	saves   int
	deletes int
	lock    sync.RWMutex

	// SaveErr, when set, is returned from Save to simulate store failures.
	SaveErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		records: make(map[string]session.Record),
	}
}

func (fs *FakeStore) Load(_ context.Context, key string) (*session.Record, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	record, ok := fs.records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (fs *FakeStore) Save(_ context.Context, key string, record *session.Record) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.SaveErr != nil {
		return fs.SaveErr
	}
	fs.records[key] = *record
	fs.saves++
	return nil
}

func (fs *FakeStore) Delete(_ context.Context, key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	delete(fs.records, key)
	fs.deletes++
	return nil
}

// Record returns the stored record for key, or nil when absent.
func (fs *FakeStore) Record(key string) *session.Record {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	record, ok := fs.records[key]
	if !ok {
		return nil
	}
	return &record
}

// Saves returns the number of successful Save calls.
func (fs *FakeStore) Saves() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.saves
}

// Deletes returns the number of Delete calls.
func (fs *FakeStore) Deletes() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.deletes
}
