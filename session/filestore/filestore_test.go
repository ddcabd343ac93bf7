package filestore_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/session/filestore"
	"github.com/jrsteele09/go-auth-client/users"
)

func newTestStore() *filestore.Store {
	return filestore.New(afero.NewMemMapFs(), "/data/auth")
}

func TestLoadAbsentReturnsNil(t *testing.T) {
	store := newTestStore()

	record, err := store.Load(context.Background(), "auth-storage")
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	saved := &session.Record{
		User:         &users.User{ID: 7, Username: "alice", Email: "alice@example.com"},
		AccessToken:  "A1",
		RefreshToken: "R1",
	}
	require.NoError(t, store.Save(ctx, "auth-storage", saved))

	loaded, err := store.Load(ctx, "auth-storage")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, saved.AccessToken, loaded.AccessToken)
	require.Equal(t, saved.RefreshToken, loaded.RefreshToken)
	require.Equal(t, saved.User.Username, loaded.User.Username)
}

func TestSaveOverwritesWholesale(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	require.NoError(t, store.Save(ctx, "auth-storage", &session.Record{AccessToken: "A1", RefreshToken: "R1"}))
	require.NoError(t, store.Save(ctx, "auth-storage", &session.Record{}))

	loaded, err := store.Load(ctx, "auth-storage")
	require.NoError(t, err)
	require.Empty(t, loaded.AccessToken)
	require.Empty(t, loaded.RefreshToken)
}

func TestDeleteRemovesRecordAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	require.NoError(t, store.Save(ctx, "auth-storage", &session.Record{AccessToken: "A1"}))
	require.NoError(t, store.Delete(ctx, "auth-storage"))
	require.NoError(t, store.Delete(ctx, "auth-storage"))

	record, err := store.Load(ctx, "auth-storage")
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestLoadCorruptRecordFails(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := filestore.New(fs, "/data/auth")
	require.NoError(t, afero.WriteFile(fs, "/data/auth/auth-storage.json", []byte("{not json"), 0o600))

	_, err := store.Load(ctx, "auth-storage")
	require.Error(t, err)
}
