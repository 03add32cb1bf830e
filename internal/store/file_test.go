package store

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	logger := zerolog.New(io.Discard)
	s, err := NewFileStore(t.TempDir(), &logger)
	require.NoError(t, err)
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	payload := []byte(`[{"id":"1"}]`)
	require.NoError(t, s.Save(ctx, CollectionReservations, payload))

	got, err := s.Load(ctx, CollectionReservations)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := newTestFileStore(t)

	_, err := s.Load(context.Background(), CollectionWorks)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreSaveReplaces(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, CollectionWorks, []byte(`["a"]`)))
	require.NoError(t, s.Save(ctx, CollectionWorks, []byte(`["b"]`)))

	got, err := s.Load(ctx, CollectionWorks)
	require.NoError(t, err)
	assert.Equal(t, []byte(`["b"]`), got)
}

func TestFileStoreDelete(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, CollectionActiveCashBox, []byte(`{}`)))
	require.NoError(t, s.Delete(ctx, CollectionActiveCashBox))

	_, err := s.Load(ctx, CollectionActiveCashBox)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent collection is not an error.
	assert.NoError(t, s.Delete(ctx, CollectionActiveCashBox))
}
