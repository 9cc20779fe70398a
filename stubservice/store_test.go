package stubservice

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetPost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	before := time.Now().UTC().Add(-time.Second)

	id, err := s.CreatePost(ctx, "Hello, world!")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	p, err := s.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "Hello, world!", p.Body)
	assert.True(t, p.CreatedAt.After(before))
}

func TestPostIDsIncrease(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreatePost(ctx, "a")
	require.NoError(t, err)
	second, err := s.CreatePost(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, first+1, second)
}

func TestGetPostNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetPost(context.Background(), 42)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCreatePostAfterClose(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = s.CreatePost(context.Background(), "x")
	assert.Error(t, err)
}
