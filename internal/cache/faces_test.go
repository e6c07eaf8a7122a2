package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

func face(id string, createdAt time.Time) domain.EnrolledFace {
	return domain.EnrolledFace{
		ID:         id,
		Descriptor: domain.Descriptor{0.1, 0.2},
		CreatedAt:  createdAt,
	}
}

func TestFaceCache_LoadEmpty(t *testing.T) {
	c := NewFaceCache(NewMemoryStore())

	faces, err := c.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, faces)
	assert.Empty(t, faces)
}

func TestFaceCache_UpsertReplacesSameID(t *testing.T) {
	ctx := context.Background()
	c := NewFaceCache(NewMemoryStore())
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, c.Upsert(ctx, face("alice", t0)))
	require.NoError(t, c.Upsert(ctx, face("bob", t0.Add(time.Minute))))
	require.NoError(t, c.Upsert(ctx, face("alice", t0.Add(2*time.Minute))))

	faces, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, faces, 2)

	var alice int
	for _, f := range faces {
		if f.ID == "alice" {
			alice++
			assert.Equal(t, t0.Add(2*time.Minute), f.CreatedAt)
		}
	}
	assert.Equal(t, 1, alice)
}

func TestFaceCache_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	c := NewFaceCache(NewMemoryStore())
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, c.Save(ctx, []domain.EnrolledFace{
		face("old", t0),
		face("newest", t0.Add(2*time.Hour)),
		face("middle", t0.Add(time.Hour)),
	}))

	faces, err := c.List(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(faces))
	for _, f := range faces {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"newest", "middle", "old"}, ids)
}

func TestFaceCache_HasAndEvict(t *testing.T) {
	ctx := context.Background()
	c := NewFaceCache(NewMemoryStore())
	require.NoError(t, c.Upsert(ctx, face("alice", time.Now())))

	has, err := c.Has(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, has)

	removed, err := c.Evict(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = c.Evict(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, removed)

	has, err = c.Has(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestFaceCache_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, FacesKey, []byte("{not json")))
	c := NewFaceCache(store)

	faces, err := c.Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Empty(t, faces)

	has, err := c.Has(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, c.Upsert(ctx, face("alice", time.Now())))
	faces, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, faces, 1)
}

type failingStore struct{ err error }

func (s failingStore) Get(context.Context, string) ([]byte, error) { return nil, s.err }
func (s failingStore) Set(context.Context, string, []byte) error   { return s.err }
func (s failingStore) Delete(context.Context, string) error        { return s.err }

func TestFaceCache_StoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	c := NewFaceCache(failingStore{err: boom})

	_, err := c.Load(context.Background())
	assert.ErrorIs(t, err, boom)

	err = c.Upsert(context.Background(), face("alice", time.Now()))
	assert.ErrorIs(t, err, boom)
}

func TestFaceCache_PersistsSnapshotAndDescriptor(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	c := NewFaceCache(store)

	f := face("alice", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	f.ImageSnapshot = "data:image/png;base64,AAAA"
	require.NoError(t, c.Upsert(ctx, f))

	reopened := NewFaceCache(store)
	faces, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.Equal(t, f, faces[0])
}
