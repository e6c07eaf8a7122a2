package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// FacesKey is the fixed key of the enrolled faces record
const FacesKey = "registeredFaces"

// FaceCache is the local display cache of enrolled faces.
// It mirrors what the station believes the registry holds and is not transactional with it.
type FaceCache struct {
	store Store
	mu    sync.Mutex
}

func NewFaceCache(store Store) *FaceCache {
	return &FaceCache{store: store}
}

// Load returns the stored faces. A missing record is an empty list.
// A record that cannot be parsed returns ErrCorrupt with an empty list.
func (c *FaceCache) Load(ctx context.Context) ([]domain.EnrolledFace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *FaceCache) load(ctx context.Context) ([]domain.EnrolledFace, error) {
	data, err := c.store.Get(ctx, FacesKey)
	if errors.Is(err, ErrCacheMiss) {
		return []domain.EnrolledFace{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load faces: %w", err)
	}

	var faces []domain.EnrolledFace
	if err := json.Unmarshal(data, &faces); err != nil {
		return []domain.EnrolledFace{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if faces == nil {
		faces = []domain.EnrolledFace{}
	}
	return faces, nil
}

// Save replaces the whole record
func (c *FaceCache) Save(ctx context.Context, faces []domain.EnrolledFace) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, faces)
}

func (c *FaceCache) save(ctx context.Context, faces []domain.EnrolledFace) error {
	if faces == nil {
		faces = []domain.EnrolledFace{}
	}
	data, err := json.Marshal(faces)
	if err != nil {
		return fmt.Errorf("marshal faces: %w", err)
	}
	if err := c.store.Set(ctx, FacesKey, data); err != nil {
		return fmt.Errorf("save faces: %w", err)
	}
	return nil
}

// List returns the faces ordered newest first
func (c *FaceCache) List(ctx context.Context) ([]domain.EnrolledFace, error) {
	faces, err := c.Load(ctx)
	if err != nil {
		return faces, err
	}
	SortNewestFirst(faces)
	return faces, nil
}

// Has reports whether id is present in the cache
func (c *FaceCache) Has(ctx context.Context, id string) (bool, error) {
	faces, err := c.Load(ctx)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return false, err
	}
	for _, f := range faces {
		if f.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// Upsert replaces any entry with the same id by face.
// A corrupt record is overwritten.
func (c *FaceCache) Upsert(ctx context.Context, face domain.EnrolledFace) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	faces, err := c.load(ctx)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}

	out := make([]domain.EnrolledFace, 0, len(faces)+1)
	for _, f := range faces {
		if f.ID != face.ID {
			out = append(out, f)
		}
	}
	out = append(out, face)

	return c.save(ctx, out)
}

// Evict removes id and reports whether it was present
func (c *FaceCache) Evict(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	faces, err := c.load(ctx)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return false, err
	}

	out := make([]domain.EnrolledFace, 0, len(faces))
	for _, f := range faces {
		if f.ID != id {
			out = append(out, f)
		}
	}
	if len(out) == len(faces) {
		return false, nil
	}

	return true, c.save(ctx, out)
}

// SortNewestFirst orders faces by CreatedAt descending, in place
func SortNewestFirst(faces []domain.EnrolledFace) {
	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].CreatedAt.After(faces[j].CreatedAt)
	})
}
