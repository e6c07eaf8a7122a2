package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// FaceRepository stores the registry's faces, one per member id
type FaceRepository struct {
	pool PgxPool
}

func NewFaceRepository(pool PgxPool) *FaceRepository {
	return &FaceRepository{pool: pool}
}

// Upsert stores the descriptor for memberID. An existing member keeps its
// record id and gets the new descriptor.
func (r *FaceRepository) Upsert(ctx context.Context, memberID string, descriptor domain.Descriptor) (*domain.RegistryFace, error) {
	query := `
		INSERT INTO registry_faces (id, member_id, descriptor, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (member_id) DO UPDATE
		SET descriptor = EXCLUDED.descriptor,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	face := &domain.RegistryFace{
		MemberID:   memberID,
		Descriptor: descriptor.Clone(),
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		uuid.New(),
		memberID,
		toVector(descriptor),
	).Scan(&id, &face.CreatedAt, &face.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert face: %w", err)
	}

	face.ID = id.String()
	return face, nil
}

func (r *FaceRepository) GetByMemberID(ctx context.Context, memberID string) (*domain.RegistryFace, error) {
	query := `
		SELECT id, member_id, descriptor, created_at, updated_at
		FROM registry_faces
		WHERE member_id = $1
	`

	var (
		face       domain.RegistryFace
		id         uuid.UUID
		descriptor *pgvector.Vector
	)

	err := r.pool.QueryRow(ctx, query, memberID).Scan(
		&id,
		&face.MemberID,
		&descriptor,
		&face.CreatedAt,
		&face.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get face by member_id: %w", err)
	}

	face.ID = id.String()
	face.Descriptor = fromVector(descriptor)
	return &face, nil
}

func (r *FaceRepository) Delete(ctx context.Context, memberID string) error {
	query := `
		DELETE FROM registry_faces
		WHERE member_id = $1
	`

	result, err := r.pool.Exec(ctx, query, memberID)
	if err != nil {
		return fmt.Errorf("delete face: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrFaceNotFound
	}

	return nil
}
