package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use, so pgxmock can stand in
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

func toVector(d domain.Descriptor) pgvector.Vector {
	floats := make([]float32, len(d))
	for i, v := range d {
		floats[i] = float32(v)
	}
	return pgvector.NewVector(floats)
}

func fromVector(v *pgvector.Vector) domain.Descriptor {
	if v == nil || v.Slice() == nil {
		return nil
	}
	out := make(domain.Descriptor, len(v.Slice()))
	for i, f := range v.Slice() {
		out[i] = float64(f)
	}
	return out
}
