package doctor

import (
	"context"

	"github.com/google/uuid"
)

// SearchFilter narrows a doctor search. Zero-value fields are ignored.
// Period filtering happens in the service because it depends on the offered
// slot labels, not on a column.
type SearchFilter struct {
	Name      string // substring, case-insensitive
	Specialty string // exact, case-insensitive
}

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, f SearchFilter, limit, offset int) ([]*Doctor, int, error)
}
