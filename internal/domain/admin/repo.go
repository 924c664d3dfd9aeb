package admin

import "context"

type Repository interface {
	Create(ctx context.Context, a *Admin) error
	GetByUsername(ctx context.Context, username string) (*Admin, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
