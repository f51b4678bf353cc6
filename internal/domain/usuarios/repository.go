package usuarios

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Usuario, error)
	List(ctx context.Context) ([]Usuario, error)
}
