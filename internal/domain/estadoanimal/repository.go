package estadoanimal

import "context"

type Repository interface {
	Create(ctx context.Context, e EstadoAnimal) error
	Update(ctx context.Context, e EstadoAnimal) error
	GetByID(ctx context.Context, id string) (EstadoAnimal, error)
	GetByAnimal(ctx context.Context, animalID string) (EstadoAnimal, error)
	List(ctx context.Context, f ListFilter) ([]EstadoAnimal, error)
	Count(ctx context.Context, f ListFilter) (int, error)
}
