package historial

import "context"

type Repository interface {
	Create(ctx context.Context, e Evento) error
	Update(ctx context.Context, e Evento) error
	GetByID(ctx context.Context, id string) (Evento, error)
	List(ctx context.Context, f ListFilter) ([]Evento, error)
	Count(ctx context.Context, f ListFilter) (int, error)
	ListByAnimal(ctx context.Context, animalID string) ([]Evento, error)
	Delete(ctx context.Context, id string) error
}
