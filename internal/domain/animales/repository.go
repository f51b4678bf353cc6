package animales

import "context"

type Repository interface {
	// CreateWithEstado inserta el animal y su fila de estado inicial en la
	// misma transacción: nunca queda un animal sin estado.
	CreateWithEstado(ctx context.Context, a Animal, estadoID string) error
	Update(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)
	List(ctx context.Context, f ListFilter) ([]Animal, error)
	Count(ctx context.Context, f ListFilter) (int, error)
	ListDetalles(ctx context.Context, f ListFilter) ([]AnimalDetalle, error)
	GetDetalle(ctx context.Context, id string) (AnimalDetalle, error)
	Delete(ctx context.Context, id string) error
}
