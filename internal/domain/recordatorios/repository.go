package recordatorios

import "context"

type Repository interface {
	Create(ctx context.Context, rec Recordatorio) error
	Update(ctx context.Context, rec Recordatorio) error
	UpdateEstado(ctx context.Context, id string, estado Status) error
	GetByID(ctx context.Context, id string) (Recordatorio, error)
	List(ctx context.Context, f ListFilter) ([]Recordatorio, error)
	Count(ctx context.Context, f ListFilter) (int, error)
	ListByAnimal(ctx context.Context, animalID string) ([]Recordatorio, error)
	Delete(ctx context.Context, id string) error
}
