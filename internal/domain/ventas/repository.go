package ventas

import "context"

type Repository interface {
	// CreateConEstado inserta la venta y pasa el estado del animal a
	// "vendida" en la misma transacción. Si el animal ya tiene una venta
	// devuelve ErrVentaDuplicada; si el cambio de estado no afecta
	// ninguna fila, revierte todo y devuelve ErrEstadoInconsistente.
	CreateConEstado(ctx context.Context, v Venta, estadoVendidaID string) error

	// DeleteConEstado borra la venta y devuelve el estado del animal a
	// "viva" en la misma transacción.
	DeleteConEstado(ctx context.Context, id, animalID, estadoVivaID string) error

	Update(ctx context.Context, v Venta) error
	GetByID(ctx context.Context, id string) (Venta, error)
	GetByAnimal(ctx context.Context, animalID string) (Venta, error)
	List(ctx context.Context, f ListFilter) ([]Venta, error)
	Count(ctx context.Context, f ListFilter) (int, error)
}
