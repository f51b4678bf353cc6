package catalogo

import "context"

type CategoriasRepository interface {
	Create(ctx context.Context, c Categoria) error
	Update(ctx context.Context, c Categoria) error
	GetByID(ctx context.Context, id string) (Categoria, error)
	List(ctx context.Context) ([]Categoria, error)
	Delete(ctx context.Context, id string) error
}

type EstadosRepository interface {
	Create(ctx context.Context, e Estado) error
	Update(ctx context.Context, e Estado) error
	GetByID(ctx context.Context, id string) (Estado, error)
	GetByNombre(ctx context.Context, nombre string) (Estado, error)
	List(ctx context.Context) ([]Estado, error)
	Delete(ctx context.Context, id string) error
}

type RolesRepository interface {
	GetByID(ctx context.Context, id int) (Rol, error)
	List(ctx context.Context) ([]Rol, error)
}
