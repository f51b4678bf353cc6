package catalogo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrReferenciado = errors.New("referenciado por otras tablas")
)

type Service struct {
	categorias CategoriasRepository
	estados    EstadosRepository
	roles      RolesRepository
	now        func() time.Time
}

func NewService(categorias CategoriasRepository, estados EstadosRepository, roles RolesRepository) *Service {
	return &Service{
		categorias: categorias,
		estados:    estados,
		roles:      roles,
		now:        time.Now,
	}
}

// ---- Categorías ----

type CategoriaInput struct {
	Tipo        string
	Descripcion string
}

func (s *Service) CreateCategoria(ctx context.Context, in CategoriaInput) (Categoria, error) {
	if strings.TrimSpace(in.Tipo) == "" {
		return Categoria{}, ErrInvalidInput
	}

	now := s.now()
	c := Categoria{
		ID:          uuid.NewString(),
		Tipo:        strings.TrimSpace(in.Tipo),
		Descripcion: strings.TrimSpace(in.Descripcion),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.categorias.Create(ctx, c); err != nil {
		return Categoria{}, err
	}
	return c, nil
}

func (s *Service) UpdateCategoria(ctx context.Context, id string, in CategoriaInput) (Categoria, error) {
	if strings.TrimSpace(in.Tipo) == "" {
		return Categoria{}, ErrInvalidInput
	}

	c, err := s.categorias.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Categoria{}, err
	}

	c.Tipo = strings.TrimSpace(in.Tipo)
	c.Descripcion = strings.TrimSpace(in.Descripcion)
	c.UpdatedAt = s.now()

	if err := s.categorias.Update(ctx, c); err != nil {
		return Categoria{}, err
	}
	return c, nil
}

func (s *Service) GetCategoria(ctx context.Context, id string) (Categoria, error) {
	return s.categorias.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) ListCategorias(ctx context.Context) ([]Categoria, error) {
	return s.categorias.List(ctx)
}

func (s *Service) DeleteCategoria(ctx context.Context, id string) error {
	return s.categorias.Delete(ctx, strings.TrimSpace(id))
}

// ---- Estados ----

func (s *Service) CreateEstado(ctx context.Context, nombre string) (Estado, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return Estado{}, ErrInvalidInput
	}

	e := Estado{ID: uuid.NewString(), Nombre: nombre}
	if err := s.estados.Create(ctx, e); err != nil {
		return Estado{}, err
	}
	return e, nil
}

func (s *Service) UpdateEstado(ctx context.Context, id, nombre string) (Estado, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return Estado{}, ErrInvalidInput
	}

	e, err := s.estados.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Estado{}, err
	}
	e.Nombre = nombre

	if err := s.estados.Update(ctx, e); err != nil {
		return Estado{}, err
	}
	return e, nil
}

func (s *Service) GetEstado(ctx context.Context, id string) (Estado, error) {
	return s.estados.GetByID(ctx, strings.TrimSpace(id))
}

func (s *Service) ListEstados(ctx context.Context) ([]Estado, error) {
	return s.estados.List(ctx)
}

func (s *Service) DeleteEstado(ctx context.Context, id string) error {
	return s.estados.Delete(ctx, strings.TrimSpace(id))
}

// IDByNombre resuelve el ID de un estado por su nombre de catálogo.
// Lo consumen el ledger y el workflow de ventas para no depender de IDs mágicos.
func (s *Service) IDByNombre(ctx context.Context, nombre string) (string, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return "", ErrInvalidInput
	}
	e, err := s.estados.GetByNombre(ctx, nombre)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// EnsureEstadosBase siembra los estados que el workflow necesita sí o sí.
// Idempotente: solo crea los que falten.
func (s *Service) EnsureEstadosBase(ctx context.Context) error {
	for _, nombre := range []string{EstadoViva, EstadoVendida, EstadoFallecida} {
		if _, err := s.estados.GetByNombre(ctx, nombre); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.estados.Create(ctx, Estado{ID: uuid.NewString(), Nombre: nombre}); err != nil {
			return err
		}
	}
	return nil
}

// ---- Roles ----

func (s *Service) GetRol(ctx context.Context, id int) (Rol, error) {
	return s.roles.GetByID(ctx, id)
}

func (s *Service) ListRoles(ctx context.Context) ([]Rol, error) {
	return s.roles.List(ctx)
}
