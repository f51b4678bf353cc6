package usuarios

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (Usuario, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Usuario{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Usuario, error) {
	return s.repo.List(ctx)
}

// NombreDe devuelve el nombre para mostrar, o cadena vacía si no existe.
// Se usa para enriquecer ventas e historial sin fallar el request.
func (s *Service) NombreDe(ctx context.Context, id string) string {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return u.Nombre
}
