package estadoanimal

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
	// ErrEstadoExistente: el animal ya tiene su fila de estado.
	ErrEstadoExistente = errors.New("el animal ya tiene un estado registrado")
	// ErrReferencia: el animal o el estado referenciado no existe.
	ErrReferencia = errors.New("el animal o estado especificado no existe")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateInput struct {
	AnimalID           string
	EstadoID           string
	FechaFallecimiento *time.Time
}

// Create registra la fila de estado de un animal que todavía no tiene una.
// La creación normal pasa por el alta del animal; este camino existe para
// animales migrados sin estado.
func (s *Service) Create(ctx context.Context, in CreateInput) (EstadoAnimal, error) {
	if strings.TrimSpace(in.AnimalID) == "" || strings.TrimSpace(in.EstadoID) == "" {
		return EstadoAnimal{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByAnimal(ctx, in.AnimalID); err == nil {
		return EstadoAnimal{}, ErrEstadoExistente
	} else if !errors.Is(err, ErrNotFound) {
		return EstadoAnimal{}, err
	}

	now := s.now()
	e := EstadoAnimal{
		ID:                 uuid.NewString(),
		AnimalID:           strings.TrimSpace(in.AnimalID),
		EstadoID:           strings.TrimSpace(in.EstadoID),
		FechaFallecimiento: in.FechaFallecimiento,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return EstadoAnimal{}, err
	}
	return s.repo.GetByID(ctx, e.ID)
}

type UpdateInput struct {
	EstadoID           string
	FechaFallecimiento *time.Time
}

// Update cambia el estado vigente de la fila identificada por id.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (EstadoAnimal, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(in.EstadoID) == "" {
		return EstadoAnimal{}, ErrInvalidInput
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return EstadoAnimal{}, err
	}

	e.EstadoID = strings.TrimSpace(in.EstadoID)
	e.FechaFallecimiento = in.FechaFallecimiento
	e.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, e); err != nil {
		return EstadoAnimal{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// SetState cambia el estado vigente del animal (no de la fila): el
// camino administrativo de PUT /animales/{id}/estado.
func (s *Service) SetState(ctx context.Context, animalID, estadoID string, fechaFallecimiento *time.Time) (EstadoAnimal, error) {
	if strings.TrimSpace(animalID) == "" || strings.TrimSpace(estadoID) == "" {
		return EstadoAnimal{}, ErrInvalidInput
	}

	e, err := s.repo.GetByAnimal(ctx, animalID)
	if err != nil {
		return EstadoAnimal{}, err
	}

	e.EstadoID = strings.TrimSpace(estadoID)
	e.FechaFallecimiento = fechaFallecimiento
	e.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, e); err != nil {
		return EstadoAnimal{}, err
	}
	return s.repo.GetByID(ctx, e.ID)
}

// GetCurrentState devuelve la fila de estado vigente del animal.
func (s *Service) GetCurrentState(ctx context.Context, animalID string) (EstadoAnimal, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return EstadoAnimal{}, ErrInvalidInput
	}
	return s.repo.GetByAnimal(ctx, animalID)
}

func (s *Service) GetByID(ctx context.Context, id string) (EstadoAnimal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return EstadoAnimal{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]EstadoAnimal, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Count(ctx context.Context, f ListFilter) (int, error) {
	return s.repo.Count(ctx, f)
}
