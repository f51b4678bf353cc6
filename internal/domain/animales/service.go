package animales

import (
	"context"
	"errors"
	"strings"
	"time"

	"ganado-api/internal/domain/catalogo"
	"ganado-api/internal/domain/recordatorios"
	"ganado-api/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrReferencia: la categoría referenciada no existe.
	ErrReferencia = errors.New("la categoría especificada no existe")
	// ErrReferenciado: el animal tiene ventas asociadas y no puede borrarse.
	ErrReferenciado = errors.New("no se puede eliminar: el animal tiene registros asociados")
)

// EstadoResolver traduce el nombre de un estado del catálogo a su ID.
type EstadoResolver interface {
	IDByNombre(ctx context.Context, nombre string) (string, error)
}

// PartoReminders deriva el recordatorio de parto de una hembra preñada.
type PartoReminders interface {
	SyncParto(ctx context.Context, in recordatorios.PartoInput) error
}

type Service struct {
	repo    Repository
	estados EstadoResolver
	recs    PartoReminders
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, estados EstadoResolver, recs PartoReminders, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	return &Service{
		repo:    repo,
		estados: estados,
		recs:    recs,
		log:     log,
		now:     time.Now,
	}
}

type CreateInput struct {
	Nombre string
	Sexo   string
	Color  string
	PesoKg float64
	Raza   string

	FechaNacimiento *time.Time
	FechaIngreso    *time.Time

	EstaPreniada       bool
	FechaMonta         *time.Time
	FechaEstimadaParto *time.Time

	CategoriaID string
	ImagenURL   string
}

// Create da de alta el animal junto con su estado inicial "viva", en una
// sola transacción. Si viene preñada con fecha estimada de parto, deriva
// el recordatorio después del commit (best effort).
func (s *Service) Create(ctx context.Context, in CreateInput) (Animal, error) {
	if err := validarDatos(in.Nombre, in.Sexo, in.EstaPreniada); err != nil {
		return Animal{}, err
	}

	estadoVivaID, err := s.estados.IDByNombre(ctx, catalogo.EstadoViva)
	if err != nil {
		return Animal{}, err
	}

	now := s.now()
	ingreso := now
	if in.FechaIngreso != nil {
		ingreso = *in.FechaIngreso
	}

	a := Animal{
		ID:                 uuid.NewString(),
		Nombre:             strings.TrimSpace(in.Nombre),
		Sexo:               strings.ToLower(strings.TrimSpace(in.Sexo)),
		Color:              strings.TrimSpace(in.Color),
		PesoKg:             in.PesoKg,
		Raza:               strings.TrimSpace(in.Raza),
		FechaNacimiento:    in.FechaNacimiento,
		FechaIngreso:       ingreso,
		EstaPreniada:       in.EstaPreniada,
		FechaMonta:         in.FechaMonta,
		FechaEstimadaParto: in.FechaEstimadaParto,
		CategoriaID:        strings.TrimSpace(in.CategoriaID),
		ImagenURL:          strings.TrimSpace(in.ImagenURL),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.CreateWithEstado(ctx, a, estadoVivaID); err != nil {
		return Animal{}, err
	}

	s.sincronizarParto(ctx, a)
	return s.repo.GetByID(ctx, a.ID)
}

type UpdateInput struct {
	Nombre string
	Sexo   string
	Color  string
	PesoKg float64
	Raza   string

	FechaNacimiento *time.Time
	FechaIngreso    *time.Time

	EstaPreniada       bool
	FechaMonta         *time.Time
	FechaEstimadaParto *time.Time

	CategoriaID string
	ImagenURL   string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrInvalidInput
	}
	if err := validarDatos(in.Nombre, in.Sexo, in.EstaPreniada); err != nil {
		return Animal{}, err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	a.Nombre = strings.TrimSpace(in.Nombre)
	a.Sexo = strings.ToLower(strings.TrimSpace(in.Sexo))
	a.Color = strings.TrimSpace(in.Color)
	a.PesoKg = in.PesoKg
	a.Raza = strings.TrimSpace(in.Raza)
	a.FechaNacimiento = in.FechaNacimiento
	if in.FechaIngreso != nil {
		a.FechaIngreso = *in.FechaIngreso
	}
	a.EstaPreniada = in.EstaPreniada
	a.FechaMonta = in.FechaMonta
	a.FechaEstimadaParto = in.FechaEstimadaParto
	a.CategoriaID = strings.TrimSpace(in.CategoriaID)
	a.ImagenURL = strings.TrimSpace(in.ImagenURL)
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}

	s.sincronizarParto(ctx, a)
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Animal, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Count(ctx context.Context, f ListFilter) (int, error) {
	return s.repo.Count(ctx, f)
}

func (s *Service) ListDetalles(ctx context.Context, f ListFilter) ([]AnimalDetalle, error) {
	return s.repo.ListDetalles(ctx, f)
}

func (s *Service) GetDetalle(ctx context.Context, id string) (AnimalDetalle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AnimalDetalle{}, ErrInvalidInput
	}
	return s.repo.GetDetalle(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrInvalidInput
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// NombreDe devuelve el nombre del animal, o "" si no existe. Pensado para
// enriquecer descripciones derivadas sin propagar el error.
func (s *Service) NombreDe(ctx context.Context, id string) string {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ""
	}
	return a.Nombre
}

// sincronizarParto corre fuera de la transacción del write primario: un
// fallo acá se loguea y no revierte el alta/edición del animal.
func (s *Service) sincronizarParto(ctx context.Context, a Animal) {
	if s.recs == nil || !a.EstaPreniada || a.FechaEstimadaParto == nil {
		return
	}
	err := s.recs.SyncParto(ctx, recordatorios.PartoInput{
		AnimalID:           a.ID,
		AnimalNombre:       a.Nombre,
		FechaEstimadaParto: *a.FechaEstimadaParto,
	})
	if err != nil {
		s.log.Error("no se pudo derivar recordatorio de parto", map[string]any{
			"animal_id": a.ID,
			"error":     err.Error(),
		})
	}
}

func validarDatos(nombre, sexo string, preniada bool) error {
	if strings.TrimSpace(nombre) == "" {
		return ErrInvalidInput
	}
	switch strings.ToLower(strings.TrimSpace(sexo)) {
	case "macho":
		if preniada {
			return ErrInvalidInput
		}
	case "hembra":
	default:
		return ErrInvalidInput
	}
	return nil
}
