package historial

import (
	"context"
	"errors"
	"strings"
	"time"

	"ganado-api/internal/domain/recordatorios"
	"ganado-api/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrReferencia: el animal o usuario referenciado no existe.
	ErrReferencia = errors.New("el animal o usuario especificado no existe")
)

// NombreLookup resuelve el nombre de un animal para las descripciones
// derivadas. Devuelve "" si no existe.
type NombreLookup interface {
	NombreDe(ctx context.Context, id string) string
}

// EventoReminders mantiene sincronizado el recordatorio derivado de la
// próxima fecha de un evento.
type EventoReminders interface {
	SyncEvento(ctx context.Context, in recordatorios.EventoInput) error
	DeleteDerivadoEvento(ctx context.Context, animalID, eventoID string) error
}

type Service struct {
	repo     Repository
	animales NombreLookup
	recs     EventoReminders
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, animales NombreLookup, recs EventoReminders, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	return &Service{
		repo:     repo,
		animales: animales,
		recs:     recs,
		log:      log,
		now:      time.Now,
	}
}

type CreateInput struct {
	AnimalID        string
	TipoEvento      string
	Descripcion     string
	FechaAplicacion time.Time
	ProximaFecha    *time.Time
	HechoPor        string
}

// Create registra el evento y, si trae próxima fecha, deriva el
// recordatorio después del write (best effort).
func (s *Service) Create(ctx context.Context, in CreateInput) (Evento, error) {
	if strings.TrimSpace(in.AnimalID) == "" || strings.TrimSpace(in.TipoEvento) == "" || in.FechaAplicacion.IsZero() {
		return Evento{}, ErrInvalidInput
	}

	now := s.now()
	e := Evento{
		ID:              uuid.NewString(),
		AnimalID:        strings.TrimSpace(in.AnimalID),
		TipoEvento:      strings.TrimSpace(in.TipoEvento),
		Descripcion:     strings.TrimSpace(in.Descripcion),
		FechaAplicacion: in.FechaAplicacion,
		ProximaFecha:    in.ProximaFecha,
		HechoPor:        strings.TrimSpace(in.HechoPor),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Evento{}, err
	}

	if s.recs != nil && e.ProximaFecha != nil {
		err := s.recs.SyncEvento(ctx, recordatorios.EventoInput{
			EventoID:     e.ID,
			AnimalID:     e.AnimalID,
			AnimalNombre: s.nombreAnimal(ctx, e.AnimalID),
			TipoEvento:   e.TipoEvento,
			ProximaFecha: *e.ProximaFecha,
		})
		if err != nil {
			s.log.Error("no se pudo derivar recordatorio de evento", map[string]any{
				"evento_id": e.ID,
				"error":     err.Error(),
			})
		}
	}

	return s.repo.GetByID(ctx, e.ID)
}

type UpdateInput struct {
	TipoEvento      string
	Descripcion     string
	FechaAplicacion time.Time
	ProximaFecha    *time.Time
	HechoPor        string
}

// Update edita el evento y re-deriva su recordatorio: si el tipo o la
// próxima fecha cambian, el recordatorio existente se actualiza en su
// lugar; si la próxima fecha desaparece, el derivado se borra.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Evento, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(in.TipoEvento) == "" || in.FechaAplicacion.IsZero() {
		return Evento{}, ErrInvalidInput
	}

	anterior, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Evento{}, err
	}

	e := anterior
	e.TipoEvento = strings.TrimSpace(in.TipoEvento)
	e.Descripcion = strings.TrimSpace(in.Descripcion)
	e.FechaAplicacion = in.FechaAplicacion
	e.ProximaFecha = in.ProximaFecha
	if strings.TrimSpace(in.HechoPor) != "" {
		e.HechoPor = strings.TrimSpace(in.HechoPor)
	}
	e.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, e); err != nil {
		return Evento{}, err
	}

	s.resincronizar(ctx, anterior, e)
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Evento, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Evento{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Evento, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Count(ctx context.Context, f ListFilter) (int, error) {
	return s.repo.Count(ctx, f)
}

func (s *Service) ListByAnimal(ctx context.Context, animalID string) ([]Evento, error) {
	return s.repo.ListByAnimal(ctx, animalID)
}

// Delete borra el evento y el recordatorio derivado de su próxima fecha,
// si lo hay.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrInvalidInput
	}

	e, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if s.recs != nil {
		if err := s.recs.DeleteDerivadoEvento(ctx, e.AnimalID, e.ID); err != nil {
			s.log.Error("no se pudo borrar recordatorio derivado", map[string]any{
				"evento_id": e.ID,
				"error":     err.Error(),
			})
		}
	}
	return true, nil
}

func (s *Service) resincronizar(ctx context.Context, anterior, actual Evento) {
	if s.recs == nil {
		return
	}

	// La próxima fecha se quitó: el derivado sobra.
	if actual.ProximaFecha == nil {
		if anterior.ProximaFecha != nil {
			if err := s.recs.DeleteDerivadoEvento(ctx, actual.AnimalID, actual.ID); err != nil {
				s.log.Error("no se pudo borrar recordatorio derivado", map[string]any{
					"evento_id": actual.ID,
					"error":     err.Error(),
				})
			}
		}
		return
	}

	err := s.recs.SyncEvento(ctx, recordatorios.EventoInput{
		EventoID:     actual.ID,
		AnimalID:     actual.AnimalID,
		AnimalNombre: s.nombreAnimal(ctx, actual.AnimalID),
		TipoEvento:   actual.TipoEvento,
		ProximaFecha: *actual.ProximaFecha,
	})
	if err != nil {
		s.log.Error("no se pudo re-derivar recordatorio de evento", map[string]any{
			"evento_id": actual.ID,
			"error":     err.Error(),
		})
	}
}

func (s *Service) nombreAnimal(ctx context.Context, id string) string {
	if s.animales == nil {
		return ""
	}
	return s.animales.NombreDe(ctx, id)
}
