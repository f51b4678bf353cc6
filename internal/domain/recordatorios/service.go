package recordatorios

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ganado-api/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrEstadoInvalid = errors.New("estado inválido")
	// ErrReferencia: el animal referenciado no existe (FK o chequeo del repo).
	ErrReferencia = errors.New("el animal especificado no existe")
)

// TituloParto es la clave de deduplicación del recordatorio de preñez.
const TituloParto = "Parto estimado"

// TituloEvento arma el título derivado de un evento veterinario.
// Es determinista: el mismo tipo produce siempre la misma clave.
func TituloEvento(tipoEvento string) string {
	return "Evento veterinario: " + strings.TrimSpace(tipoEvento)
}

// FormatFechaDMY formatea DD-MM-YYYY con cero a la izquierda,
// independiente del locale del proceso.
func FormatFechaDMY(t time.Time) string {
	return fmt.Sprintf("%02d-%02d-%04d", t.Day(), int(t.Month()), t.Year())
}

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// ---- CRUD manual ----

type CreateInput struct {
	AnimalID    string
	Titulo      string
	Descripcion string
	Fecha       time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Recordatorio, error) {
	if strings.TrimSpace(in.AnimalID) == "" || strings.TrimSpace(in.Titulo) == "" || in.Fecha.IsZero() {
		return Recordatorio{}, ErrInvalidInput
	}

	now := s.now()
	rec := Recordatorio{
		ID:          uuid.NewString(),
		AnimalID:    strings.TrimSpace(in.AnimalID),
		Titulo:      strings.TrimSpace(in.Titulo),
		Descripcion: strings.TrimSpace(in.Descripcion),
		Fecha:       diaDe(in.Fecha),
		Estado:      StatusPendiente,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Recordatorio{}, err
	}
	return s.repo.GetByID(ctx, rec.ID)
}

type UpdateInput struct {
	Titulo      string
	Descripcion string
	Fecha       time.Time
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Recordatorio, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(in.Titulo) == "" || in.Fecha.IsZero() {
		return Recordatorio{}, ErrInvalidInput
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Recordatorio{}, err
	}

	rec.Titulo = strings.TrimSpace(in.Titulo)
	rec.Descripcion = strings.TrimSpace(in.Descripcion)
	rec.Fecha = diaDe(in.Fecha)
	rec.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return Recordatorio{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateEstado marca el recordatorio como hecho o pendiente.
func (s *Service) UpdateEstado(ctx context.Context, id string, estado Status) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	if !ValidStatus(estado) {
		return ErrEstadoInvalid
	}
	return s.repo.UpdateEstado(ctx, id, estado)
}

func (s *Service) GetByID(ctx context.Context, id string) (Recordatorio, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Recordatorio{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Recordatorio, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Count(ctx context.Context, f ListFilter) (int, error) {
	return s.repo.Count(ctx, f)
}

func (s *Service) ListByAnimal(ctx context.Context, animalID string) ([]Recordatorio, error) {
	return s.repo.ListByAnimal(ctx, animalID)
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

// ---- Derivación ----
//
// Las operaciones Sync* corren DESPUÉS del write primario, fuera de su
// transacción: si fallan se registra el error y el write primario queda.
// Son idempotentes: cada fuente (animal preñado, evento veterinario) se
// enlaza con su derivado por origen, nunca por título reconstruido.

type PartoInput struct {
	AnimalID           string
	AnimalNombre       string
	FechaEstimadaParto time.Time
}

// SyncParto crea el recordatorio de parto si el animal no tiene ya uno
// derivado. Llamarlo dos veces con el mismo input produce exactamente
// una fila.
func (s *Service) SyncParto(ctx context.Context, in PartoInput) error {
	if strings.TrimSpace(in.AnimalID) == "" || in.FechaEstimadaParto.IsZero() {
		return ErrInvalidInput
	}

	if _, ok, err := s.buscarDerivado(ctx, in.AnimalID, OrigenParto, in.AnimalID); err != nil || ok {
		return err
	}

	fecha := diaDe(in.FechaEstimadaParto)
	now := s.now()
	rec := Recordatorio{
		ID:          uuid.NewString(),
		AnimalID:    strings.TrimSpace(in.AnimalID),
		Titulo:      TituloParto,
		Descripcion: fmt.Sprintf("Parto estimado para %q el %s", in.AnimalNombre, FormatFechaDMY(fecha)),
		Fecha:       fecha,
		Estado:      StatusPendiente,
		OrigenTipo:  OrigenParto,
		OrigenID:    strings.TrimSpace(in.AnimalID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return err
	}

	s.log.Info("recordatorio de parto derivado", map[string]any{
		"animal_id": rec.AnimalID,
		"fecha":     FormatFechaDMY(fecha),
	})
	return nil
}

type EventoInput struct {
	EventoID     string
	AnimalID     string
	AnimalNombre string
	TipoEvento   string
	ProximaFecha time.Time
}

// SyncEvento mantiene el recordatorio derivado de un evento veterinario:
// si el evento ya tiene uno lo actualiza en su lugar (título, descripción
// y fecha re-derivados, estado preservado); si no, lo crea.
func (s *Service) SyncEvento(ctx context.Context, in EventoInput) error {
	if strings.TrimSpace(in.EventoID) == "" || strings.TrimSpace(in.AnimalID) == "" ||
		strings.TrimSpace(in.TipoEvento) == "" || in.ProximaFecha.IsZero() {
		return ErrInvalidInput
	}

	titulo := TituloEvento(in.TipoEvento)
	fecha := diaDe(in.ProximaFecha)

	if rec, ok, err := s.buscarDerivado(ctx, in.AnimalID, OrigenEvento, in.EventoID); err != nil {
		return err
	} else if ok {
		rec.Titulo = titulo
		rec.Descripcion = descripcionEvento(in.AnimalNombre, in.TipoEvento, fecha)
		rec.Fecha = fecha
		// estado se preserva tal cual (pendiente/hecho)
		rec.UpdatedAt = s.now()
		return s.repo.Update(ctx, rec)
	}

	now := s.now()
	rec := Recordatorio{
		ID:          uuid.NewString(),
		AnimalID:    strings.TrimSpace(in.AnimalID),
		Titulo:      titulo,
		Descripcion: descripcionEvento(in.AnimalNombre, in.TipoEvento, fecha),
		Fecha:       fecha,
		Estado:      StatusPendiente,
		OrigenTipo:  OrigenEvento,
		OrigenID:    strings.TrimSpace(in.EventoID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return err
	}

	s.log.Info("recordatorio de evento derivado", map[string]any{
		"animal_id": rec.AnimalID,
		"titulo":    titulo,
	})
	return nil
}

// DeleteDerivadoEvento borra el recordatorio derivado de un evento
// veterinario, si lo hay.
func (s *Service) DeleteDerivadoEvento(ctx context.Context, animalID, eventoID string) error {
	if strings.TrimSpace(animalID) == "" || strings.TrimSpace(eventoID) == "" {
		return nil
	}

	rec, ok, err := s.buscarDerivado(ctx, animalID, OrigenEvento, eventoID)
	if err != nil || !ok {
		return err
	}
	if err := s.repo.Delete(ctx, rec.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// buscarDerivado ubica el recordatorio derivado de una fuente concreta.
func (s *Service) buscarDerivado(ctx context.Context, animalID, origenTipo, origenID string) (Recordatorio, bool, error) {
	existentes, err := s.repo.ListByAnimal(ctx, animalID)
	if err != nil {
		return Recordatorio{}, false, err
	}
	for _, r := range existentes {
		if r.OrigenTipo == origenTipo && r.OrigenID == origenID {
			return r, true, nil
		}
	}
	return Recordatorio{}, false, nil
}

func descripcionEvento(animalNombre, tipoEvento string, fecha time.Time) string {
	return fmt.Sprintf("Próximo evento para %q: %s el %s", animalNombre, strings.TrimSpace(tipoEvento), FormatFechaDMY(fecha))
}

// diaDe trunca a medianoche UTC: los recordatorios se comparan por día.
func diaDe(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
