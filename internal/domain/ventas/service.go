package ventas

import (
	"context"
	"errors"
	"strings"
	"time"

	"ganado-api/internal/domain/catalogo"
	"ganado-api/internal/domain/estadoanimal"
	"ganado-api/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrVentaDuplicada: el animal ya fue vendido.
	ErrVentaDuplicada = errors.New("ya existe una venta para este animal")
	// ErrAnimalNoViva: el estado vigente del animal no permite venderlo.
	ErrAnimalNoViva = errors.New("el animal no está en estado \"viva\"")
	// ErrEstadoInconsistente: la venta no pudo dejar el estado en
	// "vendida"; la transacción se revirtió entera.
	ErrEstadoInconsistente = errors.New("no se pudo actualizar el estado del animal")
	// ErrReferencia: el animal o usuario referenciado no existe.
	ErrReferencia = errors.New("el animal o usuario especificado no existe")
)

// EstadoResolver traduce el nombre de un estado del catálogo a su ID.
type EstadoResolver interface {
	IDByNombre(ctx context.Context, nombre string) (string, error)
}

// EstadoActual consulta la fila de estado vigente de un animal.
type EstadoActual interface {
	GetCurrentState(ctx context.Context, animalID string) (estadoanimal.EstadoAnimal, error)
}

type Service struct {
	repo    Repository
	estados EstadoResolver
	ledger  EstadoActual
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, estados EstadoResolver, ledger EstadoActual, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop{}
	}
	return &Service{
		repo:    repo,
		estados: estados,
		ledger:  ledger,
		log:     log,
		now:     time.Now,
	}
}

type CreateInput struct {
	AnimalID   string
	FechaVenta *time.Time

	PrecioUnitario     float64
	Cantidad           int
	Subtotal           float64 // 0 = calcular PrecioUnitario * Cantidad
	ImpuestoPorcentaje float64

	TipoVenta     string
	Comprador     string
	Vendedor      string
	MetodoPago    string
	RegistradoPor string
	Observaciones string
}

// Create registra la venta de un animal vivo. La inserción de la venta y
// el pase a "vendida" son una sola transacción: o quedan las dos cosas o
// ninguna.
func (s *Service) Create(ctx context.Context, in CreateInput) (Venta, error) {
	if strings.TrimSpace(in.AnimalID) == "" || in.PrecioUnitario <= 0 {
		return Venta{}, ErrInvalidInput
	}
	if in.Cantidad < 0 || in.ImpuestoPorcentaje < 0 || in.Subtotal < 0 {
		return Venta{}, ErrInvalidInput
	}

	animalID := strings.TrimSpace(in.AnimalID)

	// Chequeo temprano de duplicado; la constraint UNIQUE cubre la
	// carrera entre el chequeo y el insert.
	if _, err := s.repo.GetByAnimal(ctx, animalID); err == nil {
		return Venta{}, ErrVentaDuplicada
	} else if !errors.Is(err, ErrNotFound) {
		return Venta{}, err
	}

	estado, err := s.ledger.GetCurrentState(ctx, animalID)
	if err != nil {
		if errors.Is(err, estadoanimal.ErrNotFound) {
			return Venta{}, ErrReferencia
		}
		return Venta{}, err
	}
	if estado.EstadoNombre != catalogo.EstadoViva {
		return Venta{}, ErrAnimalNoViva
	}

	estadoVendidaID, err := s.estados.IDByNombre(ctx, catalogo.EstadoVendida)
	if err != nil {
		return Venta{}, err
	}

	now := s.now()
	fechaVenta := now
	if in.FechaVenta != nil {
		fechaVenta = *in.FechaVenta
	}

	v := Venta{
		ID:                 uuid.NewString(),
		AnimalID:           animalID,
		FechaVenta:         fechaVenta,
		PrecioUnitario:     in.PrecioUnitario,
		Cantidad:           in.Cantidad,
		Subtotal:           in.Subtotal,
		ImpuestoPorcentaje: in.ImpuestoPorcentaje,
		TipoVenta:          strings.TrimSpace(in.TipoVenta),
		Comprador:          strings.TrimSpace(in.Comprador),
		Vendedor:           strings.TrimSpace(in.Vendedor),
		MetodoPago:         strings.TrimSpace(in.MetodoPago),
		RegistradoPor:      strings.TrimSpace(in.RegistradoPor),
		Observaciones:      strings.TrimSpace(in.Observaciones),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	calcularMontos(&v)

	if err := s.repo.CreateConEstado(ctx, v, estadoVendidaID); err != nil {
		return Venta{}, err
	}

	s.log.Info("venta registrada", map[string]any{
		"venta_id":  v.ID,
		"animal_id": v.AnimalID,
		"total":     v.Total,
	})
	return s.repo.GetByID(ctx, v.ID)
}

type UpdateInput struct {
	FechaVenta *time.Time

	PrecioUnitario     float64
	Cantidad           int
	Subtotal           float64
	ImpuestoPorcentaje float64

	TipoVenta     string
	Comprador     string
	Vendedor      string
	MetodoPago    string
	Observaciones string
}

// Update corrige los datos comerciales de una venta existente. El animal
// y su estado no cambian: para deshacer una venta está Delete.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Venta, error) {
	id = strings.TrimSpace(id)
	if id == "" || in.PrecioUnitario <= 0 || in.Cantidad < 0 || in.ImpuestoPorcentaje < 0 || in.Subtotal < 0 {
		return Venta{}, ErrInvalidInput
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Venta{}, err
	}

	if in.FechaVenta != nil {
		v.FechaVenta = *in.FechaVenta
	}
	v.PrecioUnitario = in.PrecioUnitario
	v.Cantidad = in.Cantidad
	v.Subtotal = in.Subtotal
	v.ImpuestoPorcentaje = in.ImpuestoPorcentaje
	v.TipoVenta = strings.TrimSpace(in.TipoVenta)
	v.Comprador = strings.TrimSpace(in.Comprador)
	v.Vendedor = strings.TrimSpace(in.Vendedor)
	v.MetodoPago = strings.TrimSpace(in.MetodoPago)
	v.Observaciones = strings.TrimSpace(in.Observaciones)
	v.UpdatedAt = s.now()
	calcularMontos(&v)

	if err := s.repo.Update(ctx, v); err != nil {
		return Venta{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Venta, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Venta{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByAnimal(ctx context.Context, animalID string) (Venta, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return Venta{}, ErrInvalidInput
	}
	return s.repo.GetByAnimal(ctx, animalID)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Venta, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Count(ctx context.Context, f ListFilter) (int, error) {
	return s.repo.Count(ctx, f)
}

// Delete deshace la venta: borra el registro y devuelve al animal a
// "viva" en la misma transacción.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrInvalidInput
	}

	v, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	estadoVivaID, err := s.estados.IDByNombre(ctx, catalogo.EstadoViva)
	if err != nil {
		return false, err
	}

	if err := s.repo.DeleteConEstado(ctx, v.ID, v.AnimalID, estadoVivaID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	s.log.Info("venta anulada", map[string]any{
		"venta_id":  v.ID,
		"animal_id": v.AnimalID,
	})
	return true, nil
}

// calcularMontos completa Cantidad, Subtotal, Impuesto y Total a partir
// de lo que haya mandado el cliente.
func calcularMontos(v *Venta) {
	if v.Cantidad == 0 {
		v.Cantidad = 1
	}
	if v.Subtotal == 0 {
		v.Subtotal = v.PrecioUnitario * float64(v.Cantidad)
	}
	v.Impuesto = v.Subtotal * v.ImpuestoPorcentaje / 100
	v.Total = v.Subtotal + v.Impuesto
}
