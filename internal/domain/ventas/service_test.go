package ventas

import (
	"context"
	"errors"
	"testing"
	"time"

	"ganado-api/internal/domain/catalogo"
	"ganado-api/internal/domain/estadoanimal"
)

// -------------------------
// Test doubles
// -------------------------

const (
	idViva    = "estado-viva"
	idVendida = "estado-vendida"
)

type testResolver struct{}

func (testResolver) IDByNombre(_ context.Context, nombre string) (string, error) {
	switch nombre {
	case catalogo.EstadoViva:
		return idViva, nil
	case catalogo.EstadoVendida:
		return idVendida, nil
	}
	return "", catalogo.ErrNotFound
}

// testLedger mapea animal => nombre de estado vigente.
type testLedger struct {
	estados map[string]string
}

func (l *testLedger) GetCurrentState(_ context.Context, animalID string) (estadoanimal.EstadoAnimal, error) {
	nombre, ok := l.estados[animalID]
	if !ok {
		return estadoanimal.EstadoAnimal{}, estadoanimal.ErrNotFound
	}
	return estadoanimal.EstadoAnimal{AnimalID: animalID, EstadoNombre: nombre}, nil
}

// testRepo guarda ventas y simula el flip de estado transaccional sobre
// el mismo testLedger.
type testRepo struct {
	byID   map[string]Venta
	ledger *testLedger

	// si true, el UPDATE de estado "no afecta filas"
	romperFlip bool
}

func newTestRepo(ledger *testLedger) *testRepo {
	return &testRepo{byID: map[string]Venta{}, ledger: ledger}
}

func (r *testRepo) CreateConEstado(_ context.Context, v Venta, estadoVendidaID string) error {
	for _, existing := range r.byID {
		if existing.AnimalID == v.AnimalID {
			return ErrVentaDuplicada
		}
	}
	if r.romperFlip {
		// transacción revertida: no queda ni venta ni cambio de estado
		return ErrEstadoInconsistente
	}
	r.byID[v.ID] = v
	if estadoVendidaID == idVendida {
		r.ledger.estados[v.AnimalID] = catalogo.EstadoVendida
	}
	return nil
}

func (r *testRepo) DeleteConEstado(_ context.Context, id, animalID, estadoVivaID string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	if estadoVivaID == idViva {
		r.ledger.estados[animalID] = catalogo.EstadoViva
	}
	return nil
}

func (r *testRepo) Update(_ context.Context, v Venta) error {
	if _, ok := r.byID[v.ID]; !ok {
		return ErrNotFound
	}
	r.byID[v.ID] = v
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Venta, error) {
	v, ok := r.byID[id]
	if !ok {
		return Venta{}, ErrNotFound
	}
	return v, nil
}

func (r *testRepo) GetByAnimal(_ context.Context, animalID string) (Venta, error) {
	for _, v := range r.byID {
		if v.AnimalID == animalID {
			return v, nil
		}
	}
	return Venta{}, ErrNotFound
}

func (r *testRepo) List(_ context.Context, f ListFilter) ([]Venta, error) {
	out := make([]Venta, 0)
	for _, v := range r.byID {
		if f.AnimalID != "" && v.AnimalID != f.AnimalID {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *testRepo) Count(ctx context.Context, f ListFilter) (int, error) {
	items, _ := r.List(ctx, f)
	return len(items), nil
}

func newTestService(ledger *testLedger) (*Service, *testRepo) {
	repo := newTestRepo(ledger)
	svc := NewService(repo, testResolver{}, ledger, nil)
	svc.now = func() time.Time { return time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_CalculaMontosYMarcaVendida(t *testing.T) {
	ledger := &testLedger{estados: map[string]string{"animal-1": catalogo.EstadoViva}}
	svc, repo := newTestService(ledger)

	v, err := svc.Create(context.Background(), CreateInput{
		AnimalID:           "animal-1",
		PrecioUnitario:     100,
		Cantidad:           2,
		ImpuestoPorcentaje: 10,
		TipoVenta:          "remate",
		Comprador:          "Estancia Sur",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if v.Subtotal != 200 {
		t.Fatalf("expected subtotal 200, got %v", v.Subtotal)
	}
	if v.Impuesto != 20 {
		t.Fatalf("expected impuesto 20, got %v", v.Impuesto)
	}
	if v.Total != 220 {
		t.Fatalf("expected total 220, got %v", v.Total)
	}
	if v.TipoVenta != "remate" {
		t.Fatalf("expected tipo_venta remate, got %q", v.TipoVenta)
	}
	if ledger.estados["animal-1"] != catalogo.EstadoVendida {
		t.Fatalf("expected estado vendida after sale, got %s", ledger.estados["animal-1"])
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 venta stored, got %d", len(repo.byID))
	}
}

func TestService_Create_CantidadDefaultYSubtotalExplicito(t *testing.T) {
	ledger := &testLedger{estados: map[string]string{"animal-1": catalogo.EstadoViva}}
	svc, _ := newTestService(ledger)

	v, err := svc.Create(context.Background(), CreateInput{
		AnimalID:       "animal-1",
		PrecioUnitario: 100,
		Subtotal:       90, // precio negociado distinto del cálculo
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if v.Cantidad != 1 {
		t.Fatalf("expected cantidad default 1, got %d", v.Cantidad)
	}
	if v.Subtotal != 90 || v.Total != 90 {
		t.Fatalf("expected subtotal explícito respetado, got subtotal=%v total=%v", v.Subtotal, v.Total)
	}
}

func TestService_Create_RechazaVentaDuplicada(t *testing.T) {
	ledger := &testLedger{estados: map[string]string{"animal-1": catalogo.EstadoViva}}
	svc, _ := newTestService(ledger)

	if _, err := svc.Create(context.Background(), CreateInput{
		AnimalID: "animal-1", PrecioUnitario: 100,
	}); err != nil {
		t.Fatalf("Create #1 error: %v", err)
	}

	// el animal quedó vendida: el chequeo de duplicado gana al de estado
	_, err := svc.Create(context.Background(), CreateInput{
		AnimalID: "animal-1", PrecioUnitario: 200,
	})
	if !errors.Is(err, ErrVentaDuplicada) {
		t.Fatalf("expected ErrVentaDuplicada, got %v", err)
	}
}

func TestService_Create_RechazaAnimalNoViva(t *testing.T) {
	ledger := &testLedger{estados: map[string]string{"animal-1": catalogo.EstadoFallecida}}
	svc, repo := newTestService(ledger)

	_, err := svc.Create(context.Background(), CreateInput{
		AnimalID: "animal-1", PrecioUnitario: 100,
	})
	if !errors.Is(err, ErrAnimalNoViva) {
		t.Fatalf("expected ErrAnimalNoViva, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("expected no venta stored, got %d", len(repo.byID))
	}
}

func TestService_Create_AnimalSinEstadoEsReferenciaRota(t *testing.T) {
	ledger := &testLedger{estados: map[string]string{}}
	svc, _ := newTestService(ledger)

	_, err := svc.Create(context.Background(), CreateInput{
		AnimalID: "fantasma", PrecioUnitario: 100,
	})
	if !errors.Is(err, ErrReferencia) {
		t.Fatalf("expected ErrReferencia, got %v", err)
	}
}

func TestService_Create_FlipFallidoNoDejaVenta(t *testing.T) {
	ledger := &testLedger{estados: map[string]string{"animal-1": catalogo.EstadoViva}}
	svc, repo := newTestService(ledger)
	repo.romperFlip = true

	_, err := svc.Create(context.Background(), CreateInput{
		AnimalID: "animal-1", PrecioUnitario: 100,
	})
	if !errors.Is(err, ErrEstadoInconsistente) {
		t.Fatalf("expected ErrEstadoInconsistente, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("expected rollback (no venta), got %d rows", len(repo.byID))
	}
	if ledger.estados["animal-1"] != catalogo.EstadoViva {
		t.Fatalf("expected estado intacto (viva), got %s", ledger.estados["animal-1"])
	}
}

func TestService_Delete_RevierteEstadoYEsIdempotente(t *testing.T) {
	ledger := &testLedger{estados: map[string]string{"animal-1": catalogo.EstadoViva}}
	svc, _ := newTestService(ledger)

	v, err := svc.Create(context.Background(), CreateInput{
		AnimalID: "animal-1", PrecioUnitario: 100,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if ledger.estados["animal-1"] != catalogo.EstadoVendida {
		t.Fatalf("precondition: expected vendida")
	}

	deleted, err := svc.Delete(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if !deleted {
		t.Fatalf("expected deleted=true")
	}
	if ledger.estados["animal-1"] != catalogo.EstadoViva {
		t.Fatalf("expected estado revertido a viva, got %s", ledger.estados["animal-1"])
	}

	deleted, err = svc.Delete(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("Delete #2 error: %v", err)
	}
	if deleted {
		t.Fatalf("expected deleted=false on second delete")
	}
}

func TestService_Update_RecalculaSinTocarEstado(t *testing.T) {
	ledger := &testLedger{estados: map[string]string{"animal-1": catalogo.EstadoViva}}
	svc, _ := newTestService(ledger)

	v, err := svc.Create(context.Background(), CreateInput{
		AnimalID: "animal-1", PrecioUnitario: 100, ImpuestoPorcentaje: 10,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.Update(context.Background(), v.ID, UpdateInput{
		PrecioUnitario:     150,
		Cantidad:           2,
		ImpuestoPorcentaje: 0,
		TipoVenta:          "particular",
		Comprador:          "Otro comprador",
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Subtotal != 300 || updated.Total != 300 {
		t.Fatalf("expected recalculo subtotal/total 300, got %v/%v", updated.Subtotal, updated.Total)
	}
	if updated.TipoVenta != "particular" {
		t.Fatalf("expected tipo_venta actualizado, got %q", updated.TipoVenta)
	}
	if ledger.estados["animal-1"] != catalogo.EstadoVendida {
		t.Fatalf("expected estado sin cambios (vendida), got %s", ledger.estados["animal-1"])
	}
}

func TestService_Create_ValidaEntrada(t *testing.T) {
	ledger := &testLedger{estados: map[string]string{"animal-1": catalogo.EstadoViva}}
	svc, _ := newTestService(ledger)

	casos := []CreateInput{
		{AnimalID: "", PrecioUnitario: 100},
		{AnimalID: "animal-1", PrecioUnitario: 0},
		{AnimalID: "animal-1", PrecioUnitario: 100, Cantidad: -1},
		{AnimalID: "animal-1", PrecioUnitario: 100, ImpuestoPorcentaje: -5},
	}
	for i, in := range casos {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("caso %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}
