package recordatorios

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Recordatorio
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Recordatorio{}}
}

func (r *testRepo) Create(ctx context.Context, rec Recordatorio) error {
	if rec.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *testRepo) Update(ctx context.Context, rec Recordatorio) error {
	if _, ok := r.byID[rec.ID]; !ok {
		return ErrNotFound
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *testRepo) UpdateEstado(ctx context.Context, id string, estado Status) error {
	rec, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	rec.Estado = estado
	r.byID[id] = rec
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Recordatorio, error) {
	rec, ok := r.byID[id]
	if !ok {
		return Recordatorio{}, ErrNotFound
	}
	return rec, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Recordatorio, error) {
	out := make([]Recordatorio, 0)
	for _, rec := range r.byID {
		if f.AnimalID != "" && rec.AnimalID != f.AnimalID {
			continue
		}
		if f.Estado != "" && rec.Estado != f.Estado {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *testRepo) Count(ctx context.Context, f ListFilter) (int, error) {
	items, _ := r.List(ctx, f)
	return len(items), nil
}

func (r *testRepo) ListByAnimal(ctx context.Context, animalID string) ([]Recordatorio, error) {
	return r.List(ctx, ListFilter{AnimalID: animalID})
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_SyncParto_Idempotente(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	in := PartoInput{
		AnimalID:           "animal-1",
		AnimalNombre:       "Luna",
		FechaEstimadaParto: time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC),
	}

	if err := svc.SyncParto(context.Background(), in); err != nil {
		t.Fatalf("SyncParto #1 error: %v", err)
	}
	if err := svc.SyncParto(context.Background(), in); err != nil {
		t.Fatalf("SyncParto #2 error: %v", err)
	}

	if len(repo.byID) != 1 {
		t.Fatalf("expected exactly 1 recordatorio, got %d", len(repo.byID))
	}
	for _, rec := range repo.byID {
		if rec.Titulo != TituloParto {
			t.Fatalf("expected titulo %q, got %q", TituloParto, rec.Titulo)
		}
		if !strings.Contains(rec.Descripcion, "01-03-2025") {
			t.Fatalf("expected descripcion with fecha DD-MM-YYYY, got %q", rec.Descripcion)
		}
		if !strings.Contains(rec.Descripcion, "Luna") {
			t.Fatalf("expected descripcion with nombre, got %q", rec.Descripcion)
		}
		if rec.Estado != StatusPendiente {
			t.Fatalf("expected estado pendiente, got %s", rec.Estado)
		}
	}
}

func TestService_SyncEvento_IdempotentePorOrigen(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	in := EventoInput{
		EventoID:     "evento-1",
		AnimalID:     "animal-1",
		AnimalNombre: "Luna",
		TipoEvento:   "vacunación",
		ProximaFecha: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}

	if err := svc.SyncEvento(context.Background(), in); err != nil {
		t.Fatalf("SyncEvento #1 error: %v", err)
	}
	// mismo evento otra vez => misma fila
	if err := svc.SyncEvento(context.Background(), in); err != nil {
		t.Fatalf("SyncEvento #2 error: %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 recordatorio for one evento, got %d", len(repo.byID))
	}

	// otro evento, aunque sea del mismo tipo y día => nueva fila
	in.EventoID = "evento-2"
	if err := svc.SyncEvento(context.Background(), in); err != nil {
		t.Fatalf("SyncEvento #3 error: %v", err)
	}
	if len(repo.byID) != 2 {
		t.Fatalf("expected 2 recordatorios for distinct eventos, got %d", len(repo.byID))
	}
}

func TestService_SyncEvento_ActualizaEnLugarYPreservaEstado(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	if err := svc.SyncEvento(context.Background(), EventoInput{
		EventoID:     "evento-1",
		AnimalID:     "animal-1",
		AnimalNombre: "Luna",
		TipoEvento:   "vacunación",
		ProximaFecha: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("SyncEvento error: %v", err)
	}

	var originalID string
	for id := range repo.byID {
		originalID = id
	}
	// el usuario lo marcó hecho antes de la edición del evento
	if err := repo.UpdateEstado(context.Background(), originalID, StatusHecho); err != nil {
		t.Fatalf("UpdateEstado error: %v", err)
	}

	// el evento cambió de tipo y de fecha: el derivado se re-deriva en su lugar
	err := svc.SyncEvento(context.Background(), EventoInput{
		EventoID:     "evento-1",
		AnimalID:     "animal-1",
		AnimalNombre: "Luna",
		TipoEvento:   "desparasitación",
		ProximaFecha: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("SyncEvento (update) error: %v", err)
	}

	if len(repo.byID) != 1 {
		t.Fatalf("expected update in place, got %d rows", len(repo.byID))
	}
	rec := repo.byID[originalID]
	if rec.Titulo != TituloEvento("desparasitación") {
		t.Fatalf("expected titulo re-derivado, got %q", rec.Titulo)
	}
	if !rec.Fecha.Equal(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected fecha actualizada, got %v", rec.Fecha)
	}
	if rec.Estado != StatusHecho {
		t.Fatalf("expected estado preservado (hecho), got %s", rec.Estado)
	}
}

func TestService_DeleteDerivadoEvento_BorraSoloElDelEvento(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	fecha := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	_ = svc.SyncEvento(context.Background(), EventoInput{
		EventoID: "evento-1", AnimalID: "animal-1", AnimalNombre: "Luna", TipoEvento: "vacunación", ProximaFecha: fecha,
	})
	_ = svc.SyncEvento(context.Background(), EventoInput{
		EventoID: "evento-2", AnimalID: "animal-1", AnimalNombre: "Luna", TipoEvento: "vacunación", ProximaFecha: fecha,
	})

	if err := svc.DeleteDerivadoEvento(context.Background(), "animal-1", "evento-1"); err != nil {
		t.Fatalf("DeleteDerivadoEvento error: %v", err)
	}

	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 recordatorio remaining, got %d", len(repo.byID))
	}
	for _, rec := range repo.byID {
		if rec.OrigenID != "evento-2" {
			t.Fatalf("expected the remaining recordatorio to belong to evento-2, got %q", rec.OrigenID)
		}
	}

	// borrar lo ya borrado es un no-op
	if err := svc.DeleteDerivadoEvento(context.Background(), "animal-1", "evento-1"); err != nil {
		t.Fatalf("DeleteDerivadoEvento #2 error: %v", err)
	}
}

func TestService_UpdateEstado_RechazaValorInvalido(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	err := svc.UpdateEstado(context.Background(), "cualquiera", Status("archivado"))
	if !errors.Is(err, ErrEstadoInvalid) {
		t.Fatalf("expected ErrEstadoInvalid, got %v", err)
	}
}

func TestService_Delete_NotFoundEsNoOp(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	deleted, err := svc.Delete(context.Background(), "no-existe")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if deleted {
		t.Fatalf("expected deleted=false for missing id")
	}
}

func TestFormatFechaDMY_CeroALaIzquierda(t *testing.T) {
	got := FormatFechaDMY(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if got != "01-03-2025" {
		t.Fatalf("expected 01-03-2025, got %s", got)
	}
}
