package animales

import (
	"context"
	"errors"
	"testing"
	"time"

	"ganado-api/internal/domain/catalogo"
	"ganado-api/internal/domain/recordatorios"
)

// -------------------------
// Test doubles
// -------------------------

const idViva = "estado-viva"

type testResolver struct{}

func (testResolver) IDByNombre(_ context.Context, nombre string) (string, error) {
	if nombre == catalogo.EstadoViva {
		return idViva, nil
	}
	return "", catalogo.ErrNotFound
}

type testReminders struct {
	llamadas []recordatorios.PartoInput
}

func (r *testReminders) SyncParto(_ context.Context, in recordatorios.PartoInput) error {
	r.llamadas = append(r.llamadas, in)
	return nil
}

type testRepo struct {
	byID map[string]Animal

	// estadoDe registra qué ID de estado recibió CreateWithEstado
	estadoDe map[string]string
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Animal{}, estadoDe: map[string]string{}}
}

func (r *testRepo) CreateWithEstado(_ context.Context, a Animal, estadoID string) error {
	r.byID[a.ID] = a
	r.estadoDe[a.ID] = estadoID
	return nil
}

func (r *testRepo) Update(_ context.Context, a Animal) error {
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Animal, error) {
	a, ok := r.byID[id]
	if !ok {
		return Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) List(_ context.Context, f ListFilter) ([]Animal, error) {
	out := make([]Animal, 0)
	for _, a := range r.byID {
		if f.Sexo != "" && a.Sexo != f.Sexo {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) Count(ctx context.Context, f ListFilter) (int, error) {
	items, _ := r.List(ctx, f)
	return len(items), nil
}

func (r *testRepo) ListDetalles(ctx context.Context, f ListFilter) ([]AnimalDetalle, error) {
	items, _ := r.List(ctx, f)
	out := make([]AnimalDetalle, 0, len(items))
	for _, a := range items {
		out = append(out, AnimalDetalle{Animal: a})
	}
	return out, nil
}

func (r *testRepo) GetDetalle(ctx context.Context, id string) (AnimalDetalle, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return AnimalDetalle{}, err
	}
	return AnimalDetalle{Animal: a}, nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func newTestService() (*Service, *testRepo, *testReminders) {
	repo := newTestRepo()
	recs := &testReminders{}
	svc := NewService(repo, testResolver{}, recs, nil)
	svc.now = func() time.Time { return time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC) }
	return svc, repo, recs
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_AltaConEstadoViva(t *testing.T) {
	svc, repo, _ := newTestService()

	a, err := svc.Create(context.Background(), CreateInput{
		Nombre: "Pancho",
		Sexo:   "macho",
		PesoKg: 320,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if a.ID == "" {
		t.Fatalf("expected generated id")
	}
	if repo.estadoDe[a.ID] != idViva {
		t.Fatalf("expected estado inicial viva, got %q", repo.estadoDe[a.ID])
	}
	if a.FechaIngreso.IsZero() {
		t.Fatalf("expected fecha_ingreso defaulted to now")
	}
}

func TestService_Create_PreniadaDerivaParto(t *testing.T) {
	svc, _, recs := newTestService()

	parto := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	a, err := svc.Create(context.Background(), CreateInput{
		Nombre:             "Luna",
		Sexo:               "hembra",
		EstaPreniada:       true,
		FechaEstimadaParto: &parto,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if len(recs.llamadas) != 1 {
		t.Fatalf("expected 1 SyncParto call, got %d", len(recs.llamadas))
	}
	in := recs.llamadas[0]
	if in.AnimalID != a.ID || in.AnimalNombre != "Luna" || !in.FechaEstimadaParto.Equal(parto) {
		t.Fatalf("unexpected SyncParto input: %+v", in)
	}
}

func TestService_Create_SinFechaPartoNoDeriva(t *testing.T) {
	svc, _, recs := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		Nombre:       "Luna",
		Sexo:         "hembra",
		EstaPreniada: true,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(recs.llamadas) != 0 {
		t.Fatalf("expected no SyncParto without fecha estimada, got %d", len(recs.llamadas))
	}
}

func TestService_Update_ResincronizaParto(t *testing.T) {
	svc, _, recs := newTestService()

	a, err := svc.Create(context.Background(), CreateInput{
		Nombre: "Luna",
		Sexo:   "hembra",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(recs.llamadas) != 0 {
		t.Fatalf("precondition: no derivation yet")
	}

	parto := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	if _, err := svc.Update(context.Background(), a.ID, UpdateInput{
		Nombre:             "Luna",
		Sexo:               "hembra",
		EstaPreniada:       true,
		FechaEstimadaParto: &parto,
	}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(recs.llamadas) != 1 {
		t.Fatalf("expected SyncParto on update, got %d calls", len(recs.llamadas))
	}
}

func TestService_Create_ValidaDatos(t *testing.T) {
	svc, _, _ := newTestService()

	casos := []CreateInput{
		{Nombre: "", Sexo: "hembra"},
		{Nombre: "Pancho", Sexo: "otro"},
		{Nombre: "Pancho", Sexo: "macho", EstaPreniada: true},
	}
	for i, in := range casos {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("caso %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestService_Delete_NotFoundEsNoOp(t *testing.T) {
	svc, _, _ := newTestService()

	deleted, err := svc.Delete(context.Background(), "no-existe")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if deleted {
		t.Fatalf("expected deleted=false for missing id")
	}
}
