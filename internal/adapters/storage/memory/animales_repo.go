package memory

import (
	"context"
	"sort"
	"strings"

	"ganado-api/internal/domain/animales"
	"ganado-api/internal/domain/estadoanimal"

	"github.com/google/uuid"
)

type AnimalesRepo struct{ s *Store }

func NewAnimalesRepo(s *Store) *AnimalesRepo { return &AnimalesRepo{s: s} }

func (r *AnimalesRepo) CreateWithEstado(_ context.Context, a animales.Animal, estadoID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a.CategoriaID != "" {
		if _, ok := r.s.categorias[a.CategoriaID]; !ok {
			return animales.ErrReferencia
		}
	}
	if _, ok := r.s.estados[estadoID]; !ok {
		return animales.ErrReferencia
	}

	// Animal y fila de estado entran juntos, como en la transacción SQL.
	r.s.animales[a.ID] = a
	estadoRowID := uuid.NewString()
	r.s.estadosAnimal[estadoRowID] = estadoanimal.EstadoAnimal{
		ID:        estadoRowID,
		AnimalID:  a.ID,
		EstadoID:  estadoID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.CreatedAt,
	}
	return nil
}

func (r *AnimalesRepo) Update(_ context.Context, a animales.Animal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.animales[a.ID]; !ok {
		return animales.ErrNotFound
	}
	if a.CategoriaID != "" {
		if _, ok := r.s.categorias[a.CategoriaID]; !ok {
			return animales.ErrReferencia
		}
	}
	r.s.animales[a.ID] = a
	return nil
}

func (r *AnimalesRepo) GetByID(_ context.Context, id string) (animales.Animal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.animales[id]
	if !ok {
		return animales.Animal{}, animales.ErrNotFound
	}
	a.CategoriaTipo = r.s.tipoCategoria(a.CategoriaID)
	return a, nil
}

func (r *AnimalesRepo) List(_ context.Context, f animales.ListFilter) ([]animales.Animal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginar(r.filtrar(f), f.Limit, f.Offset), nil
}

func (r *AnimalesRepo) Count(_ context.Context, f animales.ListFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.filtrar(f)), nil
}

func (r *AnimalesRepo) ListDetalles(_ context.Context, f animales.ListFilter) ([]animales.AnimalDetalle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	base := paginar(r.filtrar(f), f.Limit, f.Offset)
	out := make([]animales.AnimalDetalle, 0, len(base))
	for _, a := range base {
		out = append(out, r.detalleDe(a))
	}
	return out, nil
}

func (r *AnimalesRepo) GetDetalle(_ context.Context, id string) (animales.AnimalDetalle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.animales[id]
	if !ok {
		return animales.AnimalDetalle{}, animales.ErrNotFound
	}
	a.CategoriaTipo = r.s.tipoCategoria(a.CategoriaID)
	return r.detalleDe(a), nil
}

func (r *AnimalesRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.animales[id]; !ok {
		return animales.ErrNotFound
	}
	if _, vendido := r.s.ventaDe(id); vendido {
		return animales.ErrReferenciado
	}

	// Cascada: estado, recordatorios e historial del animal.
	delete(r.s.animales, id)
	for k, e := range r.s.estadosAnimal {
		if e.AnimalID == id {
			delete(r.s.estadosAnimal, k)
		}
	}
	for k, rec := range r.s.recordatorios {
		if rec.AnimalID == id {
			delete(r.s.recordatorios, k)
		}
	}
	for k, ev := range r.s.historial {
		if ev.AnimalID == id {
			delete(r.s.historial, k)
		}
	}
	return nil
}

// filtrar devuelve los animales que matchean, enriquecidos y ordenados.
// Llamar con el lock tomado.
func (r *AnimalesRepo) filtrar(f animales.ListFilter) []animales.Animal {
	out := make([]animales.Animal, 0, len(r.s.animales))
	for _, a := range r.s.animales {
		if f.Sexo != "" && a.Sexo != f.Sexo {
			continue
		}
		if f.CategoriaID != "" && a.CategoriaID != f.CategoriaID {
			continue
		}
		if f.EstaPreniada != nil && a.EstaPreniada != *f.EstaPreniada {
			continue
		}
		if f.Nombre != "" && !strings.Contains(strings.ToLower(a.Nombre), strings.ToLower(f.Nombre)) {
			continue
		}
		if f.FechaIngresoDesde != nil && a.FechaIngreso.Before(*f.FechaIngresoDesde) {
			continue
		}
		if f.FechaIngresoHasta != nil && a.FechaIngreso.After(*f.FechaIngresoHasta) {
			continue
		}
		a.CategoriaTipo = r.s.tipoCategoria(a.CategoriaID)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *AnimalesRepo) detalleDe(a animales.Animal) animales.AnimalDetalle {
	d := animales.AnimalDetalle{Animal: a}
	if e, ok := r.s.estadoAnimalDe(a.ID); ok {
		d.EstadoNombre = r.s.nombreEstado(e.EstadoID)
		d.FechaFallecimiento = e.FechaFallecimiento
	}
	return d
}

func paginar[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		return items
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
