package memory

import (
	"context"
	"sort"

	"ganado-api/internal/domain/estadoanimal"
)

type EstadoAnimalRepo struct{ s *Store }

func NewEstadoAnimalRepo(s *Store) *EstadoAnimalRepo { return &EstadoAnimalRepo{s: s} }

func (r *EstadoAnimalRepo) Create(_ context.Context, e estadoanimal.EstadoAnimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.animales[e.AnimalID]; !ok {
		return estadoanimal.ErrReferencia
	}
	if _, ok := r.s.estados[e.EstadoID]; !ok {
		return estadoanimal.ErrReferencia
	}
	r.s.estadosAnimal[e.ID] = e
	return nil
}

func (r *EstadoAnimalRepo) Update(_ context.Context, e estadoanimal.EstadoAnimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.estadosAnimal[e.ID]; !ok {
		return estadoanimal.ErrNotFound
	}
	if _, ok := r.s.estados[e.EstadoID]; !ok {
		return estadoanimal.ErrReferencia
	}
	r.s.estadosAnimal[e.ID] = e
	return nil
}

func (r *EstadoAnimalRepo) GetByID(_ context.Context, id string) (estadoanimal.EstadoAnimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.estadosAnimal[id]
	if !ok {
		return estadoanimal.EstadoAnimal{}, estadoanimal.ErrNotFound
	}
	return r.enriquecer(e), nil
}

func (r *EstadoAnimalRepo) GetByAnimal(_ context.Context, animalID string) (estadoanimal.EstadoAnimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.estadoAnimalDe(animalID)
	if !ok {
		return estadoanimal.EstadoAnimal{}, estadoanimal.ErrNotFound
	}
	return r.enriquecer(e), nil
}

func (r *EstadoAnimalRepo) List(_ context.Context, f estadoanimal.ListFilter) ([]estadoanimal.EstadoAnimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginar(r.filtrar(f), f.Limit, f.Offset), nil
}

func (r *EstadoAnimalRepo) Count(_ context.Context, f estadoanimal.ListFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.filtrar(f)), nil
}

func (r *EstadoAnimalRepo) filtrar(f estadoanimal.ListFilter) []estadoanimal.EstadoAnimal {
	out := make([]estadoanimal.EstadoAnimal, 0, len(r.s.estadosAnimal))
	for _, e := range r.s.estadosAnimal {
		if f.EstadoID != "" && e.EstadoID != f.EstadoID {
			continue
		}
		out = append(out, r.enriquecer(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *EstadoAnimalRepo) enriquecer(e estadoanimal.EstadoAnimal) estadoanimal.EstadoAnimal {
	e.EstadoNombre = r.s.nombreEstado(e.EstadoID)
	e.AnimalNombre = r.s.nombreAnimal(e.AnimalID)
	return e
}
