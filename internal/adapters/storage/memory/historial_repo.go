package memory

import (
	"context"
	"sort"

	"ganado-api/internal/domain/historial"
)

type HistorialRepo struct{ s *Store }

func NewHistorialRepo(s *Store) *HistorialRepo { return &HistorialRepo{s: s} }

func (r *HistorialRepo) Create(_ context.Context, e historial.Evento) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.animales[e.AnimalID]; !ok {
		return historial.ErrReferencia
	}
	r.s.historial[e.ID] = e
	return nil
}

func (r *HistorialRepo) Update(_ context.Context, e historial.Evento) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.historial[e.ID]; !ok {
		return historial.ErrNotFound
	}
	r.s.historial[e.ID] = e
	return nil
}

func (r *HistorialRepo) GetByID(_ context.Context, id string) (historial.Evento, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.historial[id]
	if !ok {
		return historial.Evento{}, historial.ErrNotFound
	}
	return r.enriquecer(e), nil
}

func (r *HistorialRepo) List(_ context.Context, f historial.ListFilter) ([]historial.Evento, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginar(r.filtrar(f), f.Limit, f.Offset), nil
}

func (r *HistorialRepo) Count(_ context.Context, f historial.ListFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.filtrar(f)), nil
}

func (r *HistorialRepo) ListByAnimal(_ context.Context, animalID string) ([]historial.Evento, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.filtrar(historial.ListFilter{AnimalID: animalID}), nil
}

func (r *HistorialRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.historial[id]; !ok {
		return historial.ErrNotFound
	}
	delete(r.s.historial, id)
	return nil
}

func (r *HistorialRepo) filtrar(f historial.ListFilter) []historial.Evento {
	out := make([]historial.Evento, 0, len(r.s.historial))
	for _, e := range r.s.historial {
		if f.AnimalID != "" && e.AnimalID != f.AnimalID {
			continue
		}
		if f.TipoEvento != "" && e.TipoEvento != f.TipoEvento {
			continue
		}
		if f.Desde != nil && e.FechaAplicacion.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && e.FechaAplicacion.After(*f.Hasta) {
			continue
		}
		out = append(out, r.enriquecer(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FechaAplicacion.Equal(out[j].FechaAplicacion) {
			return out[i].FechaAplicacion.Before(out[j].FechaAplicacion)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *HistorialRepo) enriquecer(e historial.Evento) historial.Evento {
	e.AnimalNombre = r.s.nombreAnimal(e.AnimalID)
	e.HechoPorNombre = r.s.nombreUsuario(e.HechoPor)
	return e
}
