package memory

import (
	"context"
	"sort"

	"ganado-api/internal/domain/recordatorios"
)

type RecordatoriosRepo struct{ s *Store }

func NewRecordatoriosRepo(s *Store) *RecordatoriosRepo { return &RecordatoriosRepo{s: s} }

func (r *RecordatoriosRepo) Create(_ context.Context, rec recordatorios.Recordatorio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.animales[rec.AnimalID]; !ok {
		return recordatorios.ErrReferencia
	}
	r.s.recordatorios[rec.ID] = rec
	return nil
}

func (r *RecordatoriosRepo) Update(_ context.Context, rec recordatorios.Recordatorio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.recordatorios[rec.ID]; !ok {
		return recordatorios.ErrNotFound
	}
	r.s.recordatorios[rec.ID] = rec
	return nil
}

func (r *RecordatoriosRepo) UpdateEstado(_ context.Context, id string, estado recordatorios.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.recordatorios[id]
	if !ok {
		return recordatorios.ErrNotFound
	}
	rec.Estado = estado
	r.s.recordatorios[id] = rec
	return nil
}

func (r *RecordatoriosRepo) GetByID(_ context.Context, id string) (recordatorios.Recordatorio, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.recordatorios[id]
	if !ok {
		return recordatorios.Recordatorio{}, recordatorios.ErrNotFound
	}
	rec.AnimalNombre = r.s.nombreAnimal(rec.AnimalID)
	return rec, nil
}

func (r *RecordatoriosRepo) List(_ context.Context, f recordatorios.ListFilter) ([]recordatorios.Recordatorio, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginar(r.filtrar(f), f.Limit, f.Offset), nil
}

func (r *RecordatoriosRepo) Count(_ context.Context, f recordatorios.ListFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.filtrar(f)), nil
}

func (r *RecordatoriosRepo) ListByAnimal(_ context.Context, animalID string) ([]recordatorios.Recordatorio, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.filtrar(recordatorios.ListFilter{AnimalID: animalID}), nil
}

func (r *RecordatoriosRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.recordatorios[id]; !ok {
		return recordatorios.ErrNotFound
	}
	delete(r.s.recordatorios, id)
	return nil
}

func (r *RecordatoriosRepo) filtrar(f recordatorios.ListFilter) []recordatorios.Recordatorio {
	out := make([]recordatorios.Recordatorio, 0, len(r.s.recordatorios))
	for _, rec := range r.s.recordatorios {
		if f.AnimalID != "" && rec.AnimalID != f.AnimalID {
			continue
		}
		if f.Estado != "" && rec.Estado != f.Estado {
			continue
		}
		if f.Desde != nil && rec.Fecha.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && rec.Fecha.After(*f.Hasta) {
			continue
		}
		rec.AnimalNombre = r.s.nombreAnimal(rec.AnimalID)
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Fecha.Equal(out[j].Fecha) {
			return out[i].Fecha.Before(out[j].Fecha)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
