package memory

import (
	"context"
	"sort"

	"ganado-api/internal/domain/ventas"
)

type VentasRepo struct{ s *Store }

func NewVentasRepo(s *Store) *VentasRepo { return &VentasRepo{s: s} }

// CreateConEstado reproduce la transacción SQL: todas las verificaciones
// pasan antes de tocar nada, así el insert y el cambio de estado quedan
// juntos o no queda ninguno.
func (r *VentasRepo) CreateConEstado(_ context.Context, v ventas.Venta, estadoVendidaID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.animales[v.AnimalID]; !ok {
		return ventas.ErrReferencia
	}
	if _, dup := r.s.ventaDe(v.AnimalID); dup {
		return ventas.ErrVentaDuplicada
	}
	estado, ok := r.s.estadoAnimalDe(v.AnimalID)
	if !ok {
		return ventas.ErrEstadoInconsistente
	}

	estado.EstadoID = estadoVendidaID
	estado.UpdatedAt = v.CreatedAt
	r.s.estadosAnimal[estado.ID] = estado
	r.s.ventas[v.ID] = v
	return nil
}

// DeleteConEstado borra la venta y devuelve el estado del animal a viva.
func (r *VentasRepo) DeleteConEstado(_ context.Context, id, animalID, estadoVivaID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.ventas[id]
	if !ok {
		return ventas.ErrNotFound
	}

	delete(r.s.ventas, id)
	if estado, ok := r.s.estadoAnimalDe(animalID); ok {
		estado.EstadoID = estadoVivaID
		estado.FechaFallecimiento = nil
		estado.UpdatedAt = v.UpdatedAt
		r.s.estadosAnimal[estado.ID] = estado
	}
	return nil
}

func (r *VentasRepo) Update(_ context.Context, v ventas.Venta) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ventas[v.ID]; !ok {
		return ventas.ErrNotFound
	}
	r.s.ventas[v.ID] = v
	return nil
}

func (r *VentasRepo) GetByID(_ context.Context, id string) (ventas.Venta, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.ventas[id]
	if !ok {
		return ventas.Venta{}, ventas.ErrNotFound
	}
	return r.enriquecer(v), nil
}

func (r *VentasRepo) GetByAnimal(_ context.Context, animalID string) (ventas.Venta, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.ventaDe(animalID)
	if !ok {
		return ventas.Venta{}, ventas.ErrNotFound
	}
	return r.enriquecer(v), nil
}

func (r *VentasRepo) List(_ context.Context, f ventas.ListFilter) ([]ventas.Venta, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return paginar(r.filtrar(f), f.Limit, f.Offset), nil
}

func (r *VentasRepo) Count(_ context.Context, f ventas.ListFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.filtrar(f)), nil
}

func (r *VentasRepo) filtrar(f ventas.ListFilter) []ventas.Venta {
	out := make([]ventas.Venta, 0, len(r.s.ventas))
	for _, v := range r.s.ventas {
		if f.AnimalID != "" && v.AnimalID != f.AnimalID {
			continue
		}
		if f.TipoVenta != "" && v.TipoVenta != f.TipoVenta {
			continue
		}
		if f.Comprador != "" && v.Comprador != f.Comprador {
			continue
		}
		if f.MetodoPago != "" && v.MetodoPago != f.MetodoPago {
			continue
		}
		if f.Desde != nil && v.FechaVenta.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && v.FechaVenta.After(*f.Hasta) {
			continue
		}
		out = append(out, r.enriquecer(v))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FechaVenta.Equal(out[j].FechaVenta) {
			return out[i].FechaVenta.Before(out[j].FechaVenta)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *VentasRepo) enriquecer(v ventas.Venta) ventas.Venta {
	v.AnimalNombre = r.s.nombreAnimal(v.AnimalID)
	v.RegistradoPorNombre = r.s.nombreUsuario(v.RegistradoPor)
	return v
}
