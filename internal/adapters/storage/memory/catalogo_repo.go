package memory

import (
	"context"
	"sort"
	"strings"

	"ganado-api/internal/domain/catalogo"
)

type CategoriasRepo struct{ s *Store }

func NewCategoriasRepo(s *Store) *CategoriasRepo { return &CategoriasRepo{s: s} }

func (r *CategoriasRepo) Create(_ context.Context, c catalogo.Categoria) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categorias[c.ID] = c
	return nil
}

func (r *CategoriasRepo) Update(_ context.Context, c catalogo.Categoria) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categorias[c.ID]; !ok {
		return catalogo.ErrNotFound
	}
	r.s.categorias[c.ID] = c
	return nil
}

func (r *CategoriasRepo) GetByID(_ context.Context, id string) (catalogo.Categoria, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categorias[id]
	if !ok {
		return catalogo.Categoria{}, catalogo.ErrNotFound
	}
	return c, nil
}

func (r *CategoriasRepo) List(_ context.Context) ([]catalogo.Categoria, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]catalogo.Categoria, 0, len(r.s.categorias))
	for _, c := range r.s.categorias {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tipo < out[j].Tipo })
	return out, nil
}

func (r *CategoriasRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categorias[id]; !ok {
		return catalogo.ErrNotFound
	}
	for _, a := range r.s.animales {
		if a.CategoriaID == id {
			return catalogo.ErrReferenciado
		}
	}
	delete(r.s.categorias, id)
	return nil
}

type EstadosRepo struct{ s *Store }

func NewEstadosRepo(s *Store) *EstadosRepo { return &EstadosRepo{s: s} }

func (r *EstadosRepo) Create(_ context.Context, e catalogo.Estado) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.estados[e.ID] = e
	return nil
}

func (r *EstadosRepo) Update(_ context.Context, e catalogo.Estado) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.estados[e.ID]; !ok {
		return catalogo.ErrNotFound
	}
	r.s.estados[e.ID] = e
	return nil
}

func (r *EstadosRepo) GetByID(_ context.Context, id string) (catalogo.Estado, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.estados[id]
	if !ok {
		return catalogo.Estado{}, catalogo.ErrNotFound
	}
	return e, nil
}

func (r *EstadosRepo) GetByNombre(_ context.Context, nombre string) (catalogo.Estado, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.estados {
		if strings.EqualFold(e.Nombre, nombre) {
			return e, nil
		}
	}
	return catalogo.Estado{}, catalogo.ErrNotFound
}

func (r *EstadosRepo) List(_ context.Context) ([]catalogo.Estado, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]catalogo.Estado, 0, len(r.s.estados))
	for _, e := range r.s.estados {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *EstadosRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.estados[id]; !ok {
		return catalogo.ErrNotFound
	}
	for _, e := range r.s.estadosAnimal {
		if e.EstadoID == id {
			return catalogo.ErrReferenciado
		}
	}
	delete(r.s.estados, id)
	return nil
}

type RolesRepo struct{ s *Store }

func NewRolesRepo(s *Store) *RolesRepo { return &RolesRepo{s: s} }

func (r *RolesRepo) GetByID(_ context.Context, id int) (catalogo.Rol, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rol, ok := r.s.roles[id]
	if !ok {
		return catalogo.Rol{}, catalogo.ErrNotFound
	}
	return rol, nil
}

func (r *RolesRepo) List(_ context.Context) ([]catalogo.Rol, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]catalogo.Rol, 0, len(r.s.roles))
	for _, rol := range r.s.roles {
		out = append(out, rol)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
