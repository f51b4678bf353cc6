package memory

import (
	"context"
	"sort"

	"ganado-api/internal/domain/usuarios"
)

type UsuariosRepo struct{ s *Store }

func NewUsuariosRepo(s *Store) *UsuariosRepo { return &UsuariosRepo{s: s} }

func (r *UsuariosRepo) GetByID(_ context.Context, id string) (usuarios.Usuario, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.usuarios[id]
	if !ok {
		return usuarios.Usuario{}, usuarios.ErrNotFound
	}
	return u, nil
}

func (r *UsuariosRepo) List(_ context.Context) ([]usuarios.Usuario, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]usuarios.Usuario, 0, len(r.s.usuarios))
	for _, u := range r.s.usuarios {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}
