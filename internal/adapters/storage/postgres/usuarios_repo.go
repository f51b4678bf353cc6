package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ganado-api/internal/domain/usuarios"
)

type UsuariosRepo struct {
	db *sql.DB
}

func NewUsuariosRepo(db *sql.DB) *UsuariosRepo {
	return &UsuariosRepo{db: db}
}

func (r *UsuariosRepo) GetByID(ctx context.Context, id string) (usuarios.Usuario, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, correo, rol_id, created_at
		FROM usuarios
		WHERE id = $1
	`, id)

	var u usuarios.Usuario
	if err := row.Scan(&u.ID, &u.Nombre, &u.Correo, &u.RolID, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return usuarios.Usuario{}, usuarios.ErrNotFound
		}
		return usuarios.Usuario{}, err
	}
	return u, nil
}

func (r *UsuariosRepo) List(ctx context.Context) ([]usuarios.Usuario, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, correo, rol_id, created_at
		FROM usuarios
		ORDER BY nombre
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]usuarios.Usuario, 0)
	for rows.Next() {
		var u usuarios.Usuario
		if err := rows.Scan(&u.ID, &u.Nombre, &u.Correo, &u.RolID, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
