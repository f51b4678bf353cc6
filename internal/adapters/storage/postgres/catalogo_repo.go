package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ganado-api/internal/domain/catalogo"
)

type CategoriasRepo struct {
	db *sql.DB
}

func NewCategoriasRepo(db *sql.DB) *CategoriasRepo {
	return &CategoriasRepo{db: db}
}

func (r *CategoriasRepo) Create(ctx context.Context, c catalogo.Categoria) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categorias (id, tipo, descripcion, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, c.ID, c.Tipo, c.Descripcion, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CategoriasRepo) Update(ctx context.Context, c catalogo.Categoria) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categorias
		SET tipo = $2, descripcion = $3, updated_at = $4
		WHERE id = $1
	`, c.ID, c.Tipo, c.Descripcion, c.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalogo.ErrNotFound
	}
	return nil
}

func (r *CategoriasRepo) GetByID(ctx context.Context, id string) (catalogo.Categoria, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tipo, descripcion, created_at, updated_at
		FROM categorias
		WHERE id = $1
	`, id)

	var c catalogo.Categoria
	if err := row.Scan(&c.ID, &c.Tipo, &c.Descripcion, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalogo.Categoria{}, catalogo.ErrNotFound
		}
		return catalogo.Categoria{}, err
	}
	return c, nil
}

func (r *CategoriasRepo) List(ctx context.Context) ([]catalogo.Categoria, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tipo, descripcion, created_at, updated_at
		FROM categorias
		ORDER BY tipo
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalogo.Categoria, 0)
	for rows.Next() {
		var c catalogo.Categoria
		if err := rows.Scan(&c.ID, &c.Tipo, &c.Descripcion, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoriasRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categorias WHERE id = $1`, id)
	if err != nil {
		if isFKViolation(err) {
			return catalogo.ErrReferenciado
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalogo.ErrNotFound
	}
	return nil
}

type EstadosRepo struct {
	db *sql.DB
}

func NewEstadosRepo(db *sql.DB) *EstadosRepo {
	return &EstadosRepo{db: db}
}

func (r *EstadosRepo) Create(ctx context.Context, e catalogo.Estado) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO estados (id, nombre) VALUES ($1,$2)
	`, e.ID, e.Nombre)
	return err
}

func (r *EstadosRepo) Update(ctx context.Context, e catalogo.Estado) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE estados SET nombre = $2 WHERE id = $1
	`, e.ID, e.Nombre)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalogo.ErrNotFound
	}
	return nil
}

func (r *EstadosRepo) GetByID(ctx context.Context, id string) (catalogo.Estado, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, nombre FROM estados WHERE id = $1
	`, id)

	var e catalogo.Estado
	if err := row.Scan(&e.ID, &e.Nombre); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalogo.Estado{}, catalogo.ErrNotFound
		}
		return catalogo.Estado{}, err
	}
	return e, nil
}

func (r *EstadosRepo) GetByNombre(ctx context.Context, nombre string) (catalogo.Estado, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, nombre FROM estados WHERE lower(nombre) = lower($1)
	`, nombre)

	var e catalogo.Estado
	if err := row.Scan(&e.ID, &e.Nombre); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalogo.Estado{}, catalogo.ErrNotFound
		}
		return catalogo.Estado{}, err
	}
	return e, nil
}

func (r *EstadosRepo) List(ctx context.Context) ([]catalogo.Estado, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre FROM estados ORDER BY nombre
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalogo.Estado, 0)
	for rows.Next() {
		var e catalogo.Estado
		if err := rows.Scan(&e.ID, &e.Nombre); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EstadosRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM estados WHERE id = $1`, id)
	if err != nil {
		if isFKViolation(err) {
			return catalogo.ErrReferenciado
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalogo.ErrNotFound
	}
	return nil
}

type RolesRepo struct {
	db *sql.DB
}

func NewRolesRepo(db *sql.DB) *RolesRepo {
	return &RolesRepo{db: db}
}

func (r *RolesRepo) GetByID(ctx context.Context, id int) (catalogo.Rol, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, descripcion FROM roles WHERE id = $1
	`, id)

	var rol catalogo.Rol
	if err := row.Scan(&rol.ID, &rol.Nombre, &rol.Descripcion); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalogo.Rol{}, catalogo.ErrNotFound
		}
		return catalogo.Rol{}, err
	}
	return rol, nil
}

func (r *RolesRepo) List(ctx context.Context) ([]catalogo.Rol, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, descripcion FROM roles ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalogo.Rol, 0)
	for rows.Next() {
		var rol catalogo.Rol
		if err := rows.Scan(&rol.ID, &rol.Nombre, &rol.Descripcion); err != nil {
			return nil, err
		}
		out = append(out, rol)
	}
	return out, rows.Err()
}
