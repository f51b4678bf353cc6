package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ganado-api/internal/domain/animales"

	"github.com/google/uuid"
)

type AnimalesRepo struct {
	db *sql.DB
}

func NewAnimalesRepo(db *sql.DB) *AnimalesRepo {
	return &AnimalesRepo{db: db}
}

const animalColumns = `
	a.id, a.nombre, a.sexo, a.color, a.peso_kg, a.raza,
	a.fecha_nacimiento, a.fecha_ingreso,
	a.esta_preniada, a.fecha_monta, a.fecha_estimada_parto,
	a.categoria_id, a.imagen_url,
	a.created_at, a.updated_at,
	COALESCE(c.tipo, '')
`

func (r *AnimalesRepo) CreateWithEstado(ctx context.Context, a animales.Animal, estadoID string) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO animales (
				id, nombre, sexo, color, peso_kg, raza,
				fecha_nacimiento, fecha_ingreso,
				esta_preniada, fecha_monta, fecha_estimada_parto,
				categoria_id, imagen_url,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		`,
			a.ID, a.Nombre, a.Sexo, a.Color, a.PesoKg, a.Raza,
			a.FechaNacimiento, a.FechaIngreso,
			a.EstaPreniada, a.FechaMonta, a.FechaEstimadaParto,
			nullIfEmpty(a.CategoriaID), a.ImagenURL,
			a.CreatedAt, a.UpdatedAt,
		)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO estado_animal (id, animal_id, estado_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5)
		`, uuid.NewString(), a.ID, estadoID, a.CreatedAt, a.CreatedAt)
		return err
	})
	if isFKViolation(err) {
		return animales.ErrReferencia
	}
	return err
}

func (r *AnimalesRepo) Update(ctx context.Context, a animales.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animales
		SET nombre = $2, sexo = $3, color = $4, peso_kg = $5, raza = $6,
		    fecha_nacimiento = $7, fecha_ingreso = $8,
		    esta_preniada = $9, fecha_monta = $10, fecha_estimada_parto = $11,
		    categoria_id = $12, imagen_url = $13, updated_at = $14
		WHERE id = $1
	`,
		a.ID, a.Nombre, a.Sexo, a.Color, a.PesoKg, a.Raza,
		a.FechaNacimiento, a.FechaIngreso,
		a.EstaPreniada, a.FechaMonta, a.FechaEstimadaParto,
		nullIfEmpty(a.CategoriaID), a.ImagenURL, a.UpdatedAt,
	)
	if err != nil {
		if isFKViolation(err) {
			return animales.ErrReferencia
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animales.ErrNotFound
	}
	return nil
}

func (r *AnimalesRepo) GetByID(ctx context.Context, id string) (animales.Animal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animales a
		LEFT JOIN categorias c ON c.id = a.categoria_id
		WHERE a.id = $1
	`, id)

	a, err := scanAnimal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return animales.Animal{}, animales.ErrNotFound
	}
	return a, err
}

func (r *AnimalesRepo) List(ctx context.Context, f animales.ListFilter) ([]animales.Animal, error) {
	where, args := animalWhere(f)
	query := `
		SELECT ` + animalColumns + `
		FROM animales a
		LEFT JOIN categorias c ON c.id = a.categoria_id
	` + where + `
		ORDER BY a.created_at, a.id
	` + limitOffset(f.Limit, f.Offset, &args)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animales.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnimalesRepo) Count(ctx context.Context, f animales.ListFilter) (int, error) {
	where, args := animalWhere(f)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM animales a`+where, args...).Scan(&n)
	return n, err
}

func (r *AnimalesRepo) ListDetalles(ctx context.Context, f animales.ListFilter) ([]animales.AnimalDetalle, error) {
	where, args := animalWhere(f)
	query := `
		SELECT ` + animalColumns + `,
			COALESCE(e.nombre, ''), ea.fecha_fallecimiento
		FROM animales a
		LEFT JOIN categorias c ON c.id = a.categoria_id
		LEFT JOIN estado_animal ea ON ea.animal_id = a.id
		LEFT JOIN estados e ON e.id = ea.estado_id
	` + where + `
		ORDER BY a.created_at, a.id
	` + limitOffset(f.Limit, f.Offset, &args)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animales.AnimalDetalle, 0)
	for rows.Next() {
		d, err := scanAnimalDetalle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *AnimalesRepo) GetDetalle(ctx context.Context, id string) (animales.AnimalDetalle, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`,
			COALESCE(e.nombre, ''), ea.fecha_fallecimiento
		FROM animales a
		LEFT JOIN categorias c ON c.id = a.categoria_id
		LEFT JOIN estado_animal ea ON ea.animal_id = a.id
		LEFT JOIN estados e ON e.id = ea.estado_id
		WHERE a.id = $1
	`, id)

	d, err := scanAnimalDetalle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return animales.AnimalDetalle{}, animales.ErrNotFound
	}
	return d, err
}

func (r *AnimalesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM animales WHERE id = $1`, id)
	if err != nil {
		// ventas no tiene ON DELETE CASCADE: un animal vendido no se borra.
		if isFKViolation(err) {
			return animales.ErrReferenciado
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animales.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animales.Animal, error) {
	var a animales.Animal
	var categoriaID sql.NullString
	err := row.Scan(
		&a.ID, &a.Nombre, &a.Sexo, &a.Color, &a.PesoKg, &a.Raza,
		&a.FechaNacimiento, &a.FechaIngreso,
		&a.EstaPreniada, &a.FechaMonta, &a.FechaEstimadaParto,
		&categoriaID, &a.ImagenURL,
		&a.CreatedAt, &a.UpdatedAt,
		&a.CategoriaTipo,
	)
	a.CategoriaID = categoriaID.String
	return a, err
}

func scanAnimalDetalle(row rowScanner) (animales.AnimalDetalle, error) {
	var d animales.AnimalDetalle
	var categoriaID sql.NullString
	err := row.Scan(
		&d.ID, &d.Nombre, &d.Sexo, &d.Color, &d.PesoKg, &d.Raza,
		&d.FechaNacimiento, &d.FechaIngreso,
		&d.EstaPreniada, &d.FechaMonta, &d.FechaEstimadaParto,
		&categoriaID, &d.ImagenURL,
		&d.CreatedAt, &d.UpdatedAt,
		&d.CategoriaTipo,
		&d.EstadoNombre, &d.FechaFallecimiento,
	)
	d.CategoriaID = categoriaID.String
	return d, err
}

func animalWhere(f animales.ListFilter) (string, []any) {
	conds := []string{}
	args := []any{}
	argN := 1

	if f.Sexo != "" {
		conds = append(conds, fmt.Sprintf("a.sexo = $%d", argN))
		args = append(args, f.Sexo)
		argN++
	}
	if f.CategoriaID != "" {
		conds = append(conds, fmt.Sprintf("a.categoria_id = $%d", argN))
		args = append(args, f.CategoriaID)
		argN++
	}
	if f.EstaPreniada != nil {
		conds = append(conds, fmt.Sprintf("a.esta_preniada = $%d", argN))
		args = append(args, *f.EstaPreniada)
		argN++
	}
	if f.Nombre != "" {
		conds = append(conds, fmt.Sprintf("a.nombre ILIKE $%d", argN))
		args = append(args, "%"+f.Nombre+"%")
		argN++
	}
	if f.FechaIngresoDesde != nil {
		conds = append(conds, fmt.Sprintf("a.fecha_ingreso >= $%d", argN))
		args = append(args, *f.FechaIngresoDesde)
		argN++
	}
	if f.FechaIngresoHasta != nil {
		conds = append(conds, fmt.Sprintf("a.fecha_ingreso <= $%d", argN))
		args = append(args, *f.FechaIngresoHasta)
		argN++
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// limitOffset agrega LIMIT/OFFSET con los siguientes placeholders libres.
func limitOffset(limit, offset int, args *[]any) string {
	if limit <= 0 {
		return ""
	}
	n := len(*args)
	*args = append(*args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
