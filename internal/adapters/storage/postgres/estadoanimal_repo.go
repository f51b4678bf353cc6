package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ganado-api/internal/domain/estadoanimal"
)

type EstadoAnimalRepo struct {
	db *sql.DB
}

func NewEstadoAnimalRepo(db *sql.DB) *EstadoAnimalRepo {
	return &EstadoAnimalRepo{db: db}
}

const estadoAnimalColumns = `
	ea.id, ea.animal_id, ea.estado_id, ea.fecha_fallecimiento,
	ea.created_at, ea.updated_at,
	COALESCE(e.nombre, ''), COALESCE(a.nombre, '')
`

func (r *EstadoAnimalRepo) Create(ctx context.Context, e estadoanimal.EstadoAnimal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO estado_animal (id, animal_id, estado_id, fecha_fallecimiento, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, e.ID, e.AnimalID, e.EstadoID, e.FechaFallecimiento, e.CreatedAt, e.UpdatedAt)
	if isFKViolation(err) {
		return estadoanimal.ErrReferencia
	}
	if isUniqueViolation(err) {
		return estadoanimal.ErrEstadoExistente
	}
	return err
}

func (r *EstadoAnimalRepo) Update(ctx context.Context, e estadoanimal.EstadoAnimal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE estado_animal
		SET estado_id = $2, fecha_fallecimiento = $3, updated_at = $4
		WHERE id = $1
	`, e.ID, e.EstadoID, e.FechaFallecimiento, e.UpdatedAt)
	if err != nil {
		if isFKViolation(err) {
			return estadoanimal.ErrReferencia
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return estadoanimal.ErrNotFound
	}
	return nil
}

func (r *EstadoAnimalRepo) GetByID(ctx context.Context, id string) (estadoanimal.EstadoAnimal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+estadoAnimalColumns+`
		FROM estado_animal ea
		LEFT JOIN estados e ON e.id = ea.estado_id
		LEFT JOIN animales a ON a.id = ea.animal_id
		WHERE ea.id = $1
	`, id)
	return scanEstadoAnimal(row)
}

func (r *EstadoAnimalRepo) GetByAnimal(ctx context.Context, animalID string) (estadoanimal.EstadoAnimal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+estadoAnimalColumns+`
		FROM estado_animal ea
		LEFT JOIN estados e ON e.id = ea.estado_id
		LEFT JOIN animales a ON a.id = ea.animal_id
		WHERE ea.animal_id = $1
	`, animalID)
	return scanEstadoAnimal(row)
}

func (r *EstadoAnimalRepo) List(ctx context.Context, f estadoanimal.ListFilter) ([]estadoanimal.EstadoAnimal, error) {
	args := []any{}
	where := ""
	if f.EstadoID != "" {
		where = " WHERE ea.estado_id = $1"
		args = append(args, f.EstadoID)
	}

	query := `
		SELECT ` + estadoAnimalColumns + `
		FROM estado_animal ea
		LEFT JOIN estados e ON e.id = ea.estado_id
		LEFT JOIN animales a ON a.id = ea.animal_id
	` + where + `
		ORDER BY ea.created_at, ea.id
	` + limitOffset(f.Limit, f.Offset, &args)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]estadoanimal.EstadoAnimal, 0)
	for rows.Next() {
		var e estadoanimal.EstadoAnimal
		if err := rows.Scan(
			&e.ID, &e.AnimalID, &e.EstadoID, &e.FechaFallecimiento,
			&e.CreatedAt, &e.UpdatedAt,
			&e.EstadoNombre, &e.AnimalNombre,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EstadoAnimalRepo) Count(ctx context.Context, f estadoanimal.ListFilter) (int, error) {
	args := []any{}
	where := ""
	if f.EstadoID != "" {
		where = " WHERE ea.estado_id = $1"
		args = append(args, f.EstadoID)
	}
	var n int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM estado_animal ea%s`, where), args...).Scan(&n)
	return n, err
}

func scanEstadoAnimal(row rowScanner) (estadoanimal.EstadoAnimal, error) {
	var e estadoanimal.EstadoAnimal
	err := row.Scan(
		&e.ID, &e.AnimalID, &e.EstadoID, &e.FechaFallecimiento,
		&e.CreatedAt, &e.UpdatedAt,
		&e.EstadoNombre, &e.AnimalNombre,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return estadoanimal.EstadoAnimal{}, estadoanimal.ErrNotFound
	}
	return e, err
}
