package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ganado-api/internal/domain/historial"
)

type HistorialRepo struct {
	db *sql.DB
}

func NewHistorialRepo(db *sql.DB) *HistorialRepo {
	return &HistorialRepo{db: db}
}

const eventoColumns = `
	h.id, h.animal_id, h.tipo_evento, h.descripcion,
	h.fecha_aplicacion, h.proxima_fecha, h.hecho_por,
	h.created_at, h.updated_at,
	COALESCE(a.nombre, ''), COALESCE(u.nombre, '')
`

func (r *HistorialRepo) Create(ctx context.Context, e historial.Evento) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO historial_veterinario (
			id, animal_id, tipo_evento, descripcion,
			fecha_aplicacion, proxima_fecha, hecho_por,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		e.ID, e.AnimalID, e.TipoEvento, e.Descripcion,
		e.FechaAplicacion, e.ProximaFecha, nullIfEmpty(e.HechoPor),
		e.CreatedAt, e.UpdatedAt,
	)
	if isFKViolation(err) {
		return historial.ErrReferencia
	}
	return err
}

func (r *HistorialRepo) Update(ctx context.Context, e historial.Evento) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE historial_veterinario
		SET tipo_evento = $2, descripcion = $3,
		    fecha_aplicacion = $4, proxima_fecha = $5, hecho_por = $6,
		    updated_at = $7
		WHERE id = $1
	`,
		e.ID, e.TipoEvento, e.Descripcion,
		e.FechaAplicacion, e.ProximaFecha, nullIfEmpty(e.HechoPor),
		e.UpdatedAt,
	)
	if err != nil {
		if isFKViolation(err) {
			return historial.ErrReferencia
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return historial.ErrNotFound
	}
	return nil
}

func (r *HistorialRepo) GetByID(ctx context.Context, id string) (historial.Evento, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventoColumns+`
		FROM historial_veterinario h
		LEFT JOIN animales a ON a.id = h.animal_id
		LEFT JOIN usuarios u ON u.id = h.hecho_por
		WHERE h.id = $1
	`, id)
	return scanEvento(row)
}

func (r *HistorialRepo) List(ctx context.Context, f historial.ListFilter) ([]historial.Evento, error) {
	where, args := eventoWhere(f)
	query := `
		SELECT ` + eventoColumns + `
		FROM historial_veterinario h
		LEFT JOIN animales a ON a.id = h.animal_id
		LEFT JOIN usuarios u ON u.id = h.hecho_por
	` + where + `
		ORDER BY h.fecha_aplicacion, h.id
	` + limitOffset(f.Limit, f.Offset, &args)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]historial.Evento, 0)
	for rows.Next() {
		e, err := scanEvento(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *HistorialRepo) Count(ctx context.Context, f historial.ListFilter) (int, error) {
	where, args := eventoWhere(f)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM historial_veterinario h`+where, args...).Scan(&n)
	return n, err
}

func (r *HistorialRepo) ListByAnimal(ctx context.Context, animalID string) ([]historial.Evento, error) {
	return r.List(ctx, historial.ListFilter{AnimalID: animalID})
}

func (r *HistorialRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM historial_veterinario WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return historial.ErrNotFound
	}
	return nil
}

func scanEvento(row rowScanner) (historial.Evento, error) {
	var e historial.Evento
	var hechoPor sql.NullString
	err := row.Scan(
		&e.ID, &e.AnimalID, &e.TipoEvento, &e.Descripcion,
		&e.FechaAplicacion, &e.ProximaFecha, &hechoPor,
		&e.CreatedAt, &e.UpdatedAt,
		&e.AnimalNombre, &e.HechoPorNombre,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return historial.Evento{}, historial.ErrNotFound
	}
	e.HechoPor = hechoPor.String
	return e, err
}

func eventoWhere(f historial.ListFilter) (string, []any) {
	conds := []string{}
	args := []any{}
	argN := 1

	if f.AnimalID != "" {
		conds = append(conds, fmt.Sprintf("h.animal_id = $%d", argN))
		args = append(args, f.AnimalID)
		argN++
	}
	if f.TipoEvento != "" {
		conds = append(conds, fmt.Sprintf("h.tipo_evento = $%d", argN))
		args = append(args, f.TipoEvento)
		argN++
	}
	if f.Desde != nil {
		conds = append(conds, fmt.Sprintf("h.fecha_aplicacion >= $%d", argN))
		args = append(args, *f.Desde)
		argN++
	}
	if f.Hasta != nil {
		conds = append(conds, fmt.Sprintf("h.fecha_aplicacion <= $%d", argN))
		args = append(args, *f.Hasta)
		argN++
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
