package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ganado-api/internal/domain/recordatorios"
)

type RecordatoriosRepo struct {
	db *sql.DB
}

func NewRecordatoriosRepo(db *sql.DB) *RecordatoriosRepo {
	return &RecordatoriosRepo{db: db}
}

const recordatorioColumns = `
	r.id, r.animal_id, r.titulo, r.descripcion, r.fecha, r.estado,
	r.origen_tipo, r.origen_id,
	r.created_at, r.updated_at,
	COALESCE(a.nombre, '')
`

func (r *RecordatoriosRepo) Create(ctx context.Context, rec recordatorios.Recordatorio) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recordatorios (id, animal_id, titulo, descripcion, fecha, estado, origen_tipo, origen_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, rec.ID, rec.AnimalID, rec.Titulo, rec.Descripcion, rec.Fecha, string(rec.Estado),
		nullIfEmpty(rec.OrigenTipo), nullIfEmpty(rec.OrigenID), rec.CreatedAt, rec.UpdatedAt)
	if isFKViolation(err) {
		return recordatorios.ErrReferencia
	}
	return err
}

func (r *RecordatoriosRepo) Update(ctx context.Context, rec recordatorios.Recordatorio) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recordatorios
		SET titulo = $2, descripcion = $3, fecha = $4, estado = $5, updated_at = $6
		WHERE id = $1
	`, rec.ID, rec.Titulo, rec.Descripcion, rec.Fecha, string(rec.Estado), rec.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return recordatorios.ErrNotFound
	}
	return nil
}

func (r *RecordatoriosRepo) UpdateEstado(ctx context.Context, id string, estado recordatorios.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recordatorios
		SET estado = $2, updated_at = now()
		WHERE id = $1
	`, id, string(estado))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return recordatorios.ErrNotFound
	}
	return nil
}

func (r *RecordatoriosRepo) GetByID(ctx context.Context, id string) (recordatorios.Recordatorio, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordatorioColumns+`
		FROM recordatorios r
		LEFT JOIN animales a ON a.id = r.animal_id
		WHERE r.id = $1
	`, id)
	return scanRecordatorio(row)
}

func (r *RecordatoriosRepo) List(ctx context.Context, f recordatorios.ListFilter) ([]recordatorios.Recordatorio, error) {
	where, args := recordatorioWhere(f)
	query := `
		SELECT ` + recordatorioColumns + `
		FROM recordatorios r
		LEFT JOIN animales a ON a.id = r.animal_id
	` + where + `
		ORDER BY r.fecha, r.id
	` + limitOffset(f.Limit, f.Offset, &args)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]recordatorios.Recordatorio, 0)
	for rows.Next() {
		rec, err := scanRecordatorio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RecordatoriosRepo) Count(ctx context.Context, f recordatorios.ListFilter) (int, error) {
	where, args := recordatorioWhere(f)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recordatorios r`+where, args...).Scan(&n)
	return n, err
}

func (r *RecordatoriosRepo) ListByAnimal(ctx context.Context, animalID string) ([]recordatorios.Recordatorio, error) {
	return r.List(ctx, recordatorios.ListFilter{AnimalID: animalID})
}

func (r *RecordatoriosRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recordatorios WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return recordatorios.ErrNotFound
	}
	return nil
}

func scanRecordatorio(row rowScanner) (recordatorios.Recordatorio, error) {
	var rec recordatorios.Recordatorio
	var estado string
	var origenTipo, origenID sql.NullString
	err := row.Scan(
		&rec.ID, &rec.AnimalID, &rec.Titulo, &rec.Descripcion, &rec.Fecha, &estado,
		&origenTipo, &origenID,
		&rec.CreatedAt, &rec.UpdatedAt,
		&rec.AnimalNombre,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return recordatorios.Recordatorio{}, recordatorios.ErrNotFound
	}
	rec.Estado = recordatorios.Status(estado)
	rec.OrigenTipo = origenTipo.String
	rec.OrigenID = origenID.String
	return rec, err
}

func recordatorioWhere(f recordatorios.ListFilter) (string, []any) {
	conds := []string{}
	args := []any{}
	argN := 1

	if f.AnimalID != "" {
		conds = append(conds, fmt.Sprintf("r.animal_id = $%d", argN))
		args = append(args, f.AnimalID)
		argN++
	}
	if f.Estado != "" {
		conds = append(conds, fmt.Sprintf("r.estado = $%d", argN))
		args = append(args, string(f.Estado))
		argN++
	}
	if f.Desde != nil {
		conds = append(conds, fmt.Sprintf("r.fecha >= $%d", argN))
		args = append(args, *f.Desde)
		argN++
	}
	if f.Hasta != nil {
		conds = append(conds, fmt.Sprintf("r.fecha <= $%d", argN))
		args = append(args, *f.Hasta)
		argN++
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
