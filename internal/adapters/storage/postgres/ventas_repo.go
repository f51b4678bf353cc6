package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ganado-api/internal/domain/ventas"
)

type VentasRepo struct {
	db *sql.DB
}

func NewVentasRepo(db *sql.DB) *VentasRepo {
	return &VentasRepo{db: db}
}

const ventaColumns = `
	v.id, v.animal_id, v.fecha_venta,
	v.precio_unitario, v.cantidad, v.subtotal,
	v.impuesto_porcentaje, v.impuesto, v.total,
	v.tipo_venta, v.comprador, v.vendedor, v.metodo_pago,
	v.registrado_por, v.observaciones,
	v.created_at, v.updated_at,
	COALESCE(a.nombre, ''), COALESCE(u.nombre, '')
`

// CreateConEstado inserta la venta y pasa el animal a "vendida" en una
// transacción. Si el UPDATE de estado no toca ninguna fila, se revierte
// todo: una venta sin cambio de estado no puede quedar.
func (r *VentasRepo) CreateConEstado(ctx context.Context, v ventas.Venta, estadoVendidaID string) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ventas (
				id, animal_id, fecha_venta,
				precio_unitario, cantidad, subtotal,
				impuesto_porcentaje, impuesto, total,
				tipo_venta, comprador, vendedor, metodo_pago,
				registrado_por, observaciones,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		`,
			v.ID, v.AnimalID, v.FechaVenta,
			v.PrecioUnitario, v.Cantidad, v.Subtotal,
			v.ImpuestoPorcentaje, v.Impuesto, v.Total,
			v.TipoVenta, v.Comprador, v.Vendedor, v.MetodoPago,
			nullIfEmpty(v.RegistradoPor), v.Observaciones,
			v.CreatedAt, v.UpdatedAt,
		)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE estado_animal
			SET estado_id = $2, updated_at = $3
			WHERE animal_id = $1
		`, v.AnimalID, estadoVendidaID, v.CreatedAt)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return ventas.ErrEstadoInconsistente
		}
		return nil
	})
	if isUniqueViolation(err) {
		return ventas.ErrVentaDuplicada
	}
	if isFKViolation(err) {
		return ventas.ErrReferencia
	}
	return err
}

// DeleteConEstado borra la venta y devuelve el animal a "viva" en una
// transacción.
func (r *VentasRepo) DeleteConEstado(ctx context.Context, id, animalID, estadoVivaID string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM ventas WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return ventas.ErrNotFound
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE estado_animal
			SET estado_id = $2, fecha_fallecimiento = NULL, updated_at = now()
			WHERE animal_id = $1
		`, animalID, estadoVivaID)
		return err
	})
}

func (r *VentasRepo) Update(ctx context.Context, v ventas.Venta) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ventas
		SET fecha_venta = $2,
		    precio_unitario = $3, cantidad = $4, subtotal = $5,
		    impuesto_porcentaje = $6, impuesto = $7, total = $8,
		    tipo_venta = $9, comprador = $10, vendedor = $11, metodo_pago = $12,
		    observaciones = $13, updated_at = $14
		WHERE id = $1
	`,
		v.ID, v.FechaVenta,
		v.PrecioUnitario, v.Cantidad, v.Subtotal,
		v.ImpuestoPorcentaje, v.Impuesto, v.Total,
		v.TipoVenta, v.Comprador, v.Vendedor, v.MetodoPago,
		v.Observaciones, v.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ventas.ErrNotFound
	}
	return nil
}

func (r *VentasRepo) GetByID(ctx context.Context, id string) (ventas.Venta, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+ventaColumns+`
		FROM ventas v
		LEFT JOIN animales a ON a.id = v.animal_id
		LEFT JOIN usuarios u ON u.id = v.registrado_por
		WHERE v.id = $1
	`, id)
	return scanVenta(row)
}

func (r *VentasRepo) GetByAnimal(ctx context.Context, animalID string) (ventas.Venta, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+ventaColumns+`
		FROM ventas v
		LEFT JOIN animales a ON a.id = v.animal_id
		LEFT JOIN usuarios u ON u.id = v.registrado_por
		WHERE v.animal_id = $1
	`, animalID)
	return scanVenta(row)
}

func (r *VentasRepo) List(ctx context.Context, f ventas.ListFilter) ([]ventas.Venta, error) {
	where, args := ventaWhere(f)
	query := `
		SELECT ` + ventaColumns + `
		FROM ventas v
		LEFT JOIN animales a ON a.id = v.animal_id
		LEFT JOIN usuarios u ON u.id = v.registrado_por
	` + where + `
		ORDER BY v.fecha_venta, v.id
	` + limitOffset(f.Limit, f.Offset, &args)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ventas.Venta, 0)
	for rows.Next() {
		v, err := scanVenta(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VentasRepo) Count(ctx context.Context, f ventas.ListFilter) (int, error) {
	where, args := ventaWhere(f)
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ventas v`+where, args...).Scan(&n)
	return n, err
}

func scanVenta(row rowScanner) (ventas.Venta, error) {
	var v ventas.Venta
	var registradoPor sql.NullString
	err := row.Scan(
		&v.ID, &v.AnimalID, &v.FechaVenta,
		&v.PrecioUnitario, &v.Cantidad, &v.Subtotal,
		&v.ImpuestoPorcentaje, &v.Impuesto, &v.Total,
		&v.TipoVenta, &v.Comprador, &v.Vendedor, &v.MetodoPago,
		&registradoPor, &v.Observaciones,
		&v.CreatedAt, &v.UpdatedAt,
		&v.AnimalNombre, &v.RegistradoPorNombre,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ventas.Venta{}, ventas.ErrNotFound
	}
	v.RegistradoPor = registradoPor.String
	return v, err
}

func ventaWhere(f ventas.ListFilter) (string, []any) {
	conds := []string{}
	args := []any{}
	argN := 1

	if f.AnimalID != "" {
		conds = append(conds, fmt.Sprintf("v.animal_id = $%d", argN))
		args = append(args, f.AnimalID)
		argN++
	}
	if f.TipoVenta != "" {
		conds = append(conds, fmt.Sprintf("v.tipo_venta = $%d", argN))
		args = append(args, f.TipoVenta)
		argN++
	}
	if f.Comprador != "" {
		conds = append(conds, fmt.Sprintf("v.comprador = $%d", argN))
		args = append(args, f.Comprador)
		argN++
	}
	if f.MetodoPago != "" {
		conds = append(conds, fmt.Sprintf("v.metodo_pago = $%d", argN))
		args = append(args, f.MetodoPago)
		argN++
	}
	if f.Desde != nil {
		conds = append(conds, fmt.Sprintf("v.fecha_venta >= $%d", argN))
		args = append(args, *f.Desde)
		argN++
	}
	if f.Hasta != nil {
		conds = append(conds, fmt.Sprintf("v.fecha_venta <= $%d", argN))
		args = append(args, *f.Hasta)
		argN++
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
