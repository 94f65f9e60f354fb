package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"comandero/internal/domain"
	"comandero/internal/errors"
)

type MySQLDetalleRepository struct {
	db *sql.DB
}

func NewMySQLDetalleRepository(db *sql.DB) *MySQLDetalleRepository {
	return &MySQLDetalleRepository{db: db}
}

const detalleColumns = `idDetalle, idComanda, idProducto, cantidad, precioUnitario, subtotal, estado`

func scanDetalle(scan func(dest ...any) error) (*domain.Detalle, error) {
	var d domain.Detalle
	var estado string
	err := scan(&d.ID, &d.ComandaID, &d.ProductoID, &d.Cantidad, &d.PrecioUnitario, &d.Subtotal, &estado)
	if err != nil {
		return nil, err
	}
	parsed, err := domain.ParseDetalleStatus(estado)
	if err != nil {
		return nil, err
	}
	d.Estado = parsed
	return &d, nil
}

func (r *MySQLDetalleRepository) FindByID(ctx context.Context, id int) (*domain.Detalle, error) {
	query := fmt.Sprintf(`SELECT %s FROM DetalleComanda WHERE idDetalle = ?`, detalleColumns)

	d, err := scanDetalle(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("detalle with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying detalle by id: %w", err)
	}

	return d, nil
}

func (r *MySQLDetalleRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Detalle, error) {
	query := fmt.Sprintf(`SELECT %s FROM DetalleComanda WHERE idDetalle = ? FOR UPDATE`, detalleColumns)

	d, err := scanDetalle(tx.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("detalle with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying detalle for update: %w", err)
	}

	return d, nil
}

// FindByComandaAndProducto supports the merge-on-duplicate path. Unlike the
// other finders it returns (nil, nil) when no row exists, because absence is
// the normal case there, not an error.
func (r *MySQLDetalleRepository) FindByComandaAndProducto(ctx context.Context, tx *sql.Tx, comandaID, productoID int) (*domain.Detalle, error) {
	query := fmt.Sprintf(`SELECT %s FROM DetalleComanda WHERE idComanda = ? AND idProducto = ? FOR UPDATE`, detalleColumns)

	d, err := scanDetalle(tx.QueryRowContext(ctx, query, comandaID, productoID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying detalle by comanda and producto: %w", err)
	}

	return d, nil
}

func (r *MySQLDetalleRepository) Insert(ctx context.Context, tx *sql.Tx, d domain.Detalle) (int, error) {
	query := `INSERT INTO DetalleComanda (idComanda, idProducto, cantidad, precioUnitario, subtotal, estado) VALUES (?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, d.ComandaID, d.ProductoID, d.Cantidad, d.PrecioUnitario, d.Subtotal, string(d.Estado))
	if err != nil {
		return 0, fmt.Errorf("inserting detalle: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLDetalleRepository) Update(ctx context.Context, tx *sql.Tx, d domain.Detalle) error {
	query := `UPDATE DetalleComanda SET cantidad = ?, precioUnitario = ?, subtotal = ?, estado = ? WHERE idDetalle = ?`

	result, err := tx.ExecContext(ctx, query, d.Cantidad, d.PrecioUnitario, d.Subtotal, string(d.Estado), d.ID)
	if err != nil {
		return fmt.Errorf("updating detalle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("detalle with id %d not found", d.ID))
	}

	return nil
}

func (r *MySQLDetalleRepository) Delete(ctx context.Context, tx *sql.Tx, id int) error {
	query := `DELETE FROM DetalleComanda WHERE idDetalle = ?`

	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting detalle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("detalle with id %d not found", id))
	}

	return nil
}

// DeleteByComanda removes every detalle of the comanda; used by the comanda
// delete path after stock has been restored per line.
func (r *MySQLDetalleRepository) DeleteByComanda(ctx context.Context, tx *sql.Tx, comandaID int) error {
	query := `DELETE FROM DetalleComanda WHERE idComanda = ?`

	if _, err := tx.ExecContext(ctx, query, comandaID); err != nil {
		return fmt.Errorf("deleting detalles by comanda: %w", err)
	}
	return nil
}

func (r *MySQLDetalleRepository) ListByComanda(ctx context.Context, comandaID int) ([]domain.Detalle, error) {
	query := fmt.Sprintf(`SELECT %s FROM DetalleComanda WHERE idComanda = ? ORDER BY idDetalle`, detalleColumns)
	return r.queryList(ctx, r.db.QueryContext, query, comandaID)
}

func (r *MySQLDetalleRepository) ListByComandaTx(ctx context.Context, tx *sql.Tx, comandaID int) ([]domain.Detalle, error) {
	query := fmt.Sprintf(`SELECT %s FROM DetalleComanda WHERE idComanda = ? ORDER BY idDetalle FOR UPDATE`, detalleColumns)
	return r.queryList(ctx, tx.QueryContext, query, comandaID)
}

func (r *MySQLDetalleRepository) ListByProducto(ctx context.Context, productoID int) ([]domain.Detalle, error) {
	query := fmt.Sprintf(`SELECT %s FROM DetalleComanda WHERE idProducto = ? ORDER BY idDetalle`, detalleColumns)
	return r.queryList(ctx, r.db.QueryContext, query, productoID)
}

func (r *MySQLDetalleRepository) ListBySubtotalRange(ctx context.Context, minimo, maximo decimal.Decimal) ([]domain.Detalle, error) {
	query := fmt.Sprintf(`SELECT %s FROM DetalleComanda WHERE subtotal BETWEEN ? AND ? ORDER BY subtotal`, detalleColumns)
	return r.queryList(ctx, r.db.QueryContext, query, minimo, maximo)
}

func (r *MySQLDetalleRepository) CountByComanda(ctx context.Context, comandaID int) (int, error) {
	query := `SELECT COUNT(*) FROM DetalleComanda WHERE idComanda = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, comandaID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting detalles: %w", err)
	}
	return count, nil
}

func (r *MySQLDetalleRepository) CountByComandaTx(ctx context.Context, tx *sql.Tx, comandaID int) (int, error) {
	query := `SELECT COUNT(*) FROM DetalleComanda WHERE idComanda = ?`

	var count int
	if err := tx.QueryRowContext(ctx, query, comandaID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting detalles: %w", err)
	}
	return count, nil
}

// SumSubtotalsByComanda is the comanda total: every line counts regardless
// of the line's estado, cancelled included.
func (r *MySQLDetalleRepository) SumSubtotalsByComanda(ctx context.Context, comandaID int) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(subtotal), 0) FROM DetalleComanda WHERE idComanda = ?`

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, comandaID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing subtotals: %w", err)
	}
	return total, nil
}

func (r *MySQLDetalleRepository) SumSubtotalsByComandaTx(ctx context.Context, tx *sql.Tx, comandaID int) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(subtotal), 0) FROM DetalleComanda WHERE idComanda = ?`

	var total decimal.Decimal
	if err := tx.QueryRowContext(ctx, query, comandaID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing subtotals: %w", err)
	}
	return total, nil
}

// ProductoVendido is one row of the best-sellers report.
type ProductoVendido struct {
	ProductoID    int
	Nombre        string
	CantidadTotal int
}

func (r *MySQLDetalleRepository) TopProductosVendidos(ctx context.Context, limite int) ([]ProductoVendido, error) {
	query := `
		SELECT d.idProducto, p.nombre, SUM(d.cantidad) AS cantidadTotal
		FROM DetalleComanda d
		JOIN Producto p ON p.idProducto = d.idProducto
		GROUP BY d.idProducto, p.nombre
		ORDER BY cantidadTotal DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limite)
	if err != nil {
		return nil, fmt.Errorf("querying productos vendidos: %w", err)
	}
	defer rows.Close()

	var ventas []ProductoVendido
	for rows.Next() {
		var v ProductoVendido
		if err := rows.Scan(&v.ProductoID, &v.Nombre, &v.CantidadTotal); err != nil {
			return nil, fmt.Errorf("scanning producto vendido row: %w", err)
		}
		ventas = append(ventas, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating producto vendido rows: %w", err)
	}

	return ventas, nil
}

type queryFunc func(ctx context.Context, query string, args ...any) (*sql.Rows, error)

func (r *MySQLDetalleRepository) queryList(ctx context.Context, query queryFunc, q string, args ...any) ([]domain.Detalle, error) {
	rows, err := query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying detalles: %w", err)
	}
	defer rows.Close()

	var detalles []domain.Detalle
	for rows.Next() {
		d, err := scanDetalle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning detalle row: %w", err)
		}
		detalles = append(detalles, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating detalle rows: %w", err)
	}

	return detalles, nil
}
