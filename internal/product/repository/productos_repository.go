package repository

import (
	"context"
	"database/sql"
	"fmt"

	"comandero/internal/domain"
	"comandero/internal/errors"
)

type MySQLProductoRepository struct {
	db *sql.DB
}

func NewMySQLProductoRepository(db *sql.DB) *MySQLProductoRepository {
	return &MySQLProductoRepository{db: db}
}

const productoColumns = `idProducto, nombre, precio, stock, activo, categoriaId, createdAt, updatedAt`

func scanProducto(row *sql.Row) (*domain.Producto, error) {
	var p domain.Producto
	err := row.Scan(
		&p.ID, &p.Nombre, &p.Precio, &p.Stock, &p.Activo, &p.CategoriaID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLProductoRepository) FindByID(ctx context.Context, id int) (*domain.Producto, error) {
	query := fmt.Sprintf(`SELECT %s FROM Producto WHERE idProducto = ?`, productoColumns)

	p, err := scanProducto(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("producto with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying producto by id: %w", err)
	}

	return p, nil
}

// FindByIDForUpdate locks the producto row for the rest of the transaction.
// Callers performing the stock check-then-adjust sequence must read through
// this method so concurrent reservations serialize per product.
func (r *MySQLProductoRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Producto, error) {
	query := fmt.Sprintf(`SELECT %s FROM Producto WHERE idProducto = ? FOR UPDATE`, productoColumns)

	p, err := scanProducto(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("producto with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying producto for update: %w", err)
	}

	return p, nil
}

// AdjustStock applies a signed delta to the producto's stock. The WHERE
// guard keeps stock from ever going below zero even if a caller's check
// was wrong; zero rows affected means the guard (or the id) rejected it.
func (r *MySQLProductoRepository) AdjustStock(ctx context.Context, tx *sql.Tx, id int, delta int) error {
	query := `UPDATE Producto SET stock = stock + ? WHERE idProducto = ? AND stock + ? >= 0`

	result, err := tx.ExecContext(ctx, query, delta, id, delta)
	if err != nil {
		return fmt.Errorf("adjusting producto stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewInternalError(
			fmt.Sprintf("stock adjustment of %d rejected for producto %d", delta, id), nil)
	}

	return nil
}

func (r *MySQLProductoRepository) ListActivos(ctx context.Context) ([]domain.Producto, error) {
	query := fmt.Sprintf(`SELECT %s FROM Producto WHERE activo = 1 ORDER BY nombre`, productoColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying productos: %w", err)
	}
	defer rows.Close()

	var productos []domain.Producto
	for rows.Next() {
		var p domain.Producto
		err := rows.Scan(
			&p.ID, &p.Nombre, &p.Precio, &p.Stock, &p.Activo, &p.CategoriaID,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning producto row: %w", err)
		}
		productos = append(productos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating producto rows: %w", err)
	}

	return productos, nil
}
