package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"comandero/internal/domain"
	"comandero/internal/errors"
)

type MySQLComandaRepository struct {
	db *sql.DB
}

func NewMySQLComandaRepository(db *sql.DB) *MySQLComandaRepository {
	return &MySQLComandaRepository{db: db}
}

const comandaColumns = `idComanda, idMesa, idMesero, idCocinero, estado, pagada, fecha`

func scanComanda(scan func(dest ...any) error) (*domain.Comanda, error) {
	var c domain.Comanda
	var estado string
	if err := scan(&c.ID, &c.MesaID, &c.MeseroID, &c.CocineroID, &estado, &c.Pagada, &c.Fecha); err != nil {
		return nil, err
	}
	parsed, err := domain.ParseComandaStatus(estado)
	if err != nil {
		return nil, err
	}
	c.Estado = parsed
	return &c, nil
}

func (r *MySQLComandaRepository) FindByID(ctx context.Context, id int) (*domain.Comanda, error) {
	query := fmt.Sprintf(`SELECT %s FROM Comanda WHERE idComanda = ?`, comandaColumns)

	c, err := scanComanda(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("comanda with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying comanda by id: %w", err)
	}

	return c, nil
}

// FindByIDTx locks the comanda row so status transitions and the pagada
// flip serialize with concurrent writers.
func (r *MySQLComandaRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error) {
	query := fmt.Sprintf(`SELECT %s FROM Comanda WHERE idComanda = ? FOR UPDATE`, comandaColumns)

	c, err := scanComanda(tx.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("comanda with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying comanda for update: %w", err)
	}

	return c, nil
}

func (r *MySQLComandaRepository) Insert(ctx context.Context, tx *sql.Tx, c domain.Comanda) (int, error) {
	query := `INSERT INTO Comanda (idMesa, idMesero, idCocinero, estado, pagada, fecha) VALUES (?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, c.MesaID, c.MeseroID, c.CocineroID, string(c.Estado), c.Pagada, c.Fecha)
	if err != nil {
		return 0, fmt.Errorf("inserting comanda: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(lastInsertID), nil
}

func (r *MySQLComandaRepository) UpdateEstado(ctx context.Context, tx *sql.Tx, id int, estado domain.ComandaStatus) error {
	return r.exec(ctx, tx, id, `UPDATE Comanda SET estado = ? WHERE idComanda = ?`, string(estado), id)
}

func (r *MySQLComandaRepository) UpdateCocinero(ctx context.Context, tx *sql.Tx, id int, cocineroID string) error {
	return r.exec(ctx, tx, id, `UPDATE Comanda SET idCocinero = ? WHERE idComanda = ?`, cocineroID, id)
}

func (r *MySQLComandaRepository) UpdatePagada(ctx context.Context, tx *sql.Tx, id int, pagada bool) error {
	return r.exec(ctx, tx, id, `UPDATE Comanda SET pagada = ? WHERE idComanda = ?`, pagada, id)
}

func (r *MySQLComandaRepository) Delete(ctx context.Context, tx *sql.Tx, id int) error {
	return r.exec(ctx, tx, id, `DELETE FROM Comanda WHERE idComanda = ?`, id)
}

func (r *MySQLComandaRepository) exec(ctx context.Context, tx *sql.Tx, id int, query string, args ...any) error {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating comanda: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("comanda with id %d not found", id))
	}

	return nil
}

func (r *MySQLComandaRepository) ListByMesa(ctx context.Context, mesaID int) ([]domain.Comanda, error) {
	query := fmt.Sprintf(`SELECT %s FROM Comanda WHERE idMesa = ? ORDER BY fecha`, comandaColumns)
	return r.queryList(ctx, r.db.QueryContext, query, mesaID)
}

// ListByMesaTx locks every comanda of the mesa for the caller's transaction;
// the bulk finalize and mark-paid operations read through this so they see a
// consistent set.
func (r *MySQLComandaRepository) ListByMesaTx(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error) {
	query := fmt.Sprintf(`SELECT %s FROM Comanda WHERE idMesa = ? ORDER BY fecha FOR UPDATE`, comandaColumns)
	return r.queryList(ctx, tx.QueryContext, query, mesaID)
}

func (r *MySQLComandaRepository) ListByMesero(ctx context.Context, meseroID string) ([]domain.Comanda, error) {
	query := fmt.Sprintf(`SELECT %s FROM Comanda WHERE idMesero = ? ORDER BY fecha`, comandaColumns)
	return r.queryList(ctx, r.db.QueryContext, query, meseroID)
}

func (r *MySQLComandaRepository) ListByEstado(ctx context.Context, estado domain.ComandaStatus) ([]domain.Comanda, error) {
	query := fmt.Sprintf(`SELECT %s FROM Comanda WHERE estado = ? ORDER BY fecha`, comandaColumns)
	return r.queryList(ctx, r.db.QueryContext, query, string(estado))
}

func (r *MySQLComandaRepository) ListByFechaRange(ctx context.Context, desde, hasta time.Time) ([]domain.Comanda, error) {
	query := fmt.Sprintf(`SELECT %s FROM Comanda WHERE fecha BETWEEN ? AND ? ORDER BY fecha`, comandaColumns)
	return r.queryList(ctx, r.db.QueryContext, query, desde, hasta)
}

func (r *MySQLComandaRepository) CountByEstado(ctx context.Context, estado domain.ComandaStatus) (int, error) {
	query := `SELECT COUNT(*) FROM Comanda WHERE estado = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, string(estado)).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting comandas: %w", err)
	}
	return count, nil
}

// SumVentasBetween totals every detalle subtotal of comandas in the date
// range, cancelled lines included, mirroring how order totals are computed.
func (r *MySQLComandaRepository) SumVentasBetween(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(d.subtotal), 0)
		FROM Comanda c
		JOIN DetalleComanda d ON d.idComanda = c.idComanda
		WHERE c.fecha BETWEEN ? AND ?
	`

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, desde, hasta).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing ventas: %w", err)
	}
	return total, nil
}

type queryFunc func(ctx context.Context, query string, args ...any) (*sql.Rows, error)

func (r *MySQLComandaRepository) queryList(ctx context.Context, query queryFunc, q string, args ...any) ([]domain.Comanda, error) {
	rows, err := query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying comandas: %w", err)
	}
	defer rows.Close()

	var comandas []domain.Comanda
	for rows.Next() {
		c, err := scanComanda(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning comanda row: %w", err)
		}
		comandas = append(comandas, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comanda rows: %w", err)
	}

	return comandas, nil
}
