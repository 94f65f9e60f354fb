package repository

import (
	"context"
	"database/sql"
	"fmt"

	"comandero/internal/domain"
	"comandero/internal/errors"
)

type MySQLMesaRepository struct {
	db *sql.DB
}

func NewMySQLMesaRepository(db *sql.DB) *MySQLMesaRepository {
	return &MySQLMesaRepository{db: db}
}

func scanMesa(scan func(dest ...any) error) (*domain.Mesa, error) {
	var m domain.Mesa
	var estado string
	if err := scan(&m.ID, &m.Capacidad, &m.Ubicacion, &estado); err != nil {
		return nil, err
	}
	// Legacy rows carry spelling variants ("Ocupada"); normalize once here.
	parsed, err := domain.ParseMesaStatus(estado)
	if err != nil {
		return nil, err
	}
	m.Estado = parsed
	return &m, nil
}

func (r *MySQLMesaRepository) FindByID(ctx context.Context, id int) (*domain.Mesa, error) {
	query := `SELECT idMesa, capacidad, ubicacion, estado FROM Mesa WHERE idMesa = ?`

	m, err := scanMesa(r.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("mesa with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying mesa by id: %w", err)
	}

	return m, nil
}

// FindByIDTx reads the mesa inside the caller's transaction, locking the row
// so occupancy flips serialize with the comanda mutation they accompany.
func (r *MySQLMesaRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error) {
	query := `SELECT idMesa, capacidad, ubicacion, estado FROM Mesa WHERE idMesa = ? FOR UPDATE`

	m, err := scanMesa(tx.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("mesa with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying mesa for update: %w", err)
	}

	return m, nil
}

func (r *MySQLMesaRepository) UpdateEstado(ctx context.Context, tx *sql.Tx, id int, estado domain.MesaStatus) error {
	query := `UPDATE Mesa SET estado = ? WHERE idMesa = ?`

	result, err := tx.ExecContext(ctx, query, string(estado), id)
	if err != nil {
		return fmt.Errorf("updating mesa estado: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("mesa with id %d not found", id))
	}

	return nil
}

func (r *MySQLMesaRepository) ListDisponibles(ctx context.Context) ([]domain.Mesa, error) {
	query := `SELECT idMesa, capacidad, ubicacion, estado FROM Mesa WHERE estado = ? ORDER BY idMesa`
	return r.list(ctx, query, string(domain.MesaStatusDisponible))
}

// ListByCapacidadMinima finds free mesas that seat at least the requested
// party size.
func (r *MySQLMesaRepository) ListByCapacidadMinima(ctx context.Context, capacidad int) ([]domain.Mesa, error) {
	query := `SELECT idMesa, capacidad, ubicacion, estado FROM Mesa WHERE estado = ? AND capacidad >= ? ORDER BY capacidad`
	return r.list(ctx, query, string(domain.MesaStatusDisponible), capacidad)
}

func (r *MySQLMesaRepository) list(ctx context.Context, query string, args ...any) ([]domain.Mesa, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying mesas: %w", err)
	}
	defer rows.Close()

	var mesas []domain.Mesa
	for rows.Next() {
		m, err := scanMesa(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning mesa row: %w", err)
		}
		mesas = append(mesas, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mesa rows: %w", err)
	}

	return mesas, nil
}
