package repository

import (
	"context"
	"database/sql"
	"fmt"

	"comandero/internal/domain"
	"comandero/internal/errors"
)

// MySQLStaffRepository is the core's read-only view into the usuario
// subsystem; user CRUD lives elsewhere.
type MySQLStaffRepository struct {
	db *sql.DB
}

func NewMySQLStaffRepository(db *sql.DB) *MySQLStaffRepository {
	return &MySQLStaffRepository{db: db}
}

func (r *MySQLStaffRepository) FindByID(ctx context.Context, id string) (*domain.Staff, error) {
	query := `SELECT idUsuario, nombre, rol FROM Usuario WHERE idUsuario = ?`

	var s domain.Staff
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Nombre, &s.Rol)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("usuario with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying usuario by id: %w", err)
	}

	return &s, nil
}

func (r *MySQLStaffRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT 1 FROM Usuario WHERE idUsuario = ?`

	var one int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking usuario existence: %w", err)
	}

	return true, nil
}
