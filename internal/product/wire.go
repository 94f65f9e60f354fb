package product

import (
	"database/sql"

	"go.uber.org/zap"

	"comandero/internal/product/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger) *Controller {
	repo := repository.NewMySQLProductoRepository(db)
	return NewController(repo, logger)
}
