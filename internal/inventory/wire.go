package inventory

import (
	"database/sql"

	"go.uber.org/zap"

	"comandero/internal/config"
	"comandero/internal/infrastructure/mysql"
	"comandero/internal/inventory/controller"
	inventoryrepo "comandero/internal/inventory/repository"
	"comandero/internal/inventory/service"
	"comandero/internal/inventory/usecase"
	orderrepo "comandero/internal/order/repository"
	productrepo "comandero/internal/product/repository"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.DetalleController {
	txr := mysql.NewTxRunner(db)
	detalleRepo := inventoryrepo.NewMySQLDetalleRepository(db)
	productoRepo := productrepo.NewMySQLProductoRepository(db)
	comandaRepo := orderrepo.NewMySQLComandaRepository(db)

	ledgerSvc := service.NewLedgerService(
		txr,
		productoRepo,
		detalleRepo,
		comandaRepo,
		logger,
		cfg.Inventory.TxTimeout,
	)

	ledgerUC := usecase.NewLedgerUseCase(ledgerSvc, logger, cfg.Inventory.MaxRetryAttempts)

	return controller.NewDetalleController(ledgerUC, ledgerSvc, logger)
}
