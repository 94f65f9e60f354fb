package billing

import (
	"database/sql"

	"go.uber.org/zap"

	"comandero/internal/billing/controller"
	"comandero/internal/billing/service"
	"comandero/internal/config"
	"comandero/internal/infrastructure/mysql"
	inventoryrepo "comandero/internal/inventory/repository"
	orderrepo "comandero/internal/order/repository"
	staffrepo "comandero/internal/staff/repository"
	tablerepo "comandero/internal/table/repository"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.BillingController {
	txr := mysql.NewTxRunner(db)
	mesaRepo := tablerepo.NewMySQLMesaRepository(db)
	comandaRepo := orderrepo.NewMySQLComandaRepository(db)
	detalleRepo := inventoryrepo.NewMySQLDetalleRepository(db)
	staffRepo := staffrepo.NewMySQLStaffRepository(db)

	billingSvc := service.NewBillingService(txr, mesaRepo, comandaRepo, detalleRepo, staffRepo, logger)

	return controller.NewBillingController(billingSvc, logger)
}
