package order

import (
	"database/sql"

	"go.uber.org/zap"

	"comandero/internal/config"
	"comandero/internal/infrastructure/mysql"
	inventoryrepo "comandero/internal/inventory/repository"
	"comandero/internal/order/controller"
	orderrepo "comandero/internal/order/repository"
	"comandero/internal/order/service"
	productrepo "comandero/internal/product/repository"
	staffrepo "comandero/internal/staff/repository"
	tablerepo "comandero/internal/table/repository"
	tablesvc "comandero/internal/table/service"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.ComandaController {
	txr := mysql.NewTxRunner(db)
	comandaRepo := orderrepo.NewMySQLComandaRepository(db)
	detalleRepo := inventoryrepo.NewMySQLDetalleRepository(db)
	productoRepo := productrepo.NewMySQLProductoRepository(db)
	staffRepo := staffrepo.NewMySQLStaffRepository(db)
	mesaRepo := tablerepo.NewMySQLMesaRepository(db)

	occupancySvc := tablesvc.NewOccupancyService(txr, mesaRepo, logger)

	lifecycleSvc := service.NewLifecycleService(
		txr,
		comandaRepo,
		detalleRepo,
		productoRepo,
		staffRepo,
		mesaRepo,
		occupancySvc,
		logger,
	)

	return controller.NewComandaController(lifecycleSvc, logger)
}
