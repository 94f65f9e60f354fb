package table

import (
	"database/sql"

	"go.uber.org/zap"

	"comandero/internal/config"
	"comandero/internal/infrastructure/mysql"
	"comandero/internal/table/controller"
	tablerepo "comandero/internal/table/repository"
	"comandero/internal/table/service"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.MesaController {
	txr := mysql.NewTxRunner(db)
	mesaRepo := tablerepo.NewMySQLMesaRepository(db)

	occupancySvc := service.NewOccupancyService(txr, mesaRepo, logger)

	return controller.NewMesaController(occupancySvc, mesaRepo, logger)
}
