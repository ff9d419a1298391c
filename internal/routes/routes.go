package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ledger-reconciliation-backend/internal/config"
	handler "ledger-reconciliation-backend/internal/handlers"
	"ledger-reconciliation-backend/internal/repository"
	"ledger-reconciliation-backend/internal/services/audit"
	"ledger-reconciliation-backend/internal/services/ledger"
	"ledger-reconciliation-backend/internal/services/matching"
	service "ledger-reconciliation-backend/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	ledgerRepo := repository.NewLedgerRepository(db)
	jobRepo := repository.NewJobRepository(db)
	resultRepo := repository.NewResultRepository(db)

	auditSvc := audit.NewService(db)
	engine := matching.NewEngine(ledgerRepo)
	reconService := service.NewService(jobRepo, resultRepo, engine, auditSvc)
	loader := ledger.NewLoader(ledgerRepo, auditSvc, cfg.LedgerBatchSize)

	reconHandler := handler.NewReconciliationHandler(reconService, loader, cfg.PreviewRowLimit)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	recon := api.Group("/recon")
	recon.POST("/preview", reconHandler.Preview)
	recon.POST("/upload", reconHandler.Upload)
	recon.GET("/status/:id", reconHandler.GetJobStatus)
	recon.GET("/latest", reconHandler.GetLatest)
	recon.PUT("/update/:id", reconHandler.UpdateResult)
	recon.POST("/system-upload", reconHandler.SystemUpload)
}
