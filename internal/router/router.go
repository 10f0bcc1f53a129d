package router

import (
	"github.com/gin-gonic/gin"

	"birvalid/internal/config"
	"birvalid/internal/handler"
	"birvalid/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	validationH *handler.ValidationHandler,
	batchH *handler.BatchHandler,
	reportH *handler.ReportHandler,
	ruleSetH *handler.RuleSetHandler,
	invoiceH *handler.InvoiceHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Ad-hoc record validation
	validate := v1.Group("/validate")
	validate.POST("/completeness", validationH.ValidateCompleteness)
	validate.POST("/bir", validationH.ValidateBIR)
	validate.POST("/batch", batchH.Run)
	validate.POST("/batch/export", reportH.Export)

	// Rule set management
	ruleSets := v1.Group("/rule-sets")
	ruleSets.GET("", ruleSetH.List)
	ruleSets.GET("/:id", ruleSetH.Get)
	ruleSets.POST("", ruleSetH.Create)
	ruleSets.PUT("/:id", ruleSetH.Update)
	ruleSets.DELETE("/:id", ruleSetH.Delete)

	// Stored invoices
	invoices := v1.Group("/invoices")
	invoices.POST("", invoiceH.Create)
	invoices.GET("", invoiceH.List)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.POST("/:id/validate", invoiceH.Validate)
	invoices.POST("/:id/validate-contract", invoiceH.ValidateContract)

	return r
}
