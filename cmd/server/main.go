package main

import (
	"context"
	"fmt"
	"log"

	"birvalid/internal/config"
	openaiextractor "birvalid/internal/extractor/openai"
	"birvalid/internal/handler"
	"birvalid/internal/paperless"
	"birvalid/internal/rag"
	"birvalid/internal/repository/postgres"
	"birvalid/internal/router"
	"birvalid/internal/ruleset"
	"birvalid/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories. Rule sets persist in Postgres so custom sets
	// survive restarts; the builtin catalog is seeded on startup.
	invoiceRepo := postgres.NewInvoiceRepo(db)
	ruleSets := postgres.NewRuleSetRepo(db)
	if err := postgres.SeedRuleSets(context.Background(), db, ruleset.BuiltinRuleSets()); err != nil {
		return fmt.Errorf("failed to seed rule sets: %w", err)
	}

	// Initialize external collaborators
	docs := paperless.NewClient(&cfg.Paperless)
	extractor := openaiextractor.NewExtractor(&cfg.Extractor)
	contractValidator := rag.NewClient(&cfg.RAG)

	// Initialize services
	validationSvc := service.NewValidationService(invoiceRepo, ruleSets, docs, extractor)
	batchSvc := service.NewBatchService(ruleSets, docs, extractor, service.BatchLimits{
		StandardCap:   cfg.Batch.MaxCompleteness,
		BIRCap:        cfg.Batch.MaxBIR,
		StandardChunk: cfg.Batch.CompletenessChunkSize,
		BIRChunk:      cfg.Batch.BIRChunkSize,
	})
	contractSvc := service.NewContractService(invoiceRepo, contractValidator)

	// Initialize handlers
	validationH := handler.NewValidationHandler(validationSvc)
	batchH := handler.NewBatchHandler(batchSvc)
	reportH := handler.NewReportHandler(batchSvc)
	ruleSetH := handler.NewRuleSetHandler(ruleSets)
	invoiceH := handler.NewInvoiceHandler(invoiceRepo, validationSvc, contractSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, validationH, batchH, reportH, ruleSetH, invoiceH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
