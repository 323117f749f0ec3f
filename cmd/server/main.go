package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"kkmall-be/internal/api"
	"kkmall-be/internal/config"
	"kkmall-be/internal/logger"
	"kkmall-be/internal/payment"
	"kkmall-be/internal/product"
	"kkmall-be/internal/records"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	recordsClient := records.NewClient(cfg.RecordsBaseURL)

	catalog, err := product.NewService(recordsClient)
	if err != nil {
		log.Fatalf("catalog init: %v", err)
	}

	gateway := payment.NewClient(payment.Config{
		APIKey:          cfg.PayPayAPIKey,
		APISecret:       cfg.PayPayAPISecret,
		MerchantID:      cfg.PayPayMerchantID,
		RedirectBaseURL: cfg.RedirectBaseURL,
		Production:      cfg.PayPayProduction,
	})
	orchestrator := payment.NewOrchestrator(gateway)

	router := api.NewRouter(api.Deps{
		Orchestrator: orchestrator,
		Gateway:      gateway,
		Catalog:      catalog,
		JWTSecret:    cfg.JWTSecret,
	})

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, router))
}
