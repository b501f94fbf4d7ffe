package main

import (
	"fmt"
	"os"

	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/auth"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/config"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/db"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/excel"
	httphandler "github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/http"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/http/middleware"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/logger"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/pdf"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/repository"
	"github.com/estudiotecnicobc-droid/APP-CONSTRUSOFT-PLANIFICACION-Y-CONTROL-DE-OBRA-sub001/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	catalogRepo := repository.NewCatalogRepository(database)
	planRepo := repository.NewPlanRepository(database)
	contractRepo := repository.NewContractRepository(database)

	excelGenerator := excel.NewGenerator()
	pdfGenerator := pdf.NewGenerator()

	planningService := service.NewPlanningService(catalogRepo, planRepo, excelGenerator, cfg, log)
	certificationService := service.NewCertificationService(contractRepo, pdfGenerator, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(planningService, certificationService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting planner service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
