package main

import (
	"log"
	"os"

	"github.com/mediavault/mediavault/config"
	"github.com/mediavault/mediavault/models"
	"github.com/mediavault/mediavault/routes"
	"github.com/mediavault/mediavault/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	utils.InitRedis(cfg)

	// Storage root is created once here, not lazily inside handlers.
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("failed to create upload directory %s: %v", cfg.UploadDir, err)
	}

	db := config.InitDatabase(cfg, &models.User{}, &models.UploadedFile{})

	r := routes.SetupRouter(db, cfg)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
