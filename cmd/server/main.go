package main

import (
	"fmt"
	"net/http"
	"os"

	"expensetracker/internal/auth"
	"expensetracker/internal/cache"
	"expensetracker/internal/config"
	"expensetracker/internal/database"
	"expensetracker/internal/filestore"
	"expensetracker/internal/handlers"
	"expensetracker/internal/logger"
	"expensetracker/internal/version"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println(version.String())
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger first
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Error("database_open_failed", "path", cfg.DBPath, "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		log.Error("database_init_failed", "error", err.Error())
		os.Exit(1)
	}

	files, err := filestore.New(cfg.DataDir)
	if err != nil {
		log.Error("filestore_init_failed", "path", cfg.DataDir, "error", err.Error())
		os.Exit(1)
	}

	c, err := cache.New(cfg.CacheMaxItems)
	if err != nil {
		log.Error("cache_init_failed", "error", err.Error())
		os.Exit(1)
	}
	defer c.Close()

	if cfg.JWTSecret == config.DevJWTSecret {
		log.Warn("jwt_secret_default", "hint", "set JWT_SECRET outside local development")
	}
	a := auth.New(cfg.JWTSecret, cfg.SessionTTL, cfg.SecureCookies)

	h := handlers.New(db, a, files, c, cfg.ForecastDays)

	log.Info("server_starting", "port", cfg.Port, "address", "http://localhost:"+cfg.Port, "version", version.Version)
	if err := http.ListenAndServe(":"+cfg.Port, h.Routes()); err != nil {
		log.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}
