package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driftvale/tilerealm/server/internal/config"
	"github.com/driftvale/tilerealm/server/internal/database"
	"github.com/driftvale/tilerealm/server/internal/enemy"
	"github.com/driftvale/tilerealm/server/internal/logger"
	"github.com/driftvale/tilerealm/server/internal/maps"
	"github.com/driftvale/tilerealm/server/internal/server"
)

func main() {
	// Parse command-line flags
	port := flag.Int("port", 8080, "HTTP/WebSocket server port")
	serverConfigFile := flag.String("config", "data/server.yaml", "Path to server config YAML file")
	enemiesFile := flag.String("enemies", "data/enemies.yaml", "Path to enemy templates YAML file")
	mapsFile := flag.String("maps", "data/maps.yaml", "Path to map definitions YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	dbDialect := flag.String("db-dialect", "", "Database dialect override: sqlite or postgres")
	dbPath := flag.String("db", "", "SQLite database file path override")
	dbDSN := flag.String("db-dsn", "", "PostgreSQL connection string override")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, _ := logger.LoadConfig(*loggingConfig)
	logger.Initialize(logConfig)

	logger.Info("Starting TileRealm Server")

	// Load server config (security settings, respawn tuning, etc.)
	cfg, err := config.LoadConfig(*serverConfigFile)
	if err != nil {
		logger.Warning("Failed to load server config, using defaults", "path", *serverConfigFile, "error", err)
		cfg = config.DefaultConfig()
	}
	if *dbDialect != "" {
		cfg.Database.Dialect = *dbDialect
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *dbDSN != "" {
		cfg.Database.DSN = *dbDSN
	}

	if len(cfg.WebSocket.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(cfg.WebSocket.AllowedOrigins) == 1 && cfg.WebSocket.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.WebSocket.AllowedOrigins)
	}

	// Load enemy templates
	catalog, err := enemy.LoadCatalogFromYAML(*enemiesFile)
	if err != nil {
		log.Fatalf("Failed to load enemy templates: %v", err)
	}
	logger.Info("Enemy templates loaded", "count", catalog.Count())

	// Load map definitions
	mapTable, err := maps.LoadTableFromYAML(*mapsFile)
	if err != nil {
		log.Fatalf("Failed to load map definitions: %v", err)
	}
	logger.Info("Maps loaded", "count", mapTable.Count())

	// Open the player database
	dialect := database.DialectType(cfg.Database.Dialect)
	dsn := cfg.Database.Path
	if dialect == database.DialectPostgres {
		dsn = cfg.Database.DSN
	}
	db, err := database.Open(dialect, dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("Player database initialized", "dialect", cfg.Database.Dialect)

	// Create the server
	srv, err := server.NewServer(cfg, db, catalog, mapTable)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Start the HTTP/WebSocket listener in a goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := srv.Start(addr); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	logger.Info("TileRealm Server running", "port", *port)
	logger.Info("Press Ctrl+C to shutdown")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warning("Shutdown did not complete cleanly", "error", err)
	}
	logger.Info("Server stopped")
}
