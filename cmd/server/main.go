//go:build !js && !wasm

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/gemlab/spectraldna/internal/config"
	"github.com/gemlab/spectraldna/pkg/logger"
	"github.com/gemlab/spectraldna/pkg/spectraldna"
)

var (
	configPath     string
	addr           string
	dbPath         string
	allowedOrigins string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Configuration file (default ./spectraldna.toml)")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	flag.StringVar(&dbPath, "db", "", "Path to SQLite database (overrides database.path)")
	flag.StringVar(&allowedOrigins, "origins", "", "Comma-separated list of allowed CORS origins (use * for all)")
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	cfg, found, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !found {
		log.Infof("No configuration file found, using defaults")
	}
	logger.SetLevel(cfg.LogLevel())

	if addr != "" {
		cfg.Server.Addr = addr
	}
	if dbPath != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.Path = dbPath
	}
	if allowedOrigins != "" {
		cfg.Server.AllowedOrigins = splitOrigins(allowedOrigins)
	}
	if cfg.LogLevel() > logger.DEBUG {
		gin.SetMode(gin.ReleaseMode)
	}

	opts, err := cfg.ServiceOptions()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	service, err := spectraldna.NewService(opts...)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	database := cfg.Database.Path
	if cfg.Database.Driver != "sqlite" {
		database = cfg.Database.Driver
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := NewServer(service, &ServerConfig{
		Addr:           cfg.Server.Addr,
		Database:       database,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err := server.Run(ctx); err != nil {
		log.Errorf("Server failed: %v", err)
		service.Close()
		os.Exit(1)
	}
}

func splitOrigins(s string) []string {
	if strings.TrimSpace(s) == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
