// server/cmd/api/main.go
package main

import (
	"context"
	"os"
	"time"

	"disaster-relief-api-server/config"
	"disaster-relief-api-server/internal/api/routes"
	"disaster-relief-api-server/internal/database"
	"disaster-relief-api-server/internal/dispatch"
	"disaster-relief-api-server/internal/routing"
	"disaster-relief-api-server/internal/socket"
	"disaster-relief-api-server/internal/weather"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load configuration (.env is optional, env vars win either way)
	godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	log.Logger = logger

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load config")
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal().Msg("JWT_SECRET must be set")
	}

	// 2. Connect MongoDB and prepare the schema
	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to create indexes")
	}
	if err := database.SeedAdmin(ctx, db, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed admin user")
	}
	if err := database.SeedReliefCentres(ctx, db, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed relief centres")
	}

	// 3. Build the routing and weather clients
	osrmTimeout := time.Duration(cfg.OSRM.TimeoutSeconds) * time.Second
	router := routing.NewClient(cfg.OSRM.BaseURL, osrmTimeout, logger)
	resolver := routing.NewResolver(router, logger)

	weatherTimeout := time.Duration(cfg.Weather.TimeoutSeconds) * time.Second
	weatherClient := weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, weatherTimeout, logger)

	// 4. Wire the dispatch core and the tracking hub
	store := database.NewDispatchStore(db)
	svc := dispatch.NewService(store, router, logger)
	hub := socket.NewHub(logger)

	// 5. Start server
	engine := routes.SetupRouter(cfg, db, router, resolver, svc, weatherClient, hub, logger)

	logger.Info().Str("port", cfg.Server.Port).Msg("starting API server")
	if err := engine.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("failed to run server")
	}
}
