package main

import (
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/SparklingP1/property.com.ve/config"
	"github.com/SparklingP1/property.com.ve/internal/api"
	"github.com/SparklingP1/property.com.ve/internal/store"
	"github.com/SparklingP1/property.com.ve/logger"
)

func main() {
	godotenv.Load()
	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()

	st, err := store.NewPostgresStore(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the listing store")
	}
	defer st.Close()

	server := api.NewServer(st)

	addr := ":" + cfg.APIPort
	log.Info().Str("addr", addr).Msg("Listing API listening")

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("API server stopped")
	}
}
