// Package main runs the cheque desk web application.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/go-petr/cheque-desk/cmd/httpserver"
	"github.com/go-petr/cheque-desk/db/migration"
	"github.com/go-petr/cheque-desk/internal/middleware"
	"github.com/go-petr/cheque-desk/pkg/configpkg"
	"github.com/go-petr/cheque-desk/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	if config.MigrateOnStart {
		applied, err := migration.Up(config.DBDriver, config.DBSource)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot migrate database")
		}

		logger.Info().Bool("applied", applied).Msg("database schema is up to date")
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("address", config.ServerAddress).Msg("CHEQUE DESK SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
