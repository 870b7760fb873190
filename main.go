package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tech-knowledge-api/api"
	"github.com/rpupo63/tech-knowledge-api/config"
	"github.com/rpupo63/tech-knowledge-api/database"
	"github.com/rpupo63/tech-knowledge-api/models"
)

func main() {
	cfg := config.Load()
	configureLogging(cfg)
	log.Info().Msg("Initializing app...")

	ssmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := config.LoadSSMParameters(ssmCtx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading parameters from SSM")
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	currentDB := database.New(db)

	// If generating models, run generation and exit
	if config.GetBool(cfg, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, config.GetString(cfg, "GENERATE_MODELS_OUT", "./query")); err != nil {
			log.Fatal().Err(err).Msg("Model generation failed")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(cfg, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if err := models.GenerateColumnMismatchReport(db); err != nil {
			log.Fatal().Err(err).Msg("Column mismatch report failed")
		}
		return
	}

	if config.GetBool(cfg, "AUTO_MIGRATE", true) {
		if err := currentDB.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
	}

	// both the server and the signal listener may report, so neither blocks
	errChannel := make(chan error, 2)

	server, err := api.NewServer(currentDB, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// configureLogging sets the global zerolog level and output from LOG_LEVEL and LOG_FORMAT.
func configureLogging(cfg map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(cfg, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.GetString(cfg, "LOG_FORMAT", "console") == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
