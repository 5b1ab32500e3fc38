package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rubiogarciadental/iadental/internal/api/v1/routes"
	"github.com/rubiogarciadental/iadental/internal/config"
	"github.com/rubiogarciadental/iadental/internal/services"
)

func main() {
	configureLogging()

	svcs, err := services.InitializeServices()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	r := routes.NewRouter(
		svcs.GetAssistantService(),
		svcs.GetSessionService(),
		svcs.GetConnectionManager(),
	)

	addr := ":" + config.GetPort()
	log.Info().Str("addr", addr).Msg("IA Dental assistant server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func configureLogging() {
	zerolog.SetGlobalLevel(parseLogLevel(os.Getenv("LOG_LEVEL")))
}

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
