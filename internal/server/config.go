package server

import (
	"github.com/raysh454/wcag131/internal/app"
	"github.com/raysh454/wcag131/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string
	// AllowedOrigin is sent as Access-Control-Allow-Origin; empty means "*".
	AllowedOrigin string

	// AppConfig builds the orchestrator when Orchestrator is nil.
	AppConfig *app.Config
	// Orchestrator, when set, is used as is and closed with the server.
	Orchestrator *app.Orchestrator
	Logger       logging.Logger
}
