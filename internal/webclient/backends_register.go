package webclient

import "github.com/raysh454/wcag131/internal/logging"

func init() {
	RegisterBackend(string(ClientNetHTTP), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
	RegisterBackend(string(ClientChromedp), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewChromedpClient(cfg, logger)
	})
	RegisterBackend(string(ClientRod), func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewRodClient(cfg, logger)
	})
}
