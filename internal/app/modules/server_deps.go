package modules

import (
	"workdesk.io/workdesk/internal/api/handlers"
	"workdesk.io/workdesk/internal/api/middleware"
	"workdesk.io/workdesk/internal/config"
)

// NewServerDeps builds base server deps then lets each module contribute
// explicit wiring.
func NewServerDeps(cfg *config.Config, mods []Module) handlers.ServerDeps {
	deps := handlers.ServerDeps{
		JWTCfg: middleware.JWTConfig{
			SigningKey: []byte(cfg.Security.JWTSecret),
			Issuer:     cfg.Security.JWTIssuer,
			ExpiresIn:  cfg.Security.JWTExpiresIn,
		},
	}
	for _, mod := range mods {
		if mod == nil {
			continue
		}
		mod.ContributeServerDeps(&deps)
	}
	return deps
}
