// Package api wires the HTTP surface: the STT pipeline endpoint, the
// upload-only endpoint, user account routes and health.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voxbridge/config"
	"voxbridge/pipeline"
	"voxbridge/store"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(cfg config.Config, runner *pipeline.Runner, users store.UserStore, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.CORSOrigins))

	RegisterRootRoutes(r)
	RegisterSTTRoutes(r, cfg, runner, log)
	RegisterUserRoutes(r, users)
	return r
}
