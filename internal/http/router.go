package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/liftcare/internal/config"
	"github.com/nurpe/liftcare/internal/http/middleware"
)

// NewRouter builds the gin engine with logging, recovery and CORS in front
// of every route.
func NewRouter(handler *Handler, authn middleware.Authenticator, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(corsConfig(cfg.HTTP.AllowedOrigins)))

	handler.Register(router, middleware.Auth(authn), middleware.OptionalAuth(authn))
	return router
}

func corsConfig(origins []string) cors.Config {
	conf := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			conf.AllowAllOrigins = true
			conf.AllowCredentials = false
			return conf
		}
	}
	conf.AllowOrigins = origins
	if len(origins) == 0 {
		conf.AllowAllOrigins = true
		conf.AllowCredentials = false
	}
	return conf
}
