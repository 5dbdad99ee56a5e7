package web

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// setupMiddleware configures panic recovery and, unless disabled, the
// Sentry middleware for error reporting.
func setupMiddleware(engine *gin.Engine, enabled bool) {
	engine.Use(gin.Recovery())

	if enabled {
		engine.Use(sentrygin.New(sentrygin.Options{
			Repanic:         true,
			WaitForDelivery: false,
			Timeout:         5 * time.Second,
		}))
		log.Info("Sentry error monitoring enabled")
	}
}
