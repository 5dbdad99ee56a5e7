package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minmo-hq/offrampd/internal/core/application"
	log "github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type Config struct {
	HTTPPort         uint32
	DisableTelemetry bool
}

type service struct {
	*gin.Engine

	config Config
	svc    *application.Service
	server *http.Server
}

func NewService(config Config, appSvc *application.Service) *service {
	router := gin.New()
	setupMiddleware(router, !config.DisableTelemetry)
	registerValidators()

	s := &service{router, config, appSvc, nil}

	api := router.Group("/api")
	api.GET("/info", s.getInfo)
	api.GET("/rates/:base/:target", s.getRate)
	api.POST("/swap", s.createSwap)
	api.GET("/swap/:id", s.getSwap)
	api.GET("/swap/:id/events", s.streamSwapEvents)
	api.GET("/swaps", s.listSwaps)
	api.DELETE("/swaps/:id", s.removeSwap)
	api.DELETE("/swaps", s.clearSwaps)
	api.GET("/beneficiary", s.getBeneficiary)
	api.POST("/beneficiary/reset", s.resetBeneficiary)

	return s
}

func (s *service) Start() error {
	if err := s.svc.Start(); err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler: s,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server exited")
		}
	}()

	log.Infof("web interface listening on port %d", s.config.HTTPPort)
	return nil
}

func (s *service) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// nolint:all
		s.server.Shutdown(ctx)
	}
	s.svc.Stop()
}
