// Package api is the HTTP admin surface: watchlist and rule CRUD, current
// prices, recent events, a websocket event stream and /metrics.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/stockwatch/admin"
	"github.com/rustyeddy/stockwatch/internal/metrics"
	"github.com/rustyeddy/stockwatch/notify"
)

// ShutdownTimeout bounds graceful shutdown of in-flight requests.
const ShutdownTimeout = 5 * time.Second

type Server struct {
	router *gin.Engine
	srv    *http.Server
	svc    *admin.Service
	hub    *notify.Hub
	log    zerolog.Logger

	upgrader websocket.Upgrader
}

// NewServer wires routes for svc. hub may be nil, in which case the event
// stream endpoint answers 503.
func NewServer(addr string, corsOrigins []string, svc *admin.Service, hub *notify.Hub, log zerolog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(log))
	if mw := corsPolicy(corsOrigins); mw != nil {
		router.Use(mw)
	}

	s := &Server{
		router: router,
		svc:    svc,
		hub:    hub,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originAllowed(corsOrigins),
		},
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/", s.health)
	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s.router.GET("/watchlist", s.getWatchlist)
	s.router.POST("/watchlist", s.addWatchlist)
	s.router.DELETE("/watchlist/:ticker", s.removeWatchlist)

	s.router.GET("/prices", s.getPrices)
	s.router.GET("/price/:ticker", s.getPrice)
	s.router.GET("/intraday", s.getIntradayAll)
	s.router.GET("/intraday/:ticker", s.getIntraday)

	rules := s.router.Group("/rules")
	{
		rules.GET("", s.listRules)
		rules.POST("", s.createRule)
		rules.DELETE("/:id", s.deleteRule)
	}

	events := s.router.Group("/events")
	{
		events.GET("", s.listEvents)
		events.GET("/stream", s.streamEvents)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("api listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// websocket streams are hijacked and ignored by Shutdown
	if s.hub != nil {
		s.hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("api stopped")
	return nil
}
