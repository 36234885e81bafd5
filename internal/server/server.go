package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/ubxwire/internal/observability"
	"github.com/danmuck/ubxwire/internal/protocol/frame"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

var (
	ErrPollUnavailable = errors.New("server: no device to poll")
	ErrUnknownMessage  = errors.New("server: unknown message")
)

// Poller sends a poll request for the named message to the device.
type Poller interface {
	Poll(name string) error
}

// PollerFunc adapts a function to Poller.
type PollerFunc func(name string) error

func (f PollerFunc) Poll(name string) error { return f(name) }

// Server is the HTTP status endpoint of a running dump.
type Server struct {
	Name     string
	Addr     string
	Appeared time.Time

	store  *Store
	stats  func() frame.Stats
	poller Poller
	router *gin.Engine
}

// New builds the router. stats may be nil before a stream exists.
func New(name, addr string, corsOrigins []string, store *Store, stats func() frame.Stats) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger, "/health", "/ready", "/metrics"))
	r.Use(observability.RequestMetricsMiddleware(name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	if store == nil {
		store = NewStore()
	}
	s := &Server{
		Name:     name,
		Addr:     addr,
		Appeared: time.Now(),
		store:    store,
		stats:    stats,
		router:   r,
	}
	s.registerRoutes()
	return s
}

// SetPoller enables POST /poll/:name.
func (s *Server) SetPoller(p Poller) {
	s.poller = p
}

func (s *Server) Store() *Store { return s.store }

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Serve listens on Addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	log.Info().Str("node", s.Name).Str("addr", s.Addr).Msg("status server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) registerRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Ready once the stream has produced a valid frame.
	r.GET("/ready", func(c *gin.Context) {
		ready := s.frameStats().Accepted > 0
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready":   ready,
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})

	r.GET("/stats", func(c *gin.Context) {
		st := s.frameStats()
		c.JSON(http.StatusOK, gin.H{
			"accepted":  st.Accepted,
			"checksum":  st.Checksum,
			"oversize":  st.Oversize,
			"discarded": st.Discarded,
			"messages":  s.store.Len(),
		})
	})

	r.GET("/packets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"packets": s.store.Entries()})
	})

	r.GET("/packets/:name", func(c *gin.Context) {
		e, ok := s.store.Latest(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no packet for " + c.Param("name")})
			return
		}
		c.JSON(http.StatusOK, e)
	})

	r.POST("/poll/:name", func(c *gin.Context) {
		name := c.Param("name")
		if err := s.poll(name); err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, ErrPollUnavailable):
				status = http.StatusNotImplemented
			case errors.Is(err, ErrUnknownMessage):
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "polled": name})
	})
}

func (s *Server) poll(name string) error {
	if s.poller == nil {
		return ErrPollUnavailable
	}
	if err := s.poller.Poll(name); err != nil {
		log.Error().Str("node", s.Name).Str("message", name).Err(err).Msg("poll failed")
		return err
	}
	log.Info().Str("node", s.Name).Str("message", name).Msg("poll sent")
	return nil
}

func (s *Server) frameStats() frame.Stats {
	if s.stats == nil {
		return frame.Stats{}
	}
	return s.stats()
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
