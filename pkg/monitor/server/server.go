// Package server exposes system queries and the live event stream over
// HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jamesainslie/tidytray/pkg/monitor/broadcaster"
	"github.com/jamesainslie/tidytray/pkg/tidytray/logging"
	"github.com/jamesainslie/tidytray/pkg/tidytray/sysinfo"
)

var logger = logging.Get("server")

// Queries answers the point-in-time system queries.
type Queries interface {
	Disks(ctx context.Context) ([]sysinfo.Disk, error)
	Temperatures(ctx context.Context) ([]sysinfo.Temperature, error)
	System(ctx context.Context) (sysinfo.SystemInfo, error)
}

// Config holds server configuration.
type Config struct {
	// Listen is the TCP address, e.g. 127.0.0.1:2025.
	Listen string
}

// Server is the sysmon HTTP server.
type Server struct {
	cfg         Config
	queries     Queries
	broadcaster *broadcaster.Broadcaster
	engine      *gin.Engine
	http        *http.Server
	listener    net.Listener
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// New creates a server listening on cfg.Listen.
func New(cfg Config, q Queries, b *broadcaster.Broadcaster) (*Server, error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", cfg.Listen)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:         cfg,
		queries:     q,
		broadcaster: b,
		listener:    listener,
	}
	srv.engine = srv.routes()
	srv.http = &http.Server{
		Handler:           srv.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, nil
}

// Handler returns the router. It is used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve accepts connections. Blocks until Close.
func (s *Server) Serve() error {
	logger.Info("listening", "addr", s.Addr())
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the server, waiting for in-flight requests until ctx is done.
func (s *Server) Close(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	// Shutdown only closes listeners Serve was started on.
	_ = s.listener.Close()
	return err
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/disks", s.handleDisks)
	api.GET("/temperatures", s.handleTemperatures)
	api.GET("/system", s.handleSystem)
	api.GET("/events", s.handleEvents)
	return r
}

func (s *Server) handleDisks(c *gin.Context) {
	disks, err := s.queries.Disks(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, disks)
}

func (s *Server) handleTemperatures(c *gin.Context) {
	temps, err := s.queries.Temperatures(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, temps)
}

func (s *Server) handleSystem(c *gin.Context) {
	info, err := s.queries.System(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// handleEvents streams broadcaster events as Server-Sent Events. The
// optional "name" query parameter restricts the stream to one event.
func (s *Server) handleEvents(c *gin.Context) {
	var names []string
	if name := c.Query("name"); name != "" {
		names = append(names, name)
	}
	sub := s.broadcaster.Subscribe(names...)
	if sub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
		return
	}
	defer s.broadcaster.Unsubscribe(sub.ID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			c.SSEvent(ev.Name, ev.Value)
			c.Writer.Flush()
		}
	}
}

func fail(c *gin.Context, err error) {
	logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
