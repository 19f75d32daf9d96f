package rest

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ReadLater/internal/config"
	"ReadLater/internal/domain"
	"ReadLater/internal/ports"
)

// ItemImporter imports one URL interactively.
type ItemImporter interface {
	ImportOne(ctx context.Context, userID, rawURL string) (domain.SavedItem, error)
}

// BulkRunner starts a bulk import.
type BulkRunner interface {
	Run(ctx context.Context, userID string, urls []string) (iter.Seq[domain.BulkProgress], error)
}

// ItemQuery reads saved items.
type ItemQuery interface {
	List(ctx context.Context, userID string) ([]domain.SavedItem, error)
	Get(ctx context.Context, userID, id string) (domain.SavedItem, error)
}

// SummaryService streams and stores item summaries.
type SummaryService interface {
	StreamSummary(ctx context.Context, userID, itemID string) (iter.Seq2[string, error], error)
	SaveSummary(ctx context.Context, userID, itemID, summary string) (domain.SavedItem, error)
}

// Discoverer finds candidate URLs.
type Discoverer interface {
	MapSite(ctx context.Context, seedURL, filter string) ([]string, error)
	SearchWeb(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// Services groups the use cases exposed over HTTP.
type Services struct {
	Importer  ItemImporter
	Bulk      BulkRunner
	Items     ItemQuery
	Summaries SummaryService
	Discovery Discoverer
	// Notifier is optional; it receives the bulk summary line.
	Notifier ports.Notifier
}

// Server is the HTTP API.
type Server struct {
	echo    *echo.Echo
	addr    string
	handler *handler
	logger  *slog.Logger
}

// NewServer builds the echo instance and registers every route.
func NewServer(cfg config.ServerConfig, auth config.AuthConfig, svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	h := &handler{
		svc:       svc,
		heartbeat: cfg.HeartbeatInterval,
		logger:    logger,
	}
	if h.heartbeat <= 0 {
		h.heartbeat = 10 * time.Second
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api", NewJWTAuth(auth, logger).RequireJWT())
	api.POST("/items", h.createItem)
	api.GET("/items", h.listItems)
	api.POST("/items/bulk", h.bulkImport)
	api.GET("/items/:id", h.getItem)
	api.POST("/items/:id/summary", h.saveSummary)
	api.POST("/items/:id/summary/stream", h.streamSummary)
	api.POST("/discover/map", h.mapSite)
	api.POST("/discover/search", h.searchWeb)

	return &Server{echo: e, addr: cfg.Addr, handler: h, logger: logger}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Debug("request", attrs...)
			return nil
		},
	})
}
