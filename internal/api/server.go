// Package api exposes the converter over HTTP.
package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insightdelivered/cashier-report-converter/internal/config"
	"github.com/insightdelivered/cashier-report-converter/internal/pipeline"
)

// Version is reported by the health endpoint.
var Version = "2.0.0"

// Server is the HTTP front end of the converter.
type Server struct {
	app      *fiber.App
	cfg      *config.App
	pipeline *pipeline.Pipeline
	jobs     *JobStore
	sweeper  *Sweeper
	logger   *slog.Logger

	activeJobs prometheus.GaugeFunc
}

// NewServer wires routes, metrics and the output sweeper.
func NewServer(cfg *config.App, p *pipeline.Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		pipeline: p,
		jobs:     NewJobStore(),
		logger:   logger,
	}
	s.sweeper = NewSweeper(s.jobs, cfg.OutputRetention, cfg.SweepSchedule, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.activeJobs = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "cashier_converter",
		Name:      "active_jobs",
		Help:      "Conversion jobs not yet finished.",
	}, func() float64 { return float64(s.jobs.Active()) })
	reg.MustRegister(s.activeJobs)
	p.WithMetrics(pipeline.NewMetrics(reg))

	s.app = fiber.New(fiber.Config{
		AppName:      "cashier-report-converter",
		BodyLimit:    cfg.MaxUploadMB << 20,
		ErrorHandler: errorHandler,
	})
	s.app.Use(fiberrecover.New())
	s.app.Use(cors.New())

	s.app.Get("/api/health", HandleHealth)
	s.app.Post("/api/convert", s.HandleConvert)
	s.app.Get("/api/jobs/:id", s.HandleJob)
	s.app.Get("/api/download/:id", s.HandleDownload)
	s.app.Post("/api/preview", s.HandlePreview)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Jobs returns the server's job store.
func (s *Server) Jobs() *JobStore {
	return s.jobs
}

// Listen starts the sweeper and serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	if err := s.sweeper.Start(); err != nil {
		return err
	}
	s.logger.Info("server listening", slog.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown cancels running jobs and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.jobs.CancelAll()
	s.sweeper.Stop()
	return s.app.ShutdownWithContext(ctx)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return writeError(c, code, err.Error())
}
