package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/cashier-report-converter/internal/extractor"
	"github.com/insightdelivered/cashier-report-converter/internal/models"
	"github.com/insightdelivered/cashier-report-converter/internal/parser"
	"github.com/insightdelivered/cashier-report-converter/internal/pipeline"
	"github.com/insightdelivered/cashier-report-converter/internal/writer"
)

// previewRecords is how many records are returned inline by /api/convert.
const previewRecords = 50

// previewPages is how many pages /api/preview extracts.
const previewPages = 20

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success     bool                       `json:"success"`
	Error       string                     `json:"error,omitempty"`
	JobID       string                     `json:"jobId,omitempty"`
	Status      string                     `json:"status,omitempty"`
	Filename    string                     `json:"filename,omitempty"`
	Count       int                        `json:"count"`
	Pages       int                        `json:"pages,omitempty"`
	Records     []models.TransactionRecord `json:"records"`
	Diagnostics []string                   `json:"diagnostics,omitempty"`
	Warning     string                     `json:"warning,omitempty"`
	DownloadURL string                     `json:"downloadUrl,omitempty"`
	StatusURL   string                     `json:"statusUrl,omitempty"`
	Version     string                     `json:"version,omitempty"`
	DebugLines  []models.DebugLine         `json:"debugLines,omitempty"`
}

// HandleHealth reports liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

// conversion is everything a run needs, detached from the request.
type conversion struct {
	job     Job
	doc     extractor.Document
	cleanup func()
	debug   bool
}

// HandleConvert converts an uploaded PDF (form field "file") or pasted page
// text (form field "extractedText") into the requested format.
func (s *Server) HandleConvert(c *fiber.Ctx) error {
	// FormValue aliases the pooled request buffer; the job outlives the request.
	format := strings.Clone(writer.NormalizeFormat(c.FormValue("format")))
	if format != writer.FormatCSV && format != writer.FormatXLSX {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown format %q. Use csv or xlsx.", format))
	}

	doc, name, cleanup, status, err := s.openInput(c)
	if err != nil {
		return writeError(c, status, err.Error())
	}

	filename := extractor.OutputName(name, writer.Extension(format))
	job := s.jobs.Create(filename, format, s.cfg.OutputDir)

	conv := conversion{
		job:     job,
		doc:     doc,
		cleanup: cleanup,
		debug:   c.FormValue("debug") == "true",
	}

	if c.FormValue("async") == "true" {
		ctx, cancel := context.WithCancel(context.Background())
		s.jobs.Update(job.ID, func(j *Job) { j.cancel = cancel })
		go func() {
			defer cancel()
			s.run(ctx, conv)
		}()
		return c.Status(fiber.StatusAccepted).JSON(ConvertResponse{
			Success:   true,
			JobID:     job.ID,
			Status:    JobPending,
			Filename:  filename,
			Records:   []models.TransactionRecord{},
			StatusURL: "/api/jobs/" + job.ID,
			Version:   Version,
		})
	}

	res, err := s.run(c.UserContext(), conv)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, extractor.ErrUnreadable) {
			status = fiber.StatusUnprocessableEntity
		}
		return writeError(c, status, fmt.Sprintf("Conversion failed: %v", err))
	}

	final, _ := s.jobs.Get(job.ID)
	records := final.Preview
	if records == nil {
		records = []models.TransactionRecord{}
	}
	return c.JSON(ConvertResponse{
		Success:     true,
		JobID:       job.ID,
		Status:      final.Status,
		Filename:    filename,
		Count:       final.Count,
		Pages:       final.Pages,
		Records:     records,
		Diagnostics: final.Diagnostics,
		Warning:     final.Warning,
		DownloadURL: "/api/download/" + job.ID,
		Version:     Version,
		DebugLines:  res.DebugLines,
	})
}

// run executes one conversion and records the outcome on the job.
func (s *Server) run(ctx context.Context, conv conversion) (*pipeline.Result, error) {
	defer conv.cleanup()
	defer conv.doc.Close()

	id := conv.job.ID
	s.jobs.Update(id, func(j *Job) { j.Status = JobRunning })

	warning := ""
	if !parser.Detect(s.pipeline.Profile(), firstPages(conv.doc, 2)) {
		warning = "The document does not look like a cashier transaction report."
	}

	res, err := s.convert(ctx, conv)

	finished := time.Now()
	s.jobs.Update(id, func(j *Job) {
		j.FinishedAt = &finished
		j.Warning = warning
		if res != nil {
			j.Pages = res.Pages
			j.Dropped = res.DroppedBlocks
			j.Diagnostics = res.Diagnostics
		}
		switch {
		case errors.Is(err, context.Canceled):
			j.Status = JobCancelled
			j.Error = err.Error()
		case err != nil:
			j.Status = JobFailed
			j.Error = err.Error()
		default:
			j.Status = JobDone
		}
	})
	if err != nil {
		s.logger.Warn("conversion failed",
			slog.String("job_id", id),
			slog.Any("error", err),
		)
	}
	return res, err
}

func (s *Server) convert(ctx context.Context, conv conversion) (*pipeline.Result, error) {
	id := conv.job.ID
	sink, err := writer.CreateFile(conv.job.outputPath, conv.job.Format, s.pipeline.Profile())
	if err != nil {
		return nil, err
	}
	collector := &writer.Collector{Limit: previewRecords}

	res, err := s.pipeline.Run(ctx, conv.doc, writer.Multi(sink, collector), pipeline.Options{
		Debug: conv.debug,
		Progress: func(p models.Progress) {
			s.jobs.Update(id, func(j *Job) { j.Progress = p })
		},
	})
	if err != nil {
		sink.Abort()
		return res, err
	}
	if err := sink.Commit(); err != nil {
		return res, err
	}

	s.jobs.Update(id, func(j *Job) {
		j.Count = collector.Count
		j.Preview = collector.Records
	})
	return res, nil
}

// HandleJob returns a job's state and progress.
func (s *Server) HandleJob(c *fiber.Ctx) error {
	job, ok := s.jobs.Get(c.Params("id"))
	if !ok {
		return writeError(c, fiber.StatusNotFound, "Job not found.")
	}
	return c.JSON(job)
}

// HandleDownload serves a finished job's output as an attachment.
func (s *Server) HandleDownload(c *fiber.Ctx) error {
	job, ok := s.jobs.Get(c.Params("id"))
	if !ok {
		return writeError(c, fiber.StatusNotFound, "Job not found.")
	}
	if job.Status != JobDone {
		return writeError(c, fiber.StatusConflict, fmt.Sprintf("Job is %s.", job.Status))
	}
	if _, err := os.Stat(job.outputPath); err != nil {
		return writeError(c, fiber.StatusGone, "Output has expired.")
	}
	c.Set(fiber.HeaderContentType, writer.ContentType(job.Format))
	return c.Download(job.outputPath, job.Filename)
}

// HandlePreview returns the raw text of the first pages with page markers.
func (s *Server) HandlePreview(c *fiber.Ctx) error {
	doc, name, cleanup, status, err := s.openInput(c)
	if err != nil {
		return writeError(c, status, err.Error())
	}
	defer cleanup()
	defer doc.Close()

	return c.JSON(fiber.Map{
		"success":  true,
		"filename": extractor.OutputName(name, ".txt"),
		"pages":    doc.NumPages(),
		"text":     extractor.Preview(doc, previewPages),
	})
}

// openInput returns the request's document, the upload name and a cleanup
// func. On failure it also returns the HTTP status to answer with.
func (s *Server) openInput(c *fiber.Ctx) (extractor.Document, string, func(), int, error) {
	noop := func() {}

	var fh *multipart.FileHeader
	if f, err := c.FormFile("file"); err == nil {
		fh = f
	}
	name := "relatorio.pdf"
	if fh != nil {
		name = filepath.Base(fh.Filename)
	}

	if text := c.FormValue("extractedText"); strings.TrimSpace(text) != "" {
		return extractor.TextPages(extractor.SplitPages(strings.Clone(text))), name, noop, 0, nil
	}

	if fh == nil {
		return nil, "", noop, fiber.StatusBadRequest, errors.New("No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return nil, "", noop, fiber.StatusBadRequest, errors.New("Only PDF files are supported.")
	}

	tmp, err := os.CreateTemp("", "relatorio-*.pdf")
	if err != nil {
		return nil, "", noop, fiber.StatusInternalServerError, errors.New("Failed to create temp file.")
	}
	tmp.Close()
	cleanup := func() { os.Remove(tmp.Name()) }

	if err := c.SaveFile(fh, tmp.Name()); err != nil {
		cleanup()
		return nil, "", noop, fiber.StatusInternalServerError, errors.New("Failed to save uploaded file.")
	}

	doc, err := extractor.Open(tmp.Name(), s.cfg.PDFBackend)
	if err != nil {
		cleanup()
		return nil, "", noop, fiber.StatusUnprocessableEntity, fmt.Errorf("PDF extraction failed: %v", err)
	}
	return doc, name, cleanup, 0, nil
}

// firstPages returns the text of up to n leading pages.
func firstPages(doc extractor.Document, n int) []string {
	var pages []string
	for i := 0; i < n && i < doc.NumPages(); i++ {
		if page, err := doc.Page(i); err == nil {
			pages = append(pages, page.Content())
		}
	}
	return pages
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
		Records: []models.TransactionRecord{},
	})
}
