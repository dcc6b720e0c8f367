package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Recorder observes export outcomes.
type Recorder interface {
	ObserveExport(strategy, outcome string, rows int)
}

// Config configures an Exporter.
type Config struct {
	// Dir enables native saving into a directory. When empty, exports go
	// through download links.
	Dir         string
	Links       *Links
	Revoker     Revoker
	RevokeAfter time.Duration
	Logger      *slog.Logger
	Recorder    Recorder
}

// Exporter builds workbooks and persists them.
type Exporter struct {
	native      *DirSaver
	links       *Links
	revoker     Revoker
	revokeAfter time.Duration
	logger      *slog.Logger
	recorder    Recorder
}

// NewExporter constructs an Exporter.
func NewExporter(cfg Config) *Exporter {
	e := &Exporter{
		links:       cfg.Links,
		revoker:     cfg.Revoker,
		revokeAfter: cfg.RevokeAfter,
		logger:      cfg.Logger,
		recorder:    cfg.Recorder,
	}
	if cfg.Dir != "" {
		e.native = &DirSaver{Dir: cfg.Dir}
	}
	if e.revokeAfter <= 0 {
		e.revokeAfter = time.Minute
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Request describes one export.
type Request struct {
	FileName string
	Sheet    Sheet
}

// Result tells where the exported file went. Exactly one of Path and URL is
// set.
type Result struct {
	FileName string
	Count    int
	Path     string
	URL      string
}

// Export builds the workbook and saves it natively when a directory is
// configured, or behind a download link otherwise. A failed native save is
// reported as is; it does not fall back to a link.
func (e *Exporter) Export(ctx context.Context, req Request) (Result, error) {
	data, err := Build(req.Sheet)
	if err != nil {
		e.observe("build", "error", 0)
		return Result{}, err
	}
	res := Result{FileName: req.FileName, Count: len(req.Sheet.Rows)}

	if e.native != nil {
		path, err := e.native.Save(req.FileName, data)
		if err != nil {
			e.observe("native", "error", 0)
			return Result{}, err
		}
		res.Path = path
		e.observe("native", "success", res.Count)
		return res, nil
	}

	if e.links == nil {
		e.observe("link", "error", 0)
		return Result{}, errors.New("export: no save strategy available")
	}
	token, url, err := e.links.Put(ctx, req.FileName, data)
	if err != nil {
		e.observe("link", "error", 0)
		return Result{}, err
	}
	if e.revoker != nil {
		if err := e.revoker.ScheduleRevoke(ctx, token, e.revokeAfter); err != nil {
			e.logger.Warn("schedule download revoke", slog.String("token", token), slog.Any("error", err))
		}
	}
	res.URL = url
	e.observe("link", "success", res.Count)
	return res, nil
}

// Open returns the file behind a download token.
func (e *Exporter) Open(ctx context.Context, token string) (Download, error) {
	if e.links == nil {
		return Download{}, ErrLinkNotFound
	}
	return e.links.Open(ctx, token)
}

// Revoke removes a download link.
func (e *Exporter) Revoke(ctx context.Context, token string) error {
	if e.links == nil {
		return nil
	}
	if err := e.links.Revoke(ctx, token); err != nil {
		return fmt.Errorf("export: revoke: %w", err)
	}
	return nil
}

func (e *Exporter) observe(strategy, outcome string, rows int) {
	if e.recorder != nil {
		e.recorder.ObserveExport(strategy, outcome, rows)
	}
}
