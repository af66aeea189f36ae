package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/rachidben91-web/demat-bt-bdsn/internal/badges"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/cache"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/config"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/doctype"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/export"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/pdfsource"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/roster"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/segmenter"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/server"
	"github.com/rachidben91-web/demat-bt-bdsn/internal/zones"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// pipeline bundles the extraction collaborators built from configuration.
type pipeline struct {
	cfg *config.Config
	seg *segmenter.Segmenter
}

// buildPipeline loads the zone registry and optional collaborators. Only the
// zones file is mandatory; missing badge rules or roster degrade to empty
// badges and unresolved technicians.
func buildPipeline(cfg *config.Config) (*pipeline, error) {
	reg, err := zones.Load(cfg.ZonesPath)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}

	var engine *badges.Engine
	if rs, err := badges.LoadRules(cfg.RulesPath); err != nil {
		log.Printf("Badge rules unavailable (%v); continuing without badges", err)
	} else {
		engine = badges.NewEngine(rs)
	}

	var ro *roster.Roster
	if r, err := roster.Load(cfg.RosterPath); err != nil {
		log.Printf("Roster unavailable (%v); technician names will not be resolved", err)
	} else {
		ro = r
	}

	seg := segmenter.New(reg, doctype.NewWithPhotoLimit(cfg.PhotoTextLimit), engine, ro)
	return &pipeline{cfg: cfg, seg: seg}, nil
}

// Extract opens the source PDF and runs one full segmentation pass.
func (p *pipeline) Extract(ctx context.Context) (*segmenter.Result, error) {
	doc, err := pdfsource.Open(p.cfg.PDFPath, p.cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if p.cfg.IsDebug() {
		p.seg.SetProgress(func(page, total int) {
			log.Printf("Processing page %d/%d", page, total)
		})
	}
	return p.seg.Run(ctx, doc)
}

// runExtractMode performs one extraction, prints the result as JSON, saves
// the snapshot and writes the export artifacts.
func runExtractMode(ctx context.Context, cfg *config.Config) error {
	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := p.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	log.Printf("Extracted %d work orders in %s", len(res.Orders), time.Since(start).Round(time.Millisecond))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	pdfName := filepath.Base(cfg.PDFPath)
	if store, err := cache.Open(cfg.CachePath); err != nil {
		log.Printf("Cache unavailable (%v); snapshot not saved", err)
	} else {
		defer store.Close()
		pdfData, err := os.ReadFile(cfg.PDFPath)
		if err != nil {
			log.Printf("Source PDF not cached (%v)", err)
		}
		if err := store.Save(ctx, res, pdfName, pdfData); err != nil {
			log.Printf("Cache save failed: %v", err)
		}
	}

	if cfg.OutputDir == "" {
		return nil
	}
	exp := export.New(cfg.PDFPath, cfg.OutputDir)
	for _, o := range res.Orders {
		if _, err := exp.WorkOrderPDF(o); err != nil {
			log.Printf("Export of %s failed: %v", o.ID, err)
		}
	}
	if _, err := exp.DayPDF(res.Orders, "tournee.pdf"); err != nil {
		log.Printf("Day export failed: %v", err)
	}
	if _, err := exp.DayBrief(res, "Tournée "+pdfName); err != nil {
		log.Printf("Day brief failed: %v", err)
	}
	return nil
}

// runServeMode starts the HTTP API, seeded from the cache when a snapshot
// exists, and shuts down gracefully on SIGINT/SIGTERM.
func runServeMode(ctx context.Context, cfg *config.Config) error {
	var runner server.Runner
	var exporter server.OrderExporter
	if cfg.PDFPath != "" {
		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		runner = p
		exporter = export.New(cfg.PDFPath, cfg.OutputDir)
	}

	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	srv := server.New(runner, exporter, store, filepath.Base(cfg.PDFPath))
	if snap, err := store.Load(ctx); err == nil {
		srv.SetResult(snap.Result, snap.SavedAt)
		log.Printf("Loaded cached snapshot of %s (%d work orders)", snap.PDFName, len(snap.Result.Orders))
	} else if !errors.Is(err, cache.ErrEmpty) {
		log.Printf("Cache load failed: %v", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on http://%s", cfg.Address())
		serverErrCh <- httpSrv.ListenAndServe()
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Println("Server stopped successfully")
	return nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.SetFlags(log.LstdFlags)
	if cfg.IsDebug() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	if version != "dev" {
		cfg.Version = version
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServeMode() {
		err = runServeMode(ctx, cfg)
	} else {
		err = runExtractMode(ctx, cfg)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Demat BT\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
