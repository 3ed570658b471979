package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/cv-screener/internal/cache"
	"github.com/joseph-ayodele/cv-screener/internal/common"
	"github.com/joseph-ayodele/cv-screener/internal/export"
	"github.com/joseph-ayodele/cv-screener/internal/extract"
	"github.com/joseph-ayodele/cv-screener/internal/history"
	"github.com/joseph-ayodele/cv-screener/internal/ingest"
	"github.com/joseph-ayodele/cv-screener/internal/judge/openai"
	"github.com/joseph-ayodele/cv-screener/internal/pipeline"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	// Env
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	jobFile := os.Getenv("JOB_DESCRIPTION_FILE")
	if jobFile == "" {
		log.Fatal("JOB_DESCRIPTION_FILE env var is required")
	}
	outDir := os.Getenv("RANKING_OUT_DIR")
	if outDir == "" {
		outDir = "."
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The library layers log through slog; route them to a JSON handler
	// alongside zap's output.
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(slogger)

	store, err := cache.NewStore(cfg.Cache.Dir, slogger)
	if err != nil {
		log.Fatalf("opening extraction cache: %v", err)
	}

	extractor := extract.NewExtractor(extract.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, slogger)

	judgeClient := openai.NewClient(openai.Config{
		APIKey:      cfg.Judge.APIKey,
		BaseURL:     cfg.Judge.BaseURL,
		Model:       cfg.Judge.Model,
		Temperature: cfg.Judge.Temperature,
		Timeout:     cfg.Judge.Timeout,
	}, slogger)

	// History store (optional)
	var runs *history.Store
	if cfg.History.DSN != "" {
		runs, err = history.Open(cfg.History.Driver, cfg.History.DSN, slogger)
		if err != nil {
			log.Fatalf("opening history store: %v", err)
		}
		defer runs.Close()
		if err := runs.InitSchema(ctx); err != nil {
			log.Fatalf("history schema: %v", err)
		}
		log.Infow("history store ready", "driver", cfg.History.Driver)
	}

	orch := &pipeline.Orchestrator{
		Logger:     slogger,
		Cache:      store,
		Extractor:  extractor,
		Judge:      judgeClient,
		Workers:    cfg.Runner.Workers,
		DocTimeout: cfg.Runner.DocTimeout,
	}

	batches, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Dir:      cfg.Inbox.Dir,
		Debounce: cfg.Inbox.Debounce,
		Logger:   slogger,
	})
	if err != nil {
		log.Fatalf("starting inbox watcher: %v", err)
	}
	log.Infof("watching %s", cfg.Inbox.Dir)

	// Screen whatever is already sitting in the inbox at startup.
	screen(ctx, log, orch, runs, cfg.Inbox.Dir, jobFile, outDir)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down...")
			fmt.Println("stopped.")
			return
		case err, ok := <-watchErrs:
			if ok && err != nil {
				log.Errorw("inbox watcher error", "error", err)
			}
		case batch, ok := <-batches:
			if !ok {
				return
			}
			log.Infow("inbox batch settled", "files", len(batch.Paths))
			screen(ctx, log, orch, runs, cfg.Inbox.Dir, jobFile, outDir)
		}
	}
}

// screen runs one full pass over the inbox and writes the ranking CSV.
func screen(ctx context.Context, log *zap.SugaredLogger, orch *pipeline.Orchestrator, runs *history.Store, inbox, jobFile, outDir string) {
	jobText, err := os.ReadFile(jobFile)
	if err != nil {
		log.Errorw("reading job description", "path", jobFile, "error", err)
		return
	}
	job := strings.TrimSpace(string(jobText))
	if job == "" {
		log.Errorw("job description is empty", "path", jobFile)
		return
	}

	docs, err := pipeline.Discover(inbox)
	if err != nil {
		log.Errorw("listing inbox", "dir", inbox, "error", err)
		return
	}
	if len(docs) == 0 {
		return
	}

	run, err := orch.Run(ctx, docs, job)
	if err != nil {
		log.Errorw("screening run failed", "error", err)
		return
	}

	outPath := fmt.Sprintf("%s/ranking-%s.csv", outDir, run.ID)
	f, err := os.Create(outPath)
	if err != nil {
		log.Errorw("creating ranking file", "path", outPath, "error", err)
		return
	}
	if err := export.WriteRun(f, run); err != nil {
		f.Close()
		log.Errorw("writing ranking file", "path", outPath, "error", err)
		return
	}
	if err := f.Close(); err != nil {
		log.Errorw("closing ranking file", "path", outPath, "error", err)
		return
	}

	if runs != nil {
		if err := runs.SaveRun(ctx, run); err != nil {
			log.Errorw("persisting run", "run_id", run.ID, "error", err)
		}
	}

	log.Infow("screening run complete",
		"run_id", run.ID,
		"ranked", len(run.Results),
		"excluded", len(run.Excluded),
		"output_file", outPath)
}
