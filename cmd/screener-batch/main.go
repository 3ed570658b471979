package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/cv-screener/internal/cache"
	"github.com/joseph-ayodele/cv-screener/internal/common"
	"github.com/joseph-ayodele/cv-screener/internal/export"
	"github.com/joseph-ayodele/cv-screener/internal/extract"
	"github.com/joseph-ayodele/cv-screener/internal/history"
	"github.com/joseph-ayodele/cv-screener/internal/judge/openai"
	"github.com/joseph-ayodele/cv-screener/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory holding the CVs to screen (defaults to CV_INBOX_DIR)")
		jobFile = flag.String("job", "", "path to the job description text file")
		jobText = flag.String("jobtext", "", "job description given inline (alternative to --job)")
		out     = flag.String("out", "", "output CSV path (defaults to ranking.csv next to the CV directory)")
		xlsxOut = flag.String("xlsx", "", "also write an XLSX workbook to this path (optional)")
		workers = flag.Int("workers", 0, "concurrent documents (defaults to PIPELINE_WORKERS)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *dir == "" {
		*dir = cfg.Inbox.Dir
	}
	if *workers > 0 {
		cfg.Runner.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	job, err := loadJobText(*jobFile, *jobText)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "ranking.csv")
	}

	ctx := context.Background()

	store, err := cache.NewStore(cfg.Cache.Dir, logger)
	if err != nil {
		logger.Error("failed to open extraction cache", "dir", cfg.Cache.Dir, "error", err)
		os.Exit(1)
	}

	extractor := extract.NewExtractor(extract.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	judgeClient := openai.NewClient(openai.Config{
		APIKey:      cfg.Judge.APIKey,
		BaseURL:     cfg.Judge.BaseURL,
		Model:       cfg.Judge.Model,
		Temperature: cfg.Judge.Temperature,
		Timeout:     cfg.Judge.Timeout,
	}, logger)

	docs, err := pipeline.Discover(*dir)
	if err != nil {
		logger.Error("failed to list CV directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		logger.Warn("no documents to screen", "dir", *dir)
	}

	o := &pipeline.Orchestrator{
		Logger:     logger,
		Cache:      store,
		Extractor:  extractor,
		Judge:      judgeClient,
		Workers:    cfg.Runner.Workers,
		DocTimeout: cfg.Runner.DocTimeout,
	}
	run, err := o.Run(ctx, docs, job)
	if err != nil {
		logger.Error("screening run failed", "error", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		logger.Error("failed to create output file", "path", *out, "error", err)
		os.Exit(1)
	}
	if err := export.WriteRun(f, run); err != nil {
		f.Close()
		logger.Error("failed to write CSV", "path", *out, "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		logger.Error("failed to close output file", "path", *out, "error", err)
		os.Exit(1)
	}

	if *xlsxOut != "" {
		data, err := export.RankingXLSX(run, logger)
		if err != nil {
			logger.Error("failed to build XLSX", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxOut, data, 0644); err != nil {
			logger.Error("failed to write XLSX", "path", *xlsxOut, "error", err)
			os.Exit(1)
		}
	}

	if cfg.History.DSN != "" {
		hs, err := history.Open(cfg.History.Driver, cfg.History.DSN, logger)
		if err != nil {
			logger.Error("failed to open history store", "error", err)
		} else {
			defer hs.Close()
			if err := hs.InitSchema(ctx); err != nil {
				logger.Error("failed to init history schema", "error", err)
			} else if err := hs.SaveRun(ctx, run); err != nil {
				logger.Error("failed to persist run", "run_id", run.ID, "error", err)
			}
		}
	}

	logger.Info("screening complete",
		"run_id", run.ID,
		"ranked", len(run.Results),
		"excluded", len(run.Excluded),
		"output_file", *out)

	fmt.Printf("Screening complete!\n")
	fmt.Printf("- Candidates ranked: %d\n", len(run.Results))
	fmt.Printf("- Documents excluded: %d\n", len(run.Excluded))
	fmt.Printf("- Output: %s\n", *out)
}

func loadJobText(jobFile, jobText string) (string, error) {
	if jobFile == "" && jobText == "" {
		return "", fmt.Errorf("--job or --jobtext is required")
	}
	if jobFile != "" && jobText != "" {
		return "", fmt.Errorf("--job and --jobtext are mutually exclusive")
	}
	if jobText != "" {
		return jobText, nil
	}
	data, err := os.ReadFile(jobFile)
	if err != nil {
		return "", fmt.Errorf("reading job description %s: %w", jobFile, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("job description %s is empty", jobFile)
	}
	return text, nil
}
