package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/cv-screener/internal/common"
	"github.com/joseph-ayodele/cv-screener/internal/contacts"
	"github.com/joseph-ayodele/cv-screener/internal/extract"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <document-path>")
		os.Exit(2)
	}
	path := os.Args[1]
	if _, err := os.Stat(path); err != nil {
		logger.Error("cannot stat document", "path", path, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	extractor := extract.NewExtractor(extract.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)

	start := time.Now()
	text, err := extractor.Extract(ctx, path)
	dur := time.Since(start)
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	hints := contacts.Parse(text)
	logger.Info("extraction OK",
		"path", path,
		"bytes", len(text),
		"emails", hints.Emails,
		"phones", hints.Phones,
		"first_name", hints.FirstName,
		"last_name", hints.LastName,
		"duration_ms", dur.Milliseconds(),
	)

	fmt.Println(text)
}
