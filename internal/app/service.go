package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/Caleb-Mok/TS-Blood-Test-Analyser/analyzer"
	"github.com/Caleb-Mok/TS-Blood-Test-Analyser/extract"
)

// Service wires the classification core to the extraction pipeline for the
// desktop app. The analyzer side is read-only after construction; only the
// lazily created extractor needs guarding.
type Service struct {
	core   *analyzer.Service
	cfg    analyzer.Config
	logger *log.Logger

	mu        sync.Mutex
	extractor *extract.Extractor
}

// NewService loads config and reference data, seeding the data files on
// first run so users have something to edit.
func NewService(configPath string, logger *log.Logger) (*Service, error) {
	cfg, err := analyzer.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := analyzer.EnsureCatalogFile(cfg.CatalogPath); err != nil {
		logger.Printf("could not seed catalog file: %v", err)
	}
	if err := analyzer.EnsureAliasFile(cfg.AliasPath); err != nil {
		logger.Printf("could not seed alias file: %v", err)
	}
	core, err := analyzer.NewService(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Service{core: core, cfg: cfg, logger: logger}, nil
}

// Core exposes the classification service.
func (s *Service) Core() *analyzer.Service {
	return s.core
}

// ExtractReport converts a PDF to text and runs the structured extraction.
// Both steps block; callers run this off the UI thread.
func (s *Service) ExtractReport(ctx context.Context, path string) (extract.Report, error) {
	text, err := extract.PDFText(path)
	if err != nil {
		return extract.Report{}, err
	}
	ex, err := s.ensureExtractor(ctx)
	if err != nil {
		return extract.Report{}, err
	}
	return ex.Extract(ctx, text)
}

func (s *Service) ensureExtractor(ctx context.Context) (*extract.Extractor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.extractor != nil {
		return s.extractor, nil
	}
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set; automatic extraction is unavailable")
	}
	ex, err := extract.NewExtractor(ctx, apiKey, s.cfg.GeminiModel, s.cfg.CacheDir, s.logger)
	if err != nil {
		return nil, fmt.Errorf("init extractor: %w", err)
	}
	s.extractor = ex
	return ex, nil
}
