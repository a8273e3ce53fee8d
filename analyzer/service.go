package analyzer

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

// Service orchestrates resolution, classification and aggregation over a
// shared read-only catalog. Nothing is mutated after construction except the
// config, which is guarded; classification itself is pure, so independent
// Aggregate calls are safe to run concurrently.
type Service struct {
	cfgMu sync.RWMutex
	cfg   Config

	catalog    *Catalog
	aliases    AliasTable
	resolver   *Resolver
	aggregator *Aggregator

	logger *log.Logger
}

// NewService loads the catalog and alias table named by the config (falling
// back to the embedded defaults when the files are absent) and wires the
// pipeline.
func NewService(cfg Config, logger *log.Logger) (*Service, error) {
	cfg.ApplyDefaults()
	catalog, err := LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	aliases, err := LoadAliases(cfg.AliasPath)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	return newService(cfg, catalog, aliases, logger), nil
}

// NewServiceWith builds a service over an already constructed catalog and
// alias table, bypassing file loading.
func NewServiceWith(cfg Config, catalog *Catalog, aliases AliasTable, logger *log.Logger) *Service {
	cfg.ApplyDefaults()
	return newService(cfg, catalog, aliases, logger)
}

func newService(cfg Config, catalog *Catalog, aliases AliasTable, logger *log.Logger) *Service {
	resolver := NewResolver(catalog, aliases, cfg.FuzzyCutoff)
	s := &Service{
		cfg:        cfg,
		catalog:    catalog,
		aliases:    aliases,
		resolver:   resolver,
		aggregator: NewAggregator(catalog, resolver, cfg.Tolerance),
		logger:     logger,
	}
	s.logf("Loaded %d canonical tests, %d aliases", catalog.Len(), len(aliases))
	return s
}

// Catalog returns the shared read-only catalog.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig swaps matching parameters without reloading catalog data.
func (s *Service) UpdateConfig(cfg Config) {
	cfg.ApplyDefaults()
	resolver := NewResolver(s.catalog, s.aliases, cfg.FuzzyCutoff)
	s.cfgMu.Lock()
	s.cfg = cfg
	s.resolver = resolver
	s.aggregator = NewAggregator(s.catalog, resolver, cfg.Tolerance)
	s.cfgMu.Unlock()
}

func (s *Service) pipeline() (*Resolver, *Aggregator) {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.resolver, s.aggregator
}

// Resolve maps one raw test name onto the catalog.
func (s *Service) Resolve(input string) Resolution {
	resolver, _ := s.pipeline()
	res := resolver.Resolve(input)
	if res.Confidence == MatchFuzzy {
		s.logf("Fuzzy matched %q -> %q (%d%%)", input, res.Canonical, res.Score)
	}
	return res
}

// Classify buckets one raw value string against a named catalog test.
// An unknown test name yields StatusUncheckable.
func (s *Service) Classify(testName, rawValue string) Status {
	test, ok := s.catalog.Lookup(testName)
	if !ok {
		if strings.TrimSpace(rawValue) == "" {
			return StatusEmpty
		}
		return StatusUncheckable
	}
	return ClassifyRaw(rawValue, test, s.Config().Tolerance)
}

// Aggregate runs the whole pipeline over raw (name, value) pairs.
func (s *Service) Aggregate(rawValues map[string]string) Report {
	_, aggregator := s.pipeline()
	report := aggregator.Aggregate(rawValues)
	for _, name := range report.Unresolved {
		s.logf("Could not map %q to any catalog test", name)
	}
	return report
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
