package enrichment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs the resolve, submit and parse pipeline.
type Service struct {
	lookup   Lookup
	sessions SessionFactory

	cfgMu sync.RWMutex
	cfg   Config

	logger *zap.Logger
}

// NewService constructs a service from its two external collaborators.
func NewService(lookup Lookup, sessions SessionFactory, cfg Config, logger *zap.Logger) (*Service, error) {
	if lookup == nil {
		return nil, errors.New("annotation lookup is required")
	}
	if sessions == nil {
		return nil, errors.New("enrichment session factory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	return &Service{
		lookup:   lookup,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// NewDefaultService wires the MyGene.info and DAVID clients from cfg.
func NewDefaultService(cfg Config, logger *zap.Logger) (*Service, error) {
	cfg.ApplyDefaults()
	return NewService(NewMyGeneClient(cfg.MyGene), NewDAVIDSessions(cfg.DAVID), cfg, logger)
}

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig replaces the configuration used by later runs.
func (s *Service) UpdateConfig(cfg Config) {
	cfg.ApplyDefaults()
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
}

// Resolve exposes the resolution step on its own.
func (s *Service) Resolve(ctx context.Context, raw []string, organism Organism) Resolution {
	return NewResolver(s.lookup, s.Config().ParallelScopes, s.logger).Resolve(ctx, raw, organism)
}

// Run resolves raw identifiers, submits them and parses the chart report.
// It returns ErrResolutionEmpty, *AuthError or *SubmissionError on failure
// and never a partial table.
func (s *Service) Run(ctx context.Context, raw []string, organism Organism, credential string) (Result, error) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run", runID), zap.String("organism", string(organism)))
	logger.Info("querying annotation service for ENSEMBL IDs", zap.Int("identifiers", len(raw)))

	res := NewResolver(s.lookup, s.Config().ParallelScopes, logger).Resolve(ctx, raw, organism)
	if !res.Matched || len(res.IDs) == 0 {
		logger.Warn("no identifier scope matched")
		return Result{}, ErrResolutionEmpty
	}
	logger.Info("valid ENSEMBL IDs found", zap.Int("count", len(res.IDs)), zap.Int("unresolved", len(res.Unresolved)))
	if len(res.Unresolved) > 0 {
		logger.Debug("unresolved identifiers", zap.Strings("ids", res.Unresolved))
	}

	session, err := s.sessions()
	if err != nil {
		return Result{}, &SubmissionError{Step: "connect", Err: err}
	}
	logger.Info("submitting gene list for enrichment")
	records, err := Submit(ctx, session, res.IDs, credential, DefaultCategories)
	if err != nil {
		logger.Warn("enrichment submission failed", zap.Error(err))
		return Result{}, err
	}
	table := Parse(records)
	logger.Info("enrichment analysis complete", zap.Int("rows", len(table)))
	return Result{
		RunID:      runID,
		Scope:      res.Scope,
		IDs:        res.IDs,
		Unresolved: res.Unresolved,
		Table:      table,
	}, nil
}

// ResultFileName is the export name for a given input column.
func ResultFileName(column string) string {
	column = strings.TrimSpace(column)
	if column == "" {
		column = "genes"
	}
	column = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, column)
	return fmt.Sprintf("GO_%s.csv", column)
}

// SubmittedGenesFile is written next to the input file by the desktop front end.
const SubmittedGenesFile = "submitted_genes.txt"

// SaveSubmittedIDs writes the comma-joined ID list that was submitted.
func SaveSubmittedIDs(dir string, ids []CanonicalID) (string, error) {
	path := filepath.Join(dir, SubmittedGenesFile)
	if err := os.WriteFile(path, []byte(joinIDs(ids)), 0o644); err != nil {
		return "", fmt.Errorf("write submitted genes: %w", err)
	}
	return path, nil
}
