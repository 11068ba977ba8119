package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
	"TripIdeas/internal/query"
	"TripIdeas/internal/ranker"
)

// StockConfig tunes stock searches.
type StockConfig struct {
	Label       string `yaml:"label"`
	Candidates  int    `yaml:"candidates"`
	Orientation string `yaml:"orientation"`
}

// Stock searches a stock library and lets the ranker pick the best candidates.
type Stock struct {
	searcher ports.StockSearcher
	ranker   *ranker.Ranker
	synth    *query.Synthesizer
	cfg      StockConfig
	logger   *slog.Logger
}

// NewStock defaults to 30 landscape candidates per search.
func NewStock(searcher ports.StockSearcher, rk *ranker.Ranker, synth *query.Synthesizer, cfg StockConfig, log *slog.Logger) *Stock {
	if cfg.Label == "" {
		cfg.Label = "stock"
	}
	if cfg.Candidates <= 0 {
		cfg.Candidates = 30
	}
	if cfg.Orientation == "" {
		cfg.Orientation = "landscape"
	}
	if rk == nil {
		rk = ranker.New(ranker.DefaultConfig())
	}
	if synth == nil {
		synth = query.NewSynthesizer(query.DefaultTable(), nil)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Stock{searcher: searcher, ranker: rk, synth: synth, cfg: cfg, logger: log}
}

func (s *Stock) Name() string {
	return "stock"
}

// Acquire searches with the premium query first and retries with the plain query
// when too few candidates clear the primary threshold.
func (s *Stock) Acquire(ctx context.Context, req Request) (domain.ImageResult, error) {
	if s.searcher == nil {
		return domain.ImageResult{}, domain.ErrNotConfigured
	}

	var season string
	if req.MonthHint != nil {
		season = query.SeasonForMonth(*req.MonthHint)
	}

	premium := s.synth.PremiumInSeason(req.Prompt, season)
	best, premiumErr := s.search(ctx, premium)
	if errors.Is(premiumErr, domain.ErrNotConfigured) {
		return domain.ImageResult{}, premiumErr
	}
	if premiumErr == nil && best.PrimaryCount >= s.ranker.TopN() {
		return s.result(best), nil
	}

	plain := s.synth.SynthesizeInSeason(req.Prompt, season)
	s.logger.Debug("retrying stock search with plain query", "premium", premium, "plain", plain)

	retry, plainErr := s.search(ctx, plain)
	switch {
	case premiumErr != nil && plainErr != nil:
		return domain.ImageResult{}, fmt.Errorf("%w: %w", domain.ErrProviderFailure, errors.Join(premiumErr, plainErr))
	case premiumErr != nil:
		best = retry
	case plainErr == nil && better(retry, best):
		best = retry
	}

	if len(best.URLs()) == 0 {
		return domain.ImageResult{}, fmt.Errorf("%w: no candidate cleared the quality bar", domain.ErrProviderFailure)
	}
	return s.result(best), nil
}

func (s *Stock) search(ctx context.Context, q string) (ranker.Selection, error) {
	cands, err := s.searcher.Search(ctx, q, s.cfg.Candidates, s.cfg.Orientation)
	if err != nil {
		return ranker.Selection{}, fmt.Errorf("search %q: %w", q, err)
	}
	sel := s.ranker.Rank(cands)
	s.logger.Debug("stock search ranked", "query", q, "candidates", len(cands), "selected", len(sel.Images), "primary", sel.PrimaryCount)
	return sel, nil
}

func (s *Stock) result(sel ranker.Selection) domain.ImageResult {
	return domain.ImageResult{
		URLs:     sel.URLs(),
		Provider: s.cfg.Label,
		Source:   domain.SourceStock,
	}
}

func better(a, b ranker.Selection) bool {
	if a.PrimaryCount != b.PrimaryCount {
		return a.PrimaryCount > b.PrimaryCount
	}
	return len(a.Images) > len(b.Images)
}
