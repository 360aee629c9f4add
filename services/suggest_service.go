package services

import (
	"context"
	"strings"
	"sync"

	"mercadito/models"
)

// minSuggestLen mirrors the search box: shorter terms clear the
// suggestions instead of querying.
const minSuggestLen = 3

type SuggestFunc func(ctx context.Context, term string, limit int) ([]models.Product, error)

// Suggester runs search-suggestion lookups with cancel-previous
// semantics: issuing a new term cancels the in-flight lookup so a late
// result can never overwrite a newer one. Last-issued-query-wins.
type Suggester struct {
	lookup SuggestFunc
	limit  int

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
}

func NewSuggester(catalog *CatalogService, limit int) *Suggester {
	return &Suggester{limit: limit, lookup: catalogLookup(catalog)}
}

func catalogLookup(catalog *CatalogService) SuggestFunc {
	return func(ctx context.Context, term string, limit int) ([]models.Product, error) {
		listing, err := catalog.ListProducts(ctx, ProductQuery{
			Query:    term,
			Page:     1,
			PageSize: limit,
		})
		if err != nil {
			return nil, err
		}
		return listing.Items, nil
	}
}

// SuggesterPool hands out one Suggester per profile. Cancel-previous
// only makes sense within a single client's search box, so the state
// never crosses profiles: one client typing cannot cancel another
// client's in-flight lookup.
type SuggesterPool struct {
	lookup SuggestFunc
	limit  int

	mu        sync.Mutex
	byProfile map[string]*Suggester
}

func NewSuggesterPool(catalog *CatalogService, limit int) *SuggesterPool {
	return &SuggesterPool{
		lookup:    catalogLookup(catalog),
		limit:     limit,
		byProfile: make(map[string]*Suggester),
	}
}

func (p *SuggesterPool) For(profile string) *Suggester {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.byProfile[profile]
	if !ok {
		s = &Suggester{lookup: p.lookup, limit: p.limit}
		p.byProfile[profile] = s
	}
	return s
}

func (s *Suggester) Suggest(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < minSuggestLen {
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.seq++
		s.mu.Unlock()
		return []models.Product{}, nil
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	lookupCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.seq++
	mine := s.seq
	s.mu.Unlock()

	items, err := s.lookup(lookupCtx, term, s.limit)

	s.mu.Lock()
	latest := s.seq == mine
	if latest {
		s.cancel = nil
	}
	s.mu.Unlock()
	cancel()

	if !latest {
		return nil, context.Canceled
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}
