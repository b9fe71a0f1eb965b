package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Service coordinates catalogue maintenance.
type Service struct {
	repo Repository
}

// NewService constructs Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Reference) == "" {
		return fmt.Errorf("%w: product reference is required", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	}
	return nil
}

// List returns all products without variant expansion.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Get returns one product with its variants.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a catalogue entry together with its initial variant set.
// Product and variants land as one unit; a variant failure rolls back
// the product as well.
func (s *Service) Create(ctx context.Context, p Product, variants []VariantInput) (*Product, error) {
	if err := s.validate(p); err != nil {
		return nil, err
	}
	for _, v := range variants {
		if v.Channel != "" && !v.Channel.Valid() {
			return nil, fmt.Errorf("%w: channel must be single or wholesale", ErrInvalidInput)
		}
	}
	id, err := s.repo.Create(ctx, p, variants)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Stock sums the product's variant stock across both channels and per
// channel. Returns ErrNotFound for an unknown product rather than zeros.
func (s *Service) Stock(ctx context.Context, productID int64) (*StockSummary, error) {
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return nil, err
	}
	total, err := s.repo.AggregateStock(ctx, productID, "")
	if err != nil {
		return nil, err
	}
	single, err := s.repo.AggregateStock(ctx, productID, ChannelSingle)
	if err != nil {
		return nil, err
	}
	wholesale, err := s.repo.AggregateStock(ctx, productID, ChannelWholesale)
	if err != nil {
		return nil, err
	}
	return &StockSummary{Stock: total, StockSingle: single, StockWholesale: wholesale}, nil
}

// Update applies a partial field update.
func (s *Service) Update(ctx context.Context, id int64, patch ProductPatch) (*Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a product and cascades its variants.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ReplaceVariants swaps the product's variant list wholesale. Used for
// catalogue maintenance, never for sale-driven stock changes.
func (s *Service) ReplaceVariants(ctx context.Context, productID int64, variants []VariantInput) (*Product, error) {
	for _, v := range variants {
		if v.Channel != "" && !v.Channel.Valid() {
			return nil, fmt.Errorf("%w: channel must be single or wholesale", ErrInvalidInput)
		}
	}
	if err := s.repo.ReplaceVariants(ctx, productID, variants); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, productID)
}
