package service

import (
	"context"
	"fmt"

	"github.com/vietanh2810/raffle-api/internal/domain"
)

type DollarRepository interface {
	Upsert(ctx context.Context, price string) (domain.DollarPrice, error)
	Find(ctx context.Context) (domain.DollarPrice, error)
}

type DollarService struct {
	repo DollarRepository
}

func NewDollarService(repo DollarRepository) *DollarService {
	return &DollarService{
		repo: repo,
	}
}

func (s *DollarService) Get(ctx context.Context) (domain.DollarPrice, error) {
	price, err := s.repo.Find(ctx)
	if err != nil {
		return domain.DollarPrice{}, fmt.Errorf("s.repo.Find -> %w", err)
	}

	return price, nil
}

// Update replaces the single stored price, creating it on first use.
func (s *DollarService) Update(ctx context.Context, price string) (domain.DollarPrice, error) {
	saved, err := s.repo.Upsert(ctx, price)
	if err != nil {
		return domain.DollarPrice{}, fmt.Errorf("s.repo.Upsert -> %w", err)
	}

	return saved, nil
}
