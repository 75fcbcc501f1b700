package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vietanh2810/raffle-api/internal/domain"
)

type RaffleRepository interface {
	Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error)
	FindAll(ctx context.Context) ([]domain.Raffle, error)
	ToggleVisibility(ctx context.Context) (domain.Raffle, error)
	Delete(ctx context.Context) error
}

type SoldCounter interface {
	CountSold(ctx context.Context) (int, error)
}

type RaffleService struct {
	repo      RaffleRepository
	sold      SoldCounter
	cache     SoldNumbersCache
	publisher SoldNumbersPublisher
}

func NewRaffleService(repo RaffleRepository, sold SoldCounter) *RaffleService {
	return &RaffleService{
		repo: repo,
		sold: sold,
	}
}

func (s *RaffleService) WithCache(c SoldNumbersCache) *RaffleService {
	s.cache = c
	return s
}

func (s *RaffleService) WithPublisher(p SoldNumbersPublisher) *RaffleService {
	s.publisher = p
	return s
}

// Create stores the one raffle. New raffles start visible.
func (s *RaffleService) Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error) {
	raffle.Visible = true
	if raffle.Images == nil {
		raffle.Images = []string{}
	}

	created, err := s.repo.Create(ctx, raffle)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *RaffleService) List(ctx context.Context) (domain.RaffleListing, error) {
	raffles, err := s.repo.FindAll(ctx)
	if err != nil {
		return domain.RaffleListing{}, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	total, err := s.sold.CountSold(ctx)
	if err != nil {
		return domain.RaffleListing{}, fmt.Errorf("s.sold.CountSold -> %w", err)
	}

	return domain.RaffleListing{Raffles: raffles, TotalSold: total}, nil
}

// ToggleVisibility flips the visible flag and returns the new value.
func (s *RaffleService) ToggleVisibility(ctx context.Context) (bool, error) {
	raffle, err := s.repo.ToggleVisibility(ctx)
	if err != nil {
		return false, fmt.Errorf("s.repo.ToggleVisibility -> %w", err)
	}

	return raffle.Visible, nil
}

// Delete removes the raffle with every ticket and issued code.
func (s *RaffleService) Delete(ctx context.Context) error {
	if err := s.repo.Delete(ctx); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			zap.L().Warn("sold numbers cache invalidation failed", zap.Error(err))
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(domain.SoldNumbersEvent{Type: domain.SoldNumbersReset, Codes: []string{}})
	}

	return nil
}
