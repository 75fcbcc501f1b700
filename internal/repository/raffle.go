package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/raffle-api/internal/domain"
	"github.com/vietanh2810/raffle-api/internal/repository/dao"
)

var (
	ErrRaffleExists   = dao.ErrRaffleExists
	ErrRaffleNotFound = dao.ErrRaffleNotFound
)

type RaffleDAO interface {
	Insert(ctx context.Context, raffle dao.Raffle) (dao.Raffle, error)
	FindActive(ctx context.Context) (dao.Raffle, error)
	FindAll(ctx context.Context) ([]dao.Raffle, error)
	ToggleVisibility(ctx context.Context) (dao.Raffle, error)
	DeleteCascade(ctx context.Context) error
}

type RaffleRepository struct {
	dao RaffleDAO
}

func NewRaffleRepository(dao RaffleDAO) *RaffleRepository {
	return &RaffleRepository{
		dao: dao,
	}
}

func (r *RaffleRepository) Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error) {
	created, err := r.dao.Insert(ctx, raffleDomainToDao(raffle))
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return raffleDaoToDomain(created), nil
}

func (r *RaffleRepository) FindActive(ctx context.Context) (domain.Raffle, error) {
	found, err := r.dao.FindActive(ctx)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.FindActive -> %w", err)
	}

	return raffleDaoToDomain(found), nil
}

func (r *RaffleRepository) FindAll(ctx context.Context) ([]domain.Raffle, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	raffles := make([]domain.Raffle, len(found))
	for i, raffle := range found {
		raffles[i] = raffleDaoToDomain(raffle)
	}

	return raffles, nil
}

func (r *RaffleRepository) ToggleVisibility(ctx context.Context) (domain.Raffle, error) {
	toggled, err := r.dao.ToggleVisibility(ctx)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.ToggleVisibility -> %w", err)
	}

	return raffleDaoToDomain(toggled), nil
}

func (r *RaffleRepository) Delete(ctx context.Context) error {
	if err := r.dao.DeleteCascade(ctx); err != nil {
		return fmt.Errorf("r.dao.DeleteCascade -> %w", err)
	}

	return nil
}

func raffleDomainToDao(raffle domain.Raffle) dao.Raffle {
	return dao.Raffle{
		ID:          raffle.ID,
		Name:        raffle.Name,
		Description: raffle.Description,
		TicketPrice: raffle.TicketPrice,
		Images:      raffle.Images,
		Visible:     raffle.Visible,
		MinValue:    raffle.MinValue,
		CreatedAt:   raffle.CreatedAt,
	}
}

func raffleDaoToDomain(raffle dao.Raffle) domain.Raffle {
	images := raffle.Images
	if images == nil {
		images = []string{}
	}

	return domain.Raffle{
		ID:          raffle.ID,
		Name:        raffle.Name,
		Description: raffle.Description,
		TicketPrice: raffle.TicketPrice,
		Images:      images,
		Visible:     raffle.Visible,
		MinValue:    raffle.MinValue,
		CreatedAt:   raffle.CreatedAt,
	}
}
