package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/raffle-api/internal/domain"
	"github.com/vietanh2810/raffle-api/internal/repository/dao"
)

var ErrDollarNotFound = dao.ErrDollarNotFound

type DollarDAO interface {
	Upsert(ctx context.Context, price string) (dao.DollarPrice, error)
	Find(ctx context.Context) (dao.DollarPrice, error)
}

type DollarRepository struct {
	dao DollarDAO
}

func NewDollarRepository(dao DollarDAO) *DollarRepository {
	return &DollarRepository{
		dao: dao,
	}
}

func (r *DollarRepository) Upsert(ctx context.Context, price string) (domain.DollarPrice, error) {
	saved, err := r.dao.Upsert(ctx, price)
	if err != nil {
		return domain.DollarPrice{}, fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return domain.DollarPrice{ID: saved.ID, Price: saved.Price}, nil
}

func (r *DollarRepository) Find(ctx context.Context) (domain.DollarPrice, error) {
	found, err := r.dao.Find(ctx)
	if err != nil {
		return domain.DollarPrice{}, fmt.Errorf("r.dao.Find -> %w", err)
	}

	return domain.DollarPrice{ID: found.ID, Price: found.Price}, nil
}
