package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/raffle-api/internal/domain"
)

type mockRaffleRepository struct {
	mock.Mock
}

func (m *mockRaffleRepository) Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error) {
	args := m.Called(ctx, raffle)
	return args.Get(0).(domain.Raffle), args.Error(1)
}

func (m *mockRaffleRepository) FindAll(ctx context.Context) ([]domain.Raffle, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Raffle), args.Error(1)
}

func (m *mockRaffleRepository) ToggleVisibility(ctx context.Context) (domain.Raffle, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Raffle), args.Error(1)
}

func (m *mockRaffleRepository) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockSoldCounter struct {
	mock.Mock
}

func (m *mockSoldCounter) CountSold(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestRaffleService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("starts visible", func(t *testing.T) {
		repo := &mockRaffleRepository{}
		repo.On("Create", ctx, mock.MatchedBy(func(r domain.Raffle) bool {
			return r.Visible && r.Images != nil
		})).Return(domain.Raffle{ID: 1, Name: "Moto", Visible: true, Images: []string{}}, nil)

		created, err := NewRaffleService(repo, &mockSoldCounter{}).Create(ctx, domain.Raffle{Name: "Moto"})
		require.NoError(t, err)
		assert.Equal(t, uint(1), created.ID)
		repo.AssertExpectations(t)
	})

	t.Run("second raffle", func(t *testing.T) {
		repo := &mockRaffleRepository{}
		repo.On("Create", ctx, mock.Anything).Return(domain.Raffle{}, ErrRaffleExists)

		_, err := NewRaffleService(repo, &mockSoldCounter{}).Create(ctx, domain.Raffle{Name: "Moto"})
		assert.ErrorIs(t, err, ErrRaffleExists)
	})
}

func TestRaffleService_List(t *testing.T) {
	ctx := context.Background()
	repo := &mockRaffleRepository{}
	sold := &mockSoldCounter{}
	raffles := []domain.Raffle{{ID: 1, Name: "Moto", Images: []string{"a.jpg"}}}
	repo.On("FindAll", ctx).Return(raffles, nil)
	sold.On("CountSold", ctx).Return(12, nil)

	listing, err := NewRaffleService(repo, sold).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, raffles, listing.Raffles)
	assert.Equal(t, 12, listing.TotalSold)

	failing := &mockSoldCounter{}
	failing.On("CountSold", ctx).Return(0, errors.New("db down"))
	_, err = NewRaffleService(repo, failing).List(ctx)
	assert.Error(t, err)
}

func TestRaffleService_ToggleVisibility(t *testing.T) {
	ctx := context.Background()
	repo := &mockRaffleRepository{}
	repo.On("ToggleVisibility", ctx).Return(domain.Raffle{ID: 1, Visible: false}, nil).Once()
	repo.On("ToggleVisibility", ctx).Return(domain.Raffle{}, ErrRaffleNotFound).Once()
	svc := NewRaffleService(repo, &mockSoldCounter{})

	visible, err := svc.ToggleVisibility(ctx)
	require.NoError(t, err)
	assert.False(t, visible)

	_, err = svc.ToggleVisibility(ctx)
	assert.ErrorIs(t, err, ErrRaffleNotFound)
}

func TestRaffleService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := &mockRaffleRepository{}
	repo.On("Delete", ctx).Return(nil).Once()
	repo.On("Delete", ctx).Return(ErrRaffleNotFound).Once()
	cache := &memCache{sold: &domain.SoldNumbers{TotalSold: 3}}
	publisher := &recordingPublisher{}
	svc := NewRaffleService(repo, &mockSoldCounter{}).WithCache(cache).WithPublisher(publisher)

	require.NoError(t, svc.Delete(ctx))
	assert.Nil(t, cache.sold)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, domain.SoldNumbersReset, publisher.events[0].Type)

	assert.ErrorIs(t, svc.Delete(ctx), ErrRaffleNotFound)
	assert.Len(t, publisher.events, 1)
}
