package v1

import (
	"context"
	"mime/multipart"

	"github.com/stretchr/testify/mock"

	"github.com/vietanh2810/raffle-api/internal/domain"
)

type mockTicketService struct {
	mock.Mock
}

func (m *mockTicketService) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *mockTicketService) Approve(ctx context.Context, id uint) ([]string, error) {
	args := m.Called(ctx, id)
	codes, _ := args.Get(0).([]string)
	return codes, args.Error(1)
}

func (m *mockTicketService) Reject(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTicketService) Resend(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTicketService) UpdateContact(ctx context.Context, id uint, update domain.ContactUpdate) (domain.Ticket, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *mockTicketService) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	args := m.Called(ctx, filter)
	tickets, _ := args.Get(0).([]domain.Ticket)
	return tickets, args.Error(1)
}

func (m *mockTicketService) TopBuyers(ctx context.Context) ([]domain.TopBuyer, error) {
	args := m.Called(ctx)
	buyers, _ := args.Get(0).([]domain.TopBuyer)
	return buyers, args.Error(1)
}

func (m *mockTicketService) CheckCode(ctx context.Context, code string) (domain.Ticket, bool, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Ticket), args.Bool(1), args.Error(2)
}

func (m *mockTicketService) CheckEmail(ctx context.Context, email string) (domain.BuyerSummary, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.BuyerSummary), args.Error(1)
}

func (m *mockTicketService) SoldNumbers(ctx context.Context) (domain.SoldNumbers, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SoldNumbers), args.Error(1)
}

type mockRaffleService struct {
	mock.Mock
}

func (m *mockRaffleService) Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error) {
	args := m.Called(ctx, raffle)
	return args.Get(0).(domain.Raffle), args.Error(1)
}

func (m *mockRaffleService) List(ctx context.Context) (domain.RaffleListing, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RaffleListing), args.Error(1)
}

func (m *mockRaffleService) ToggleVisibility(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockRaffleService) Delete(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockDollarService struct {
	mock.Mock
}

func (m *mockDollarService) Get(ctx context.Context) (domain.DollarPrice, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DollarPrice), args.Error(1)
}

func (m *mockDollarService) Update(ctx context.Context, price string) (domain.DollarPrice, error) {
	args := m.Called(ctx, price)
	return args.Get(0).(domain.DollarPrice), args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, token, userAgent string) (string, error) {
	args := m.Called(ctx, token, userAgent)
	return args.String(0), args.Error(1)
}

type memFileStore struct {
	saved   []string
	removed []string
	err     error
}

func (s *memFileStore) Save(fh *multipart.FileHeader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, fh.Filename)
	return "1700000000000000000.jpg", nil
}

func (s *memFileStore) Remove(name string) error {
	s.removed = append(s.removed, name)
	return nil
}
