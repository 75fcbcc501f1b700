package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/raffle-api/internal/domain"
	"github.com/vietanh2810/raffle-api/internal/repository/dao"
)

var (
	ErrTicketNotFound = dao.ErrTicketNotFound
	ErrCodeTaken      = dao.ErrCodeTaken
)

const topBuyersLimit = 10

type TicketDAO interface {
	Insert(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	FindByID(ctx context.Context, id uint) (dao.Ticket, error)
	Delete(ctx context.Context, id uint) error
	UpdateContact(ctx context.Context, id uint, email, phone string) (dao.Ticket, error)
	List(ctx context.Context, q dao.TicketQuery) ([]dao.Ticket, error)
	TopBuyers(ctx context.Context, limit int) ([]dao.TopBuyer, error)
	FindByCode(ctx context.Context, code string) (dao.Ticket, error)
	FindByEmail(ctx context.Context, email string) ([]dao.Ticket, error)
	SoldCodes(ctx context.Context) ([]string, error)
	CountSold(ctx context.Context) (int64, error)
	WithApprovalLock(ctx context.Context, fn func(tx *dao.ApprovalTx) error) error
}

// ApprovalTx is the view of the store inside one serialized approval.
type ApprovalTx interface {
	ActiveRaffle() (domain.Raffle, error)
	FindTicket(id uint) (domain.Ticket, error)
	IssuedCodes() ([]string, error)
	MarkApproved(id uint, codes []string) (domain.Ticket, error)
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

func (r *TicketRepository) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	created, err := r.dao.Insert(ctx, ticketDomainToDao(ticket))
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return ticketDaoToDomain(created), nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id uint) (domain.Ticket, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return ticketDaoToDomain(found), nil
}

func (r *TicketRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *TicketRepository) UpdateContact(ctx context.Context, id uint, update domain.ContactUpdate) (domain.Ticket, error) {
	var email, phone string
	if update.Email != nil {
		email = *update.Email
	}
	if update.Phone != nil {
		phone = *update.Phone
	}

	updated, err := r.dao.UpdateContact(ctx, id, email, phone)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.UpdateContact -> %w", err)
	}

	return ticketDaoToDomain(updated), nil
}

func (r *TicketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	filter = filter.Normalize()

	found, err := r.dao.List(ctx, dao.TicketQuery{
		PendingOnly:   filter.Status != domain.TicketStatusAll,
		PaymentMethod: filter.PaymentMethod,
		Offset:        filter.Offset(),
		Limit:         filter.PageSize,
		Desc:          filter.Order == domain.SortDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return ticketsDaoToDomain(found), nil
}

func (r *TicketRepository) TopBuyers(ctx context.Context) ([]domain.TopBuyer, error) {
	found, err := r.dao.TopBuyers(ctx, topBuyersLimit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.TopBuyers -> %w", err)
	}

	buyers := make([]domain.TopBuyer, len(found))
	for i, b := range found {
		buyers[i] = domain.TopBuyer{
			Email:        b.Email,
			FullName:     b.FullName,
			Phone:        b.Phone,
			TotalTickets: b.TotalTickets,
			Purchases:    b.Purchases,
		}
	}

	return buyers, nil
}

func (r *TicketRepository) FindByCode(ctx context.Context, code string) (domain.Ticket, error) {
	found, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByCode -> %w", err)
	}

	return ticketDaoToDomain(found), nil
}

func (r *TicketRepository) FindByEmail(ctx context.Context, email string) ([]domain.Ticket, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return ticketsDaoToDomain(found), nil
}

func (r *TicketRepository) SoldCodes(ctx context.Context) ([]string, error) {
	codes, err := r.dao.SoldCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.SoldCodes -> %w", err)
	}
	if codes == nil {
		codes = []string{}
	}

	return codes, nil
}

func (r *TicketRepository) CountSold(ctx context.Context) (int, error) {
	count, err := r.dao.CountSold(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountSold -> %w", err)
	}

	return int(count), nil
}

// WithApprovalLock runs fn inside a transaction holding the raffle row lock.
func (r *TicketRepository) WithApprovalLock(ctx context.Context, fn func(tx ApprovalTx) error) error {
	err := r.dao.WithApprovalLock(ctx, func(tx *dao.ApprovalTx) error {
		return fn(&approvalTx{tx: tx})
	})
	if err != nil {
		return fmt.Errorf("r.dao.WithApprovalLock -> %w", err)
	}

	return nil
}

type approvalTx struct {
	tx *dao.ApprovalTx
}

func (a *approvalTx) ActiveRaffle() (domain.Raffle, error) {
	raffle, err := a.tx.ActiveRaffle()
	if err != nil {
		return domain.Raffle{}, err
	}

	return raffleDaoToDomain(raffle), nil
}

func (a *approvalTx) FindTicket(id uint) (domain.Ticket, error) {
	ticket, err := a.tx.LockTicket(id)
	if err != nil {
		return domain.Ticket{}, err
	}

	return ticketDaoToDomain(ticket), nil
}

func (a *approvalTx) IssuedCodes() ([]string, error) {
	return a.tx.IssuedCodes()
}

func (a *approvalTx) MarkApproved(id uint, codes []string) (domain.Ticket, error) {
	ticket, err := a.tx.MarkApproved(id, codes)
	if err != nil {
		return domain.Ticket{}, err
	}

	return ticketDaoToDomain(ticket), nil
}

func ticketDomainToDao(t domain.Ticket) dao.Ticket {
	return dao.Ticket{
		ID:            t.ID,
		NumberTickets: t.NumberTickets,
		FullName:      t.FullName,
		Email:         t.Email,
		Phone:         t.Phone,
		Reference:     t.Reference,
		PaymentMethod: t.PaymentMethod,
		AmountPaid:    t.AmountPaid,
		Voucher:       t.Voucher,
		Approved:      t.Approved,
		CreatedAt:     t.CreatedAt,
	}
}

func ticketDaoToDomain(t dao.Ticket) domain.Ticket {
	codes := make([]string, len(t.ApprovalCodes))
	for i, c := range t.ApprovalCodes {
		codes[i] = c.Code
	}

	return domain.Ticket{
		ID:            t.ID,
		NumberTickets: t.NumberTickets,
		FullName:      t.FullName,
		Email:         t.Email,
		Phone:         t.Phone,
		Reference:     t.Reference,
		PaymentMethod: t.PaymentMethod,
		AmountPaid:    t.AmountPaid,
		Voucher:       t.Voucher,
		CreatedAt:     t.CreatedAt,
		Approved:      t.Approved,
		ApprovalCodes: codes,
	}
}

func ticketsDaoToDomain(found []dao.Ticket) []domain.Ticket {
	tickets := make([]domain.Ticket, len(found))
	for i, t := range found {
		tickets[i] = ticketDaoToDomain(t)
	}

	return tickets
}
