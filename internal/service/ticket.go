package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vietanh2810/raffle-api/internal/domain"
	"github.com/vietanh2810/raffle-api/internal/pkg/approvalcode"
	"github.com/vietanh2810/raffle-api/internal/repository"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	FindByID(ctx context.Context, id uint) (domain.Ticket, error)
	Delete(ctx context.Context, id uint) error
	UpdateContact(ctx context.Context, id uint, update domain.ContactUpdate) (domain.Ticket, error)
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	TopBuyers(ctx context.Context) ([]domain.TopBuyer, error)
	FindByCode(ctx context.Context, code string) (domain.Ticket, error)
	FindByEmail(ctx context.Context, email string) ([]domain.Ticket, error)
	SoldCodes(ctx context.Context) ([]string, error)
	CountSold(ctx context.Context) (int, error)
	WithApprovalLock(ctx context.Context, fn func(tx repository.ApprovalTx) error) error
}

type ActiveRaffleFinder interface {
	FindActive(ctx context.Context) (domain.Raffle, error)
}

type CodeAllocator interface {
	Allocate(count int, issued map[string]struct{}) ([]string, error)
}

// Notifier emails buyers. NotifyApproval must not block; ResendApproval
// reports the delivery error.
type Notifier interface {
	NotifyApproval(ticket domain.Ticket, raffle domain.Raffle)
	ResendApproval(ctx context.Context, ticket domain.Ticket, raffle domain.Raffle) error
}

type SoldNumbersCache interface {
	Get(ctx context.Context) (domain.SoldNumbers, bool, error)
	Set(ctx context.Context, sold domain.SoldNumbers) error
	Invalidate(ctx context.Context) error
}

type SoldNumbersPublisher interface {
	Publish(event domain.SoldNumbersEvent)
}

type TicketService struct {
	repo      TicketRepository
	raffles   ActiveRaffleFinder
	allocator CodeAllocator
	notifier  Notifier
	maxCodes  int

	cache     SoldNumbersCache
	publisher SoldNumbersPublisher
}

func NewTicketService(repo TicketRepository, raffles ActiveRaffleFinder, allocator CodeAllocator, notifier Notifier, maxCodes int) *TicketService {
	return &TicketService{
		repo:      repo,
		raffles:   raffles,
		allocator: allocator,
		notifier:  notifier,
		maxCodes:  maxCodes,
	}
}

// WithCache serves sold numbers from c and keeps it invalidated.
func (s *TicketService) WithCache(c SoldNumbersCache) *TicketService {
	s.cache = c
	return s
}

// WithPublisher announces every change of the sold numbers to p.
func (s *TicketService) WithPublisher(p SoldNumbersPublisher) *TicketService {
	s.publisher = p
	return s
}

func (s *TicketService) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	if _, err := s.activeRaffle(ctx); err != nil {
		return domain.Ticket{}, err
	}

	ticket.Approved = false
	ticket.ApprovalCodes = nil

	created, err := s.repo.Create(ctx, ticket)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// Approve issues one fresh code per requested ticket and emails the buyer.
// The whole read-check-allocate-write sequence runs under the approval
// lock, so concurrent approvals never hand out the same code.
func (s *TicketService) Approve(ctx context.Context, id uint) ([]string, error) {
	var (
		approved domain.Ticket
		raffle   domain.Raffle
	)

	err := s.repo.WithApprovalLock(ctx, func(tx repository.ApprovalTx) error {
		var raffleErr error
		raffle, raffleErr = tx.ActiveRaffle()
		if raffleErr != nil && !errors.Is(raffleErr, repository.ErrRaffleNotFound) {
			return fmt.Errorf("tx.ActiveRaffle -> %w", raffleErr)
		}

		ticket, err := tx.FindTicket(id)
		if err != nil {
			return fmt.Errorf("tx.FindTicket -> %w", err)
		}
		if raffleErr != nil {
			return ErrNoActiveRaffle
		}
		if ticket.Approved {
			return ErrTicketAlreadyApproved
		}

		codes, err := tx.IssuedCodes()
		if err != nil {
			return fmt.Errorf("tx.IssuedCodes -> %w", err)
		}
		issued := approvalcode.Set(codes)
		if len(issued)+ticket.NumberTickets > s.maxCodes {
			return ErrCapacityExceeded
		}

		allocated, err := s.allocator.Allocate(ticket.NumberTickets, issued)
		if err != nil {
			if errors.Is(err, approvalcode.ErrExhausted) {
				return ErrCapacityExceeded
			}
			return fmt.Errorf("s.allocator.Allocate -> %w", err)
		}

		approved, err = tx.MarkApproved(id, allocated)
		if err != nil {
			return fmt.Errorf("tx.MarkApproved -> %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("s.repo.WithApprovalLock -> %w", err)
	}

	s.soldNumbersChanged(ctx, domain.SoldNumbersApproved, approved.ApprovalCodes)
	s.notifier.NotifyApproval(approved, raffle)

	return approved.ApprovalCodes, nil
}

// Reject deletes the ticket. An approved ticket gives its codes back to
// the pool.
func (s *TicketService) Reject(ctx context.Context, id uint) error {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	if len(ticket.ApprovalCodes) > 0 {
		s.soldNumbersChanged(ctx, domain.SoldNumbersReleased, ticket.ApprovalCodes)
	}

	return nil
}

func (s *TicketService) Resend(ctx context.Context, id uint) error {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !ticket.Approved {
		return ErrNotApproved
	}

	raffle, err := s.activeRaffle(ctx)
	if err != nil {
		return err
	}

	if err = s.notifier.ResendApproval(ctx, ticket, raffle); err != nil {
		return fmt.Errorf("s.notifier.ResendApproval -> %w", err)
	}

	return nil
}

func (s *TicketService) UpdateContact(ctx context.Context, id uint, update domain.ContactUpdate) (domain.Ticket, error) {
	if isBlank(update.Email) {
		update.Email = nil
	}
	if isBlank(update.Phone) {
		update.Phone = nil
	}
	if update.Email == nil && update.Phone == nil {
		return domain.Ticket{}, ErrMissingContact
	}

	updated, err := s.repo.UpdateContact(ctx, id, update)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.UpdateContact -> %w", err)
	}

	return updated, nil
}

func (s *TicketService) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.repo.List(ctx, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return tickets, nil
}

func (s *TicketService) TopBuyers(ctx context.Context) ([]domain.TopBuyer, error) {
	buyers, err := s.repo.TopBuyers(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.TopBuyers -> %w", err)
	}

	return buyers, nil
}

// CheckCode returns the ticket holding code, without its voucher, and
// whether the code is sold at all.
func (s *TicketService) CheckCode(ctx context.Context, code string) (domain.Ticket, bool, error) {
	ticket, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return domain.Ticket{}, false, nil
		}
		return domain.Ticket{}, false, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	ticket.Voucher = ""
	return ticket, true, nil
}

// CheckEmail summarizes every approved code bought with email, matched
// case-insensitively.
func (s *TicketService) CheckEmail(ctx context.Context, email string) (domain.BuyerSummary, error) {
	tickets, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return domain.BuyerSummary{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if len(tickets) == 0 {
		return domain.BuyerSummary{}, ErrBuyerNotFound
	}

	var summary domain.BuyerSummary
	for _, t := range tickets {
		if !t.Approved {
			continue
		}
		if summary.ID == 0 {
			summary = domain.BuyerSummary{
				ID:       t.ID,
				FullName: t.FullName,
				Email:    t.Email,
				Tickets:  []string{},
			}
		}
		summary.Tickets = append(summary.Tickets, t.ApprovalCodes...)
	}

	if summary.ID == 0 {
		return domain.BuyerSummary{}, ErrNoApprovedTickets
	}

	return summary, nil
}

func (s *TicketService) SoldNumbers(ctx context.Context) (domain.SoldNumbers, error) {
	if s.cache != nil {
		sold, ok, err := s.cache.Get(ctx)
		if err != nil {
			zap.L().Warn("sold numbers cache read failed", zap.Error(err))
		}
		if ok {
			return sold, nil
		}
	}

	codes, err := s.repo.SoldCodes(ctx)
	if err != nil {
		return domain.SoldNumbers{}, fmt.Errorf("s.repo.SoldCodes -> %w", err)
	}

	sold := domain.SoldNumbers{AllSoldNumbers: codes, TotalSold: len(codes)}
	if s.cache != nil {
		if err = s.cache.Set(ctx, sold); err != nil {
			zap.L().Warn("sold numbers cache write failed", zap.Error(err))
		}
	}

	return sold, nil
}

func (s *TicketService) activeRaffle(ctx context.Context) (domain.Raffle, error) {
	raffle, err := s.raffles.FindActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrRaffleNotFound) {
			return domain.Raffle{}, ErrNoActiveRaffle
		}
		return domain.Raffle{}, fmt.Errorf("s.raffles.FindActive -> %w", err)
	}

	return raffle, nil
}

func (s *TicketService) soldNumbersChanged(ctx context.Context, kind string, codes []string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			zap.L().Warn("sold numbers cache invalidation failed", zap.Error(err))
		}
	}

	if s.publisher == nil {
		return
	}

	total, err := s.repo.CountSold(ctx)
	if err != nil {
		zap.L().Warn("count sold numbers failed", zap.Error(err))
		return
	}

	s.publisher.Publish(domain.SoldNumbersEvent{Type: kind, Codes: codes, TotalSold: total})
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
