package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vietanh2810/raffle-api/internal/domain"
	"github.com/vietanh2810/raffle-api/internal/repository"
)

// memStore keeps tickets in memory. WithApprovalLock holds the store mutex
// for the whole callback, like the row lock on the raffle does in postgres.
type memStore struct {
	mu      sync.Mutex
	raffle  *domain.Raffle
	tickets map[uint]domain.Ticket
	nextID  uint
}

func newMemStore(withRaffle bool) *memStore {
	s := &memStore{tickets: map[uint]domain.Ticket{}}
	if withRaffle {
		s.raffle = &domain.Raffle{ID: 1, Name: "Moto", TicketPrice: 2, Visible: true, Images: []string{}}
	}
	return s
}

func (s *memStore) FindActive(_ context.Context) (domain.Raffle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raffle == nil {
		return domain.Raffle{}, repository.ErrRaffleNotFound
	}
	return *s.raffle, nil
}

func (s *memStore) Create(_ context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	ticket.ID = s.nextID
	s.tickets[ticket.ID] = ticket
	return ticket, nil
}

func (s *memStore) FindByID(_ context.Context, id uint) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}
	return t, nil
}

func (s *memStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[id]; !ok {
		return repository.ErrTicketNotFound
	}
	delete(s.tickets, id)
	return nil
}

func (s *memStore) UpdateContact(_ context.Context, id uint, update domain.ContactUpdate) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}
	if update.Email != nil {
		t.Email = *update.Email
	}
	if update.Phone != nil {
		t.Phone = *update.Phone
	}
	s.tickets[id] = t
	return t, nil
}

func (s *memStore) List(_ context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Ticket{}
	for _, t := range s.sorted() {
		if filter.Status == domain.TicketStatusPending && t.Approved {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *memStore) TopBuyers(_ context.Context) ([]domain.TopBuyer, error) {
	return []domain.TopBuyer{}, nil
}

func (s *memStore) FindByCode(_ context.Context, code string) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		for _, c := range t.ApprovalCodes {
			if c == code {
				return t, nil
			}
		}
	}
	return domain.Ticket{}, repository.ErrTicketNotFound
}

func (s *memStore) FindByEmail(_ context.Context, email string) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Ticket{}
	for _, t := range s.sorted() {
		if strings.EqualFold(t.Email, email) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) SoldCodes(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued(), nil
}

func (s *memStore) CountSold(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.issued()), nil
}

func (s *memStore) WithApprovalLock(_ context.Context, fn func(tx repository.ApprovalTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(memTx{s})
}

func (s *memStore) sorted() []domain.Ticket {
	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) issued() []string {
	codes := []string{}
	for _, t := range s.sorted() {
		if t.Approved {
			codes = append(codes, t.ApprovalCodes...)
		}
	}
	return codes
}

type memTx struct {
	s *memStore
}

func (tx memTx) ActiveRaffle() (domain.Raffle, error) {
	if tx.s.raffle == nil {
		return domain.Raffle{}, repository.ErrRaffleNotFound
	}
	return *tx.s.raffle, nil
}

func (tx memTx) FindTicket(id uint) (domain.Ticket, error) {
	t, ok := tx.s.tickets[id]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}
	return t, nil
}

func (tx memTx) IssuedCodes() ([]string, error) {
	return tx.s.issued(), nil
}

func (tx memTx) MarkApproved(id uint, codes []string) (domain.Ticket, error) {
	for _, c := range tx.s.issued() {
		for _, n := range codes {
			if c == n {
				return domain.Ticket{}, repository.ErrCodeTaken
			}
		}
	}
	t := tx.s.tickets[id]
	t.Approved = true
	t.ApprovalCodes = codes
	tx.s.tickets[id] = t
	return t, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	approvals []uint
	resends   []uint
	resendErr error
}

func (n *recordingNotifier) NotifyApproval(ticket domain.Ticket, _ domain.Raffle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approvals = append(n.approvals, ticket.ID)
}

func (n *recordingNotifier) ResendApproval(_ context.Context, ticket domain.Ticket, _ domain.Raffle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resends = append(n.resends, ticket.ID)
	return n.resendErr
}

type memCache struct {
	mu          sync.Mutex
	sold        *domain.SoldNumbers
	invalidated int
}

func (c *memCache) Get(_ context.Context) (domain.SoldNumbers, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sold == nil {
		return domain.SoldNumbers{}, false, nil
	}
	return *c.sold, true, nil
}

func (c *memCache) Set(_ context.Context, sold domain.SoldNumbers) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sold = &sold
	return nil
}

func (c *memCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sold = nil
	c.invalidated++
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.SoldNumbersEvent
}

func (p *recordingPublisher) Publish(event domain.SoldNumbersEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}
