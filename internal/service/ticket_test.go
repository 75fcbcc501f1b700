package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/raffle-api/internal/domain"
	"github.com/vietanh2810/raffle-api/internal/pkg/approvalcode"
)

type ticketFixture struct {
	store     *memStore
	notifier  *recordingNotifier
	cache     *memCache
	publisher *recordingPublisher
	svc       *TicketService
}

func newTicketFixture(withRaffle bool, maxCodes int) ticketFixture {
	f := ticketFixture{
		store:     newMemStore(withRaffle),
		notifier:  &recordingNotifier{},
		cache:     &memCache{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewTicketService(f.store, f.store, approvalcode.New(), f.notifier, maxCodes).
		WithCache(f.cache).
		WithPublisher(f.publisher)
	return f
}

func (f ticketFixture) buy(t *testing.T, email string, n int) domain.Ticket {
	t.Helper()
	ticket, err := f.svc.Create(context.Background(), domain.Ticket{
		NumberTickets: n,
		FullName:      "Ana Pérez",
		Email:         email,
		Phone:         "+584121234567",
		Reference:     "REF-1",
		PaymentMethod: "pago-movil",
		AmountPaid:    "10",
	})
	require.NoError(t, err)
	return ticket
}

func TestTicketService_Create(t *testing.T) {
	t.Run("no raffle", func(t *testing.T) {
		f := newTicketFixture(false, 100)
		_, err := f.svc.Create(context.Background(), domain.Ticket{NumberTickets: 1})
		assert.ErrorIs(t, err, ErrNoActiveRaffle)
	})

	t.Run("starts pending without codes", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		created, err := f.svc.Create(context.Background(), domain.Ticket{
			NumberTickets: 2,
			Approved:      true,
			ApprovalCodes: []string{"0001"},
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.False(t, created.Approved)
		assert.Empty(t, created.ApprovalCodes)
	})
}

func TestTicketService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("issues distinct codes", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		ticket := f.buy(t, "ana@example.com", 3)

		codes, err := f.svc.Approve(ctx, ticket.ID)
		require.NoError(t, err)
		require.Len(t, codes, 3)
		assert.Len(t, approvalcode.Set(codes), 3)
		for _, c := range codes {
			assert.True(t, approvalcode.Valid(c), c)
		}

		stored, err := f.store.FindByID(ctx, ticket.ID)
		require.NoError(t, err)
		assert.True(t, stored.Approved)
		assert.Equal(t, codes, stored.ApprovalCodes)

		assert.Equal(t, []uint{ticket.ID}, f.notifier.approvals)
		assert.Equal(t, 1, f.cache.invalidated)
		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, domain.SoldNumbersApproved, f.publisher.events[0].Type)
		assert.Equal(t, 3, f.publisher.events[0].TotalSold)
	})

	t.Run("already approved", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		ticket := f.buy(t, "ana@example.com", 1)
		first, err := f.svc.Approve(ctx, ticket.ID)
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, ticket.ID)
		assert.ErrorIs(t, err, ErrTicketAlreadyApproved)

		stored, _ := f.store.FindByID(ctx, ticket.ID)
		assert.Equal(t, first, stored.ApprovalCodes)
		assert.Len(t, f.notifier.approvals, 1)
	})

	t.Run("missing ticket wins over missing raffle", func(t *testing.T) {
		f := newTicketFixture(false, 100)
		_, err := f.svc.Approve(ctx, 42)
		assert.ErrorIs(t, err, ErrTicketNotFound)
	})

	t.Run("no raffle", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		ticket := f.buy(t, "ana@example.com", 1)
		f.store.raffle = nil

		_, err := f.svc.Approve(ctx, ticket.ID)
		assert.ErrorIs(t, err, ErrNoActiveRaffle)
		assert.Empty(t, f.notifier.approvals)
	})

	t.Run("capacity boundary", func(t *testing.T) {
		f := newTicketFixture(true, 5)
		a := f.buy(t, "a@example.com", 3)
		b := f.buy(t, "b@example.com", 2)
		c := f.buy(t, "c@example.com", 1)

		_, err := f.svc.Approve(ctx, a.ID)
		require.NoError(t, err)
		_, err = f.svc.Approve(ctx, b.ID)
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, c.ID)
		assert.ErrorIs(t, err, ErrCapacityExceeded)

		stored, _ := f.store.FindByID(ctx, c.ID)
		assert.False(t, stored.Approved)
		assert.Empty(t, stored.ApprovalCodes)
	})

	t.Run("nearly full pool", func(t *testing.T) {
		f := newTicketFixture(true, approvalcode.Space)
		bulk := f.buy(t, "bulk@example.com", approvalcode.Space-2)
		five := f.buy(t, "five@example.com", 5)
		two := f.buy(t, "two@example.com", 2)

		_, err := f.svc.Approve(ctx, bulk.ID)
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, five.ID)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		stored, _ := f.store.FindByID(ctx, five.ID)
		assert.False(t, stored.Approved)

		codes, err := f.svc.Approve(ctx, two.ID)
		require.NoError(t, err)
		assert.Len(t, codes, 2)

		sold, err := f.svc.SoldNumbers(ctx)
		require.NoError(t, err)
		assert.Equal(t, approvalcode.Space, sold.TotalSold)
	})

	t.Run("released codes free capacity", func(t *testing.T) {
		f := newTicketFixture(true, 2)
		a := f.buy(t, "a@example.com", 2)
		b := f.buy(t, "b@example.com", 2)
		_, err := f.svc.Approve(ctx, a.ID)
		require.NoError(t, err)

		_, err = f.svc.Approve(ctx, b.ID)
		require.ErrorIs(t, err, ErrCapacityExceeded)

		require.NoError(t, f.svc.Reject(ctx, a.ID))
		_, err = f.svc.Approve(ctx, b.ID)
		assert.NoError(t, err)
	})
}

func TestTicketService_Approve_Concurrent(t *testing.T) {
	const (
		buyers  = 60
		perTick = 4
	)
	ctx := context.Background()
	f := newTicketFixture(true, approvalcode.Space)

	ids := make([]uint, 0, buyers)
	for i := 0; i < buyers; i++ {
		ids = append(ids, f.buy(t, "buyer@example.com", perTick).ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, buyers)
	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			if _, err := f.svc.Approve(ctx, id); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("approve: %v", err)
	}

	sold, err := f.svc.SoldNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, buyers*perTick, sold.TotalSold)
	assert.Len(t, approvalcode.Set(sold.AllSoldNumbers), buyers*perTick)
}

func TestTicketService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("approved ticket releases codes", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		ticket := f.buy(t, "ana@example.com", 2)
		codes, err := f.svc.Approve(ctx, ticket.ID)
		require.NoError(t, err)

		require.NoError(t, f.svc.Reject(ctx, ticket.ID))

		sold, err := f.svc.SoldNumbers(ctx)
		require.NoError(t, err)
		for _, c := range codes {
			assert.NotContains(t, sold.AllSoldNumbers, c)
		}
		assert.Equal(t, 0, sold.TotalSold)

		last := f.publisher.events[len(f.publisher.events)-1]
		assert.Equal(t, domain.SoldNumbersReleased, last.Type)
		assert.Equal(t, codes, last.Codes)
	})

	t.Run("pending ticket publishes nothing", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		ticket := f.buy(t, "ana@example.com", 2)

		require.NoError(t, f.svc.Reject(ctx, ticket.ID))
		assert.Empty(t, f.publisher.events)

		_, err := f.store.FindByID(ctx, ticket.ID)
		assert.ErrorIs(t, err, ErrTicketNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		assert.ErrorIs(t, f.svc.Reject(ctx, 7), ErrTicketNotFound)
	})
}

func TestTicketService_Resend(t *testing.T) {
	ctx := context.Background()

	t.Run("pending", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		ticket := f.buy(t, "ana@example.com", 1)
		assert.ErrorIs(t, f.svc.Resend(ctx, ticket.ID), ErrNotApproved)
		assert.Empty(t, f.notifier.resends)
	})

	t.Run("approved", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		ticket := f.buy(t, "ana@example.com", 1)
		_, err := f.svc.Approve(ctx, ticket.ID)
		require.NoError(t, err)

		require.NoError(t, f.svc.Resend(ctx, ticket.ID))
		assert.Equal(t, []uint{ticket.ID}, f.notifier.resends)
	})

	t.Run("delivery failure surfaces", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		ticket := f.buy(t, "ana@example.com", 1)
		_, err := f.svc.Approve(ctx, ticket.ID)
		require.NoError(t, err)
		boom := errors.New("provider down")
		f.notifier.resendErr = boom

		assert.ErrorIs(t, f.svc.Resend(ctx, ticket.ID), boom)
	})

	t.Run("missing", func(t *testing.T) {
		f := newTicketFixture(true, 100)
		assert.ErrorIs(t, f.svc.Resend(ctx, 9), ErrTicketNotFound)
	})
}

func TestTicketService_UpdateContact(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(true, 100)
	ticket := f.buy(t, "ana@example.com", 1)

	blank := "  "
	_, err := f.svc.UpdateContact(ctx, ticket.ID, domain.ContactUpdate{})
	assert.ErrorIs(t, err, ErrMissingContact)
	_, err = f.svc.UpdateContact(ctx, ticket.ID, domain.ContactUpdate{Email: &blank})
	assert.ErrorIs(t, err, ErrMissingContact)

	email := "new@example.com"
	updated, err := f.svc.UpdateContact(ctx, ticket.ID, domain.ContactUpdate{Email: &email, Phone: &blank})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)
	assert.Equal(t, ticket.Phone, updated.Phone)

	_, err = f.svc.UpdateContact(ctx, 99, domain.ContactUpdate{Email: &email})
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestTicketService_CheckCode(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(true, 100)
	ticket := f.buy(t, "ana@example.com", 1)
	f.store.tickets[ticket.ID] = func() domain.Ticket {
		tk := f.store.tickets[ticket.ID]
		tk.Voucher = "1700000000.jpg"
		return tk
	}()
	codes, err := f.svc.Approve(ctx, ticket.ID)
	require.NoError(t, err)

	found, ok, err := f.svc.CheckCode(ctx, codes[0])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ticket.ID, found.ID)
	assert.Empty(t, found.Voucher)

	unused := "0000"
	if codes[0] == unused {
		unused = "0001"
	}
	_, ok, err = f.svc.CheckCode(ctx, unused)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTicketService_CheckEmail(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(true, 100)

	_, err := f.svc.CheckEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrBuyerNotFound)

	first := f.buy(t, "Ana@Example.com", 2)
	_, err = f.svc.CheckEmail(ctx, "ana@example.com")
	assert.ErrorIs(t, err, ErrNoApprovedTickets)

	second := f.buy(t, "ana@example.com", 1)
	codesA, err := f.svc.Approve(ctx, first.ID)
	require.NoError(t, err)
	codesB, err := f.svc.Approve(ctx, second.ID)
	require.NoError(t, err)
	f.buy(t, "ana@example.com", 5)

	summary, err := f.svc.CheckEmail(ctx, " ANA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, summary.ID)
	assert.Equal(t, "Ana Pérez", summary.FullName)
	assert.Equal(t, append(codesA, codesB...), summary.Tickets)
}

func TestTicketService_SoldNumbers_Cache(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(true, 100)
	ticket := f.buy(t, "ana@example.com", 2)
	codes, err := f.svc.Approve(ctx, ticket.ID)
	require.NoError(t, err)

	sold, err := f.svc.SoldNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, codes, sold.AllSoldNumbers)
	require.NotNil(t, f.cache.sold)

	cached := domain.SoldNumbers{AllSoldNumbers: []string{"9999"}, TotalSold: 1}
	require.NoError(t, f.cache.Set(ctx, cached))
	sold, err = f.svc.SoldNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, sold)

	t.Run("without cache", func(t *testing.T) {
		svc := NewTicketService(f.store, f.store, approvalcode.New(), f.notifier, 100)
		sold, err := svc.SoldNumbers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, sold.TotalSold)
	})
}

func TestTicketService_List(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(true, 100)
	a := f.buy(t, "a@example.com", 1)
	f.buy(t, "b@example.com", 1)
	_, err := f.svc.Approve(ctx, a.ID)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, domain.TicketFilter{Status: domain.TicketStatusAll})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := f.svc.List(ctx, domain.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.False(t, pending[0].Approved)
}
