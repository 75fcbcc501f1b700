package dao

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/raffle-api/internal/pkg/approvalcode"
)

func newRaffle() Raffle {
	return Raffle{
		Name:        "Car Raffle",
		TicketPrice: 10,
		MinValue:    1,
		Images:      []string{"a.png"},
		Visible:     true,
	}
}

func TestRaffleDAO_Singleton(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	d := NewRaffleDAO(db)

	created, err := d.Insert(ctx, newRaffle())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = d.Insert(ctx, newRaffle())
	assert.ErrorIs(t, err, ErrRaffleExists)

	found, err := d.FindActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, found.Images)
	assert.True(t, found.Visible)

	toggled, err := d.ToggleVisibility(ctx)
	require.NoError(t, err)
	assert.False(t, toggled.Visible)
}

func TestRaffleDAO_DeleteCascade(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	raffles := NewRaffleDAO(db)
	tickets := NewTicketDAO(db)

	err := raffles.DeleteCascade(ctx)
	assert.ErrorIs(t, err, ErrRaffleNotFound)

	_, err = raffles.Insert(ctx, newRaffle())
	require.NoError(t, err)
	ticket, err := tickets.Insert(ctx, Ticket{NumberTickets: 2, FullName: "Ana", Email: "ana@x.com"})
	require.NoError(t, err)
	err = tickets.WithApprovalLock(ctx, func(tx *ApprovalTx) error {
		_, err := tx.MarkApproved(ticket.ID, []string{"0001", "0002"})
		return err
	})
	require.NoError(t, err)

	require.NoError(t, raffles.DeleteCascade(ctx))

	_, err = tickets.FindByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	codes, err := tickets.SoldCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestTicketDAO_ApprovalAndQueries(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	d := NewTicketDAO(db)
	_, err := NewRaffleDAO(db).Insert(ctx, newRaffle())
	require.NoError(t, err)

	ana, err := d.Insert(ctx, Ticket{NumberTickets: 3, FullName: "Ana", Email: "Ana@X.com", PaymentMethod: "zelle"})
	require.NoError(t, err)
	bob, err := d.Insert(ctx, Ticket{NumberTickets: 1, FullName: "Bob", Email: "bob@x.com", PaymentMethod: "cash"})
	require.NoError(t, err)

	err = d.WithApprovalLock(ctx, func(tx *ApprovalTx) error {
		_, err := tx.ActiveRaffle()
		require.NoError(t, err)
		_, err = tx.MarkApproved(ana.ID, []string{"0420", "0001", "9999"})
		return err
	})
	require.NoError(t, err)

	approved, err := d.FindByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	require.Len(t, approved.ApprovalCodes, 3)
	assert.Equal(t, "0420", approved.ApprovalCodes[0].Code)

	err = d.WithApprovalLock(ctx, func(tx *ApprovalTx) error {
		_, err := tx.MarkApproved(bob.ID, []string{"0001"})
		return err
	})
	assert.ErrorIs(t, err, ErrCodeTaken)

	sold, err := d.SoldCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0420", "0001", "9999"}, sold)

	count, err := d.CountSold(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	byCode, err := d.FindByCode(ctx, "9999")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, byCode.ID)

	byEmail, err := d.FindByEmail(ctx, "ana@x.COM")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)

	pending, err := d.List(ctx, TicketQuery{PendingOnly: true, Limit: 150, Desc: true})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, bob.ID, pending[0].ID)

	all, err := d.List(ctx, TicketQuery{Limit: 150})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ana.ID, all[0].ID)

	zelle, err := d.List(ctx, TicketQuery{PaymentMethod: "zelle", Limit: 150})
	require.NoError(t, err)
	require.Len(t, zelle, 1)

	buyers, err := d.TopBuyers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, buyers, 1)
	assert.Equal(t, 3, buyers[0].TotalTickets)
	assert.Equal(t, 1, buyers[0].Purchases)

	updated, err := d.UpdateContact(ctx, bob.ID, "", "+584121234567")
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", updated.Email)
	assert.Equal(t, "+584121234567", updated.Phone)

	require.NoError(t, d.Delete(ctx, ana.ID))
	sold, err = d.SoldCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, sold)
	assert.ErrorIs(t, d.Delete(ctx, ana.ID), ErrTicketNotFound)
}

func TestTicketDAO_ApprovalLockSerializes(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	d := NewTicketDAO(db)
	_, err := NewRaffleDAO(db).Insert(ctx, newRaffle())
	require.NoError(t, err)

	const workers = 8
	ids := make([]uint, workers)
	for i := range ids {
		ticket, err := d.Insert(ctx, Ticket{NumberTickets: 1, FullName: "Buyer", Email: "b@x.com"})
		require.NoError(t, err)
		ids[i] = ticket.ID
	}

	// Every worker picks the lowest code not yet issued without touching
	// the raffle itself. Without the lock they would all pick the same one.
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			errs <- d.WithApprovalLock(ctx, func(tx *ApprovalTx) error {
				issued, err := tx.IssuedCodes()
				if err != nil {
					return err
				}
				_, err = tx.MarkApproved(id, []string{nextCode(issued)})
				return err
			})
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sold, err := d.SoldCodes(ctx)
	require.NoError(t, err)
	assert.Len(t, sold, workers)
}

func TestTicketDAO_ApprovalLockWithoutRaffle(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	d := NewTicketDAO(db)

	ran := false
	err := d.WithApprovalLock(ctx, func(tx *ApprovalTx) error {
		ran = true
		_, err := tx.ActiveRaffle()
		assert.ErrorIs(t, err, ErrRaffleNotFound)
		_, err = tx.LockTicket(42)
		assert.ErrorIs(t, err, ErrTicketNotFound)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func nextCode(issued []string) string {
	set := make(map[string]struct{}, len(issued))
	for _, c := range issued {
		set[c] = struct{}{}
	}
	for i := 0; ; i++ {
		c := approvalcode.Format(i)
		if _, ok := set[c]; !ok {
			return c
		}
	}
}

func TestDollarDAO_Upsert(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	d := NewDollarDAO(db)

	_, err := d.Find(ctx)
	assert.ErrorIs(t, err, ErrDollarNotFound)

	first, err := d.Upsert(ctx, "36.5")
	require.NoError(t, err)
	assert.Equal(t, "36.5", first.Price)

	second, err := d.Upsert(ctx, "37.1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "37.1", second.Price)
}
