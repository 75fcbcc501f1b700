package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/raffle-api/internal/domain"
)

// Notifier emails buyers about their approved codes.
type Notifier struct {
	dispatcher *Dispatcher
	brand      Brand
	now        func() time.Time
}

func NewNotifier(dispatcher *Dispatcher, brand Brand) *Notifier {
	return &Notifier{
		dispatcher: dispatcher,
		brand:      brand,
		now:        time.Now,
	}
}

func (n *Notifier) NotifyApproval(ticket domain.Ticket, raffle domain.Raffle) {
	msg, err := ApprovalMessage(n.brand, ticket, raffle, n.now(), false)
	if err != nil {
		zap.L().Error("render approval email", zap.Uint("ticket_id", ticket.ID), zap.Error(err))
		return
	}

	if err = n.dispatcher.Dispatch(msg); err != nil {
		zap.L().Error("queue approval email", zap.Uint("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (n *Notifier) ResendApproval(ctx context.Context, ticket domain.Ticket, raffle domain.Raffle) error {
	msg, err := ApprovalMessage(n.brand, ticket, raffle, n.now(), true)
	if err != nil {
		return err
	}

	if err = n.dispatcher.SendOnce(ctx, msg); err != nil {
		return fmt.Errorf("n.dispatcher.SendOnce -> %w", err)
	}

	return nil
}
