package service

import (
	"errors"

	"github.com/vietanh2810/raffle-api/internal/repository"
)

var (
	ErrRaffleExists          = repository.ErrRaffleExists
	ErrRaffleNotFound        = repository.ErrRaffleNotFound
	ErrTicketNotFound        = repository.ErrTicketNotFound
	ErrDollarNotFound        = repository.ErrDollarNotFound
	ErrNoActiveRaffle        = errors.New("there is no active raffle")
	ErrTicketAlreadyApproved = errors.New("ticket is already approved")
	ErrCapacityExceeded      = errors.New("no numbers left for this purchase")
	ErrNotApproved           = errors.New("ticket has not been approved yet")
	ErrMissingContact        = errors.New("a new email or phone is required")
	ErrBuyerNotFound         = errors.New("no tickets found for this email")
	ErrNoApprovedTickets     = errors.New("purchase received but not approved yet")
	ErrWrongAdminToken       = errors.New("wrong admin token")
)
