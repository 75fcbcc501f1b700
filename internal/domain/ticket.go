package domain

import "time"

type Ticket struct {
	ID            uint      `json:"id"`
	NumberTickets int       `json:"numberTickets"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Reference     string    `json:"reference"`
	PaymentMethod string    `json:"paymentMethod"`
	AmountPaid    string    `json:"amountPaid"`
	Voucher       string    `json:"voucher,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	Approved      bool      `json:"approved"`
	ApprovalCodes []string  `json:"approvalCodes"`
}

const (
	TicketStatusAll     = "all"
	TicketStatusPending = "pending"

	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultPageSize = 150
)

type TicketFilter struct {
	Status        string
	PaymentMethod string
	Page          int
	PageSize      int
	Order         string
}

// Normalize fills in defaults for unset or out of range values.
func (f TicketFilter) Normalize() TicketFilter {
	if f.Status != TicketStatusAll {
		f.Status = TicketStatusPending
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.Order != SortAsc {
		f.Order = SortDesc
	}

	return f
}

func (f TicketFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type TopBuyer struct {
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	TotalTickets int    `json:"totalTickets"`
	Purchases    int    `json:"purchases"`
}

type SoldNumbers struct {
	AllSoldNumbers []string `json:"allSoldNumbers"`
	TotalSold      int      `json:"totalSold"`
}

// BuyerSummary groups every approved code of one buyer.
type BuyerSummary struct {
	ID       uint     `json:"id"`
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Tickets  []string `json:"tickets"`
}

type ContactUpdate struct {
	Email *string
	Phone *string
}

const (
	SoldNumbersApproved = "approved"
	SoldNumbersReleased = "released"
	SoldNumbersReset    = "reset"
)

// SoldNumbersEvent describes a change to the set of sold codes.
type SoldNumbersEvent struct {
	Type      string   `json:"type"`
	Codes     []string `json:"codes"`
	TotalSold int      `json:"totalSold"`
}
