package response

import "github.com/vietanh2810/raffle-api/internal/domain"

type TicketCreated struct {
	Message string        `json:"message"`
	Ticket  domain.Ticket `json:"ticket"`
}

type Approved struct {
	Message       string   `json:"message"`
	ApprovalCodes []string `json:"approvalCodes"`
}

type ContactUpdated struct {
	Message string        `json:"message"`
	Ticket  domain.Ticket `json:"ticket"`
}

type CodeCheck struct {
	Sold    bool           `json:"sold"`
	Message string         `json:"message,omitempty"`
	Data    *domain.Ticket `json:"data,omitempty"`
}

type EmailCheck struct {
	Success bool                  `json:"success"`
	Data    []domain.BuyerSummary `json:"data"`
}
