package response

import "github.com/vietanh2810/raffle-api/internal/domain"

type Message struct {
	Message string `json:"message"`
}

type RaffleCreated struct {
	Message string        `json:"message"`
	Raffle  domain.Raffle `json:"raffle"`
}

type Visibility struct {
	Message string `json:"message"`
	Visible bool   `json:"visible"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type Upload struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type DollarUpdated struct {
	Message string             `json:"message"`
	Dollar  domain.DollarPrice `json:"dollar"`
}
