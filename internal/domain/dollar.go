package domain

type DollarPrice struct {
	ID    uint   `json:"id"`
	Price string `json:"price"`
}
