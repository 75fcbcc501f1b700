package domain

import "time"

type Raffle struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TicketPrice float64   `json:"ticketPrice"`
	Images      []string  `json:"images"`
	Visible     bool      `json:"visible"`
	MinValue    float64   `json:"minValue"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RaffleListing is the public view of the raffle list with the number of
// codes sold so far.
type RaffleListing struct {
	Raffles   []Raffle `json:"raffles"`
	TotalSold int      `json:"totalSold"`
}
