package request

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

var errBlankImage = errors.New("image references must not be blank")

type CreateRaffleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TicketPrice float64  `json:"ticketPrice"`
	MinValue    float64  `json:"minValue"`
	Images      []string `json:"images"`
}

func (req *CreateRaffleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Length(0, 5000)),
		validation.Field(&req.TicketPrice, validation.Min(0.0)),
		validation.Field(&req.MinValue, validation.Min(0.0)),
		validation.Field(&req.Images, validation.By(noBlankStrings)),
	)
}

func noBlankStrings(value interface{}) error {
	images, _ := value.([]string)
	for _, img := range images {
		if strings.TrimSpace(img) == "" {
			return errBlankImage
		}
	}
	return nil
}

type DollarRequest struct {
	Price string `json:"price"`
	// PriceVez is the field name older clients send.
	PriceVez string `json:"priceVez"`
}

func (req *DollarRequest) Value() string {
	if req.Price != "" {
		return req.Price
	}
	return req.PriceVez
}

func (req *DollarRequest) Validate() error {
	value := strings.TrimSpace(req.Value())
	return validation.Validate(value, validation.Required.Error("price is required"))
}
