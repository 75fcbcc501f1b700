package request

import validation "github.com/go-ozzo/ozzo-validation"

type AdminAuthRequest struct {
	Token string `json:"token"`
}

func (req *AdminAuthRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Token, validation.Required),
	)
}
