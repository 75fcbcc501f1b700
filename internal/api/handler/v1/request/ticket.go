package request

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Between 7 and 15 digits, allowing a leading plus, spaces, dashes and
// parentheses.
const phoneRegexPattern = `^(?=(?:\D*\d){7,15}\D*$)\+?[\d\s\-()]+$`

var (
	phoneExp        = regexp2.MustCompile(phoneRegexPattern, regexp2.None)
	errInvalidPhone = errors.New("must be a valid phone number")
)

var phoneRule = validation.By(func(value interface{}) error {
	v, _ := validation.Indirect(value)
	phone, _ := v.(string)
	if strings.TrimSpace(phone) == "" {
		return nil
	}

	ok, err := phoneExp.MatchString(phone)
	if err != nil || !ok {
		return errInvalidPhone
	}
	return nil
})

// CreateTicketRequest binds from JSON or from a multipart form. The voucher
// file of a multipart request is handled separately.
type CreateTicketRequest struct {
	NumberTickets int    `json:"numberTickets" form:"numberTickets"`
	FullName      string `json:"fullName" form:"fullName"`
	Email         string `json:"email" form:"email"`
	Phone         string `json:"phone" form:"phone"`
	Reference     string `json:"reference" form:"reference"`
	PaymentMethod string `json:"paymentMethod" form:"paymentMethod"`
	AmountPaid    string `json:"amountPaid" form:"amountPaid"`
	Voucher       string `json:"voucher" form:"-"`
}

func (req *CreateTicketRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.NumberTickets, validation.Required, validation.Min(1), validation.Max(10000)),
		validation.Field(&req.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Phone, phoneRule),
		validation.Field(&req.Reference, validation.Length(0, 200)),
		validation.Field(&req.PaymentMethod, validation.Length(0, 100)),
		validation.Field(&req.AmountPaid, validation.Length(0, 100)),
	)
}

type UpdateContactRequest struct {
	NewEmail *string `json:"newEmail"`
	NewPhone *string `json:"newPhone"`
}

func (req *UpdateContactRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.NewEmail, is.Email),
		validation.Field(&req.NewPhone, phoneRule),
	)
}

type CheckEmailRequest struct {
	Email string `json:"email"`
}

func (req *CheckEmailRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
	)
}

type CheckCodeQuery struct {
	Number string `form:"number"`
}

func (req *CheckCodeQuery) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Number, validation.Required.Error("the ticket number is required")),
	)
}

type ListTicketsQuery struct {
	Status        string `form:"status"`
	PaymentMethod string `form:"paymentMethod"`
	Page          int    `form:"page"`
	NumberToShow  int    `form:"numbertoshow"`
	Order         string `form:"order"`
}

func (req *ListTicketsQuery) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Page, validation.Min(0)),
		validation.Field(&req.NumberToShow, validation.Min(0), validation.Max(1000)),
	)
}
