package v1

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vietanh2810/raffle-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/raffle-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/raffle-api/internal/domain"
	"github.com/vietanh2810/raffle-api/internal/pkg/upload"
	"github.com/vietanh2810/raffle-api/internal/service"
)

var errInvalidTicketID = errors.New("invalid ticket id")

type TicketService interface {
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	Approve(ctx context.Context, id uint) ([]string, error)
	Reject(ctx context.Context, id uint) error
	Resend(ctx context.Context, id uint) error
	UpdateContact(ctx context.Context, id uint, update domain.ContactUpdate) (domain.Ticket, error)
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	TopBuyers(ctx context.Context) ([]domain.TopBuyer, error)
	CheckCode(ctx context.Context, code string) (domain.Ticket, bool, error)
	CheckEmail(ctx context.Context, email string) (domain.BuyerSummary, error)
	SoldNumbers(ctx context.Context) (domain.SoldNumbers, error)
}

type FileStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(name string) error
}

type TicketHandler struct {
	svc     TicketService
	uploads FileStore
}

func NewTicketHandler(svc TicketService, uploads FileStore) *TicketHandler {
	return &TicketHandler{
		svc:     svc,
		uploads: uploads,
	}
}

// HandleCreateTicket godoc
// @Summary      Submit a ticket purchase
// @Description  Accepts JSON, or a multipart form with the payment proof in the "voucher" field.
// @Tags         tickets
// @Accept       json,mpfd
// @Produce      json
// @Param        request  body      request.CreateTicketRequest  true  "purchase"
// @Success      201      {object}  response.TicketCreated
// @Failure      400      {object}  response.Err
// @Failure      413      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tickets [post]
func (h *TicketHandler) HandleCreateTicket(ctx *gin.Context) {
	var req request.CreateTicketRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, bindErr(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var stored string
	if strings.HasPrefix(ctx.ContentType(), gin.MIMEMultipartPOSTForm) {
		fh, err := ctx.FormFile("voucher")
		switch {
		case err == nil:
			name, respErr := saveUpload(h.uploads, fh)
			if respErr != nil {
				response.RenderErr(ctx, respErr)
				return
			}
			req.Voucher = name
			stored = name
		case !errors.Is(err, http.ErrMissingFile):
			response.RenderErr(ctx, bindErr(err))
			return
		}
	}

	ticket, err := h.svc.Create(ctx.Request.Context(), domain.Ticket{
		NumberTickets: req.NumberTickets,
		FullName:      strings.TrimSpace(req.FullName),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		Reference:     req.Reference,
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    req.AmountPaid,
		Voucher:       req.Voucher,
	})
	if err != nil {
		h.discardUpload(stored)

		if errors.Is(err, service.ErrNoActiveRaffle) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrNoActiveRaffle))
			return
		}

		err = fmt.Errorf("v1.HandleCreateTicket -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.TicketCreated{
		Message: "Ticket created",
		Ticket:  ticket,
	})
}

// HandleApproveTicket godoc
// @Summary      Approve a ticket
// @Description  Issues one unique 4-digit code per requested ticket and emails the buyer.
// @Tags         tickets
// @Produce      json
// @Param        id   path      int  true  "ticket ID"
// @Success      200  {object}  response.Approved
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/approve/{id} [post]
// @Security BearerAuth
func (h *TicketHandler) HandleApproveTicket(ctx *gin.Context) {
	id, ok := ticketID(ctx)
	if !ok {
		return
	}

	codes, err := h.svc.Approve(ctx.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", id))
		case errors.Is(err, service.ErrNoActiveRaffle):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrNoActiveRaffle))
		case errors.Is(err, service.ErrCapacityExceeded):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrCapacityExceeded))
		case errors.Is(err, service.ErrTicketAlreadyApproved):
			response.RenderErr(ctx, response.ErrConflict(service.ErrTicketAlreadyApproved))
		default:
			err = fmt.Errorf("v1.HandleApproveTicket -> h.svc.Approve -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.Approved{
		Message:       "Ticket approved",
		ApprovalCodes: codes,
	})
}

// HandleRejectTicket godoc
// @Summary      Reject a ticket
// @Description  Deletes the ticket. Codes of an approved ticket go back to the pool.
// @Tags         tickets
// @Produce      json
// @Param        id   path      int  true  "ticket ID"
// @Success      200  {object}  response.Message
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/reject/{id} [post]
// @Security BearerAuth
func (h *TicketHandler) HandleRejectTicket(ctx *gin.Context) {
	id, ok := ticketID(ctx)
	if !ok {
		return
	}

	if err := h.svc.Reject(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", id))
			return
		}

		err = fmt.Errorf("v1.HandleRejectTicket -> h.svc.Reject -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "Ticket rejected"})
}

// HandleResendTicket godoc
// @Summary      Resend the approval email
// @Tags         tickets
// @Produce      json
// @Param        id   path      int  true  "ticket ID"
// @Success      200  {object}  response.Message
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/resend/{id} [post]
// @Security BearerAuth
func (h *TicketHandler) HandleResendTicket(ctx *gin.Context) {
	id, ok := ticketID(ctx)
	if !ok {
		return
	}

	if err := h.svc.Resend(ctx.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", id))
		case errors.Is(err, service.ErrNotApproved):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrNotApproved))
		case errors.Is(err, service.ErrNoActiveRaffle):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrNoActiveRaffle))
		default:
			err = fmt.Errorf("v1.HandleResendTicket -> h.svc.Resend -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "Email sent"})
}

// HandleUpdateContact godoc
// @Summary      Update buyer contact details
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id       path      int                           true  "ticket ID"
// @Param        request  body      request.UpdateContactRequest  true  "new email and/or phone"
// @Success      200      {object}  response.ContactUpdated
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tickets/update-contact/{id} [put]
// @Security BearerAuth
func (h *TicketHandler) HandleUpdateContact(ctx *gin.Context) {
	id, ok := ticketID(ctx)
	if !ok {
		return
	}

	var req request.UpdateContactRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.UpdateContact(ctx.Request.Context(), id, domain.ContactUpdate{
		Email: req.NewEmail,
		Phone: req.NewPhone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingContact):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrMissingContact))
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", id))
		default:
			err = fmt.Errorf("v1.HandleUpdateContact -> h.svc.UpdateContact -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ticket.Voucher = uploadURL(ctx, ticket.Voucher)
	ctx.JSON(http.StatusOK, response.ContactUpdated{
		Message: "Contact details updated",
		Ticket:  ticket,
	})
}

// HandleListTickets godoc
// @Summary      List tickets
// @Description  Pending tickets by default, every ticket with status=all. Vouchers are absolute URLs.
// @Tags         tickets
// @Produce      json
// @Param        status         query     string  false  "all or pending"
// @Param        paymentMethod  query     string  false  "exact payment method"
// @Param        page           query     int     false  "page, from 1"
// @Param        numbertoshow   query     int     false  "page size, default 150"
// @Param        order          query     string  false  "asc or desc by ID"
// @Success      200            {array}   domain.Ticket
// @Failure      400            {object}  response.Err
// @Failure      401            {object}  response.Err
// @Failure      500            {object}  response.Err
// @Router       /tickets [get]
// @Security BearerAuth
func (h *TicketHandler) HandleListTickets(ctx *gin.Context) {
	var query request.ListTicketsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := query.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	tickets, err := h.svc.List(ctx.Request.Context(), domain.TicketFilter{
		Status:        query.Status,
		PaymentMethod: query.PaymentMethod,
		Page:          query.Page,
		PageSize:      query.NumberToShow,
		Order:         query.Order,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListTickets -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	for i := range tickets {
		tickets[i].Voucher = uploadURL(ctx, tickets[i].Voucher)
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandleTopBuyers godoc
// @Summary      Top 10 buyers by approved tickets
// @Tags         tickets
// @Produce      json
// @Success      200  {array}   domain.TopBuyer
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/top-buyers [get]
// @Security BearerAuth
func (h *TicketHandler) HandleTopBuyers(ctx *gin.Context) {
	buyers, err := h.svc.TopBuyers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleTopBuyers -> h.svc.TopBuyers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, buyers)
}

// HandleSoldNumbers godoc
// @Summary      Every sold code
// @Tags         tickets
// @Produce      json
// @Success      200  {object}  domain.SoldNumbers
// @Failure      500  {object}  response.Err
// @Router       /tickets/sold-numbers [get]
func (h *TicketHandler) HandleSoldNumbers(ctx *gin.Context) {
	sold, err := h.svc.SoldNumbers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleSoldNumbers -> h.svc.SoldNumbers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, sold)
}

// HandleCheckCode godoc
// @Summary      Check whether a code is sold
// @Tags         tickets
// @Produce      json
// @Param        number  query     string  true  "4-digit code"
// @Success      200     {object}  response.CodeCheck
// @Failure      400     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /tickets/check [get]
func (h *TicketHandler) HandleCheckCode(ctx *gin.Context) {
	var query request.CheckCodeQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := query.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, sold, err := h.svc.CheckCode(ctx.Request.Context(), strings.TrimSpace(query.Number))
	if err != nil {
		err = fmt.Errorf("v1.HandleCheckCode -> h.svc.CheckCode -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if !sold {
		ctx.JSON(http.StatusOK, response.CodeCheck{Sold: false, Message: "This number has not been sold yet"})
		return
	}

	ctx.JSON(http.StatusOK, response.CodeCheck{Sold: true, Data: &ticket})
}

// HandleCheckEmail godoc
// @Summary      Look up approved codes by buyer email
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request  body      request.CheckEmailRequest  true  "buyer email"
// @Success      200      {object}  response.EmailCheck
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tickets/check [post]
func (h *TicketHandler) HandleCheckEmail(ctx *gin.Context) {
	var req request.CheckEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	summary, err := h.svc.CheckEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBuyerNotFound):
			response.RenderErr(ctx, response.ErrMissing(service.ErrBuyerNotFound))
		case errors.Is(err, service.ErrNoApprovedTickets):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrNoApprovedTickets))
		default:
			err = fmt.Errorf("v1.HandleCheckEmail -> h.svc.CheckEmail -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.EmailCheck{
		Success: true,
		Data:    []domain.BuyerSummary{summary},
	})
}

func saveUpload(store FileStore, fh *multipart.FileHeader) (string, *response.Err) {
	name, err := store.Save(fh)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrExtensionNotAllowed):
			return "", response.ErrBadRequest(upload.ErrExtensionNotAllowed)
		case errors.Is(err, upload.ErrTooLarge):
			return "", response.ErrRequestEntityTooLarge(upload.ErrTooLarge)
		default:
			return "", response.ErrInternalServerError(fmt.Errorf("store.Save -> %w", err))
		}
	}

	return name, nil
}

// discardUpload removes the voucher of a ticket that was not stored.
func (h *TicketHandler) discardUpload(name string) {
	if name == "" {
		return
	}

	if err := h.uploads.Remove(name); err != nil {
		zap.L().Warn("failed to remove voucher of refused ticket", zap.String("file", name), zap.Error(err))
	}
}

// bindErr reports a body cut off by the size limit as 413.
func bindErr(err error) *response.Err {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return response.ErrRequestEntityTooLarge(upload.ErrTooLarge)
	}

	return response.ErrBadRequest(err)
}

func ticketID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(errInvalidTicketID))
		return 0, false
	}

	return uint(id), true
}
