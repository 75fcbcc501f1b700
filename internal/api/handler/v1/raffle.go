package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/raffle-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/raffle-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/raffle-api/internal/domain"
	"github.com/vietanh2810/raffle-api/internal/service"
)

var errNoRaffle = errors.New("there is no active raffle")

type RaffleService interface {
	Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error)
	List(ctx context.Context) (domain.RaffleListing, error)
	ToggleVisibility(ctx context.Context) (bool, error)
	Delete(ctx context.Context) error
}

type RaffleHandler struct {
	svc RaffleService
}

func NewRaffleHandler(svc RaffleService) *RaffleHandler {
	return &RaffleHandler{
		svc: svc,
	}
}

// HandleCreateRaffle godoc
// @Summary      Create the raffle
// @Description  Only one raffle can exist at a time.
// @Tags         raffles
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateRaffleRequest  true  "raffle"
// @Success      201      {object}  response.RaffleCreated
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /raffles [post]
// @Security BearerAuth
func (h *RaffleHandler) HandleCreateRaffle(ctx *gin.Context) {
	var req request.CreateRaffleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	raffle, err := h.svc.Create(ctx.Request.Context(), domain.Raffle{
		Name:        req.Name,
		Description: req.Description,
		TicketPrice: req.TicketPrice,
		MinValue:    req.MinValue,
		Images:      req.Images,
	})
	if err != nil {
		if errors.Is(err, service.ErrRaffleExists) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrRaffleExists))
			return
		}

		err = fmt.Errorf("v1.HandleCreateRaffle -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.RaffleCreated{
		Message: "Raffle created",
		Raffle:  raffle,
	})
}

// HandleListRaffles godoc
// @Summary      List raffles
// @Description  Image references are returned as absolute URLs, along with the number of codes sold.
// @Tags         raffles
// @Produce      json
// @Success      200  {object}  domain.RaffleListing
// @Failure      500  {object}  response.Err
// @Router       /raffles [get]
func (h *RaffleHandler) HandleListRaffles(ctx *gin.Context) {
	listing, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListRaffles -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	for i, raffle := range listing.Raffles {
		images := make([]string, 0, len(raffle.Images))
		for _, img := range raffle.Images {
			images = append(images, uploadURL(ctx, img))
		}
		listing.Raffles[i].Images = images
	}

	ctx.JSON(http.StatusOK, listing)
}

// HandleToggleVisibility godoc
// @Summary      Show or hide the raffle
// @Tags         raffles
// @Produce      json
// @Success      200  {object}  response.Visibility
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /raffles/toggle-visibility [post]
// @Security BearerAuth
func (h *RaffleHandler) HandleToggleVisibility(ctx *gin.Context) {
	visible, err := h.svc.ToggleVisibility(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrRaffleNotFound) {
			response.RenderErr(ctx, response.ErrMissing(errNoRaffle))
			return
		}

		err = fmt.Errorf("v1.HandleToggleVisibility -> h.svc.ToggleVisibility -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.Visibility{
		Message: "Visibility updated",
		Visible: visible,
	})
}

// HandleDeleteRaffle godoc
// @Summary      Delete the raffle
// @Description  Deletes every ticket and frees every issued code.
// @Tags         raffles
// @Produce      json
// @Success      200  {object}  response.Message
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /raffles [delete]
// @Security BearerAuth
func (h *RaffleHandler) HandleDeleteRaffle(ctx *gin.Context) {
	if err := h.svc.Delete(ctx.Request.Context()); err != nil {
		if errors.Is(err, service.ErrRaffleNotFound) {
			response.RenderErr(ctx, response.ErrMissing(errNoRaffle))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteRaffle -> h.svc.Delete -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.Message{Message: "Raffle deleted"})
}
