package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/raffle-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/raffle-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/raffle-api/internal/domain"
	"github.com/vietanh2810/raffle-api/internal/service"
)

type DollarService interface {
	Get(ctx context.Context) (domain.DollarPrice, error)
	Update(ctx context.Context, price string) (domain.DollarPrice, error)
}

type DollarHandler struct {
	svc DollarService
}

func NewDollarHandler(svc DollarService) *DollarHandler {
	return &DollarHandler{
		svc: svc,
	}
}

// HandleGetDollar godoc
// @Summary      Get the dollar price
// @Tags         dollar
// @Produce      json
// @Success      200  {object}  domain.DollarPrice
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /dollar [get]
func (h *DollarHandler) HandleGetDollar(ctx *gin.Context) {
	price, err := h.svc.Get(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrDollarNotFound) {
			response.RenderErr(ctx, response.ErrMissing(service.ErrDollarNotFound))
			return
		}

		err = fmt.Errorf("v1.HandleGetDollar -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, price)
}

// HandleUpdateDollar godoc
// @Summary      Set the dollar price
// @Tags         dollar
// @Accept       json
// @Produce      json
// @Param        request  body      request.DollarRequest  true  "price"
// @Success      200      {object}  response.DollarUpdated
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /dollar [put]
// @Security BearerAuth
func (h *DollarHandler) HandleUpdateDollar(ctx *gin.Context) {
	var req request.DollarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	saved, err := h.svc.Update(ctx.Request.Context(), strings.TrimSpace(req.Value()))
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateDollar -> h.svc.Update -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.DollarUpdated{
		Message: "Dollar price updated",
		Dollar:  saved,
	})
}
