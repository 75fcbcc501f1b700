package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/raffle-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/raffle-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/raffle-api/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, token, userAgent string) (string, error)
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{
		svc: svc,
	}
}

// HandleAdminAuth godoc
// @Summary      Admin login
// @Description  Exchanges the admin secret for a bearer token bound to the caller's User-Agent.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      request.AdminAuthRequest  true  "admin secret"
// @Success      200      {object}  response.LoginResponse
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/auth [post]
func (h *AuthHandler) HandleAdminAuth(ctx *gin.Context) {
	req := request.AdminAuthRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	token, err := h.svc.Login(ctx.Request.Context(), req.Token, ctx.Request.UserAgent())
	if err != nil {
		if errors.Is(err, service.ErrWrongAdminToken) {
			response.RenderErr(ctx, response.ErrPermissionDenied(errors.New("denied")))

			return
		}

		err = fmt.Errorf("v1.HandleAdminAuth -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Message: "Success",
		Token:   token,
	})
}
