package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/raffle-api/internal/api/handler/v1/response"
)

var errBodyTooLarge = errors.New("request body is too large")

// LimitBody rejects bodies declared larger than limit and stops reading
// undeclared ones once limit bytes have been consumed.
func LimitBody(limit int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.ContentLength > limit {
			response.RenderErr(ctx, response.ErrRequestEntityTooLarge(errBodyTooLarge))
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)
		ctx.Next()
	}
}
