package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorText
}

// RenderErr aborts the request with e. Server errors are logged with the
// full chain, clients only see the status text.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func newErr(err error, status int) *Err {
	text := ""
	if err != nil {
		text = err.Error()
	}

	return &Err{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		ErrorText:      text,
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(err, http.StatusBadRequest)
}

func ErrUnauthorized(err error) *Err {
	return newErr(err, http.StatusUnauthorized)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(err, http.StatusForbidden)
}

func ErrNotFound(resource, field string, value any) *Err {
	return newErr(fmt.Errorf("%s with %s %v not found", resource, field, value), http.StatusNotFound)
}

func ErrConflict(err error) *Err {
	return newErr(err, http.StatusConflict)
}

func ErrRequestEntityTooLarge(err error) *Err {
	return newErr(err, http.StatusRequestEntityTooLarge)
}

// ErrInternalServerError hides err from the client.
func ErrInternalServerError(err error) *Err {
	e := newErr(err, http.StatusInternalServerError)
	e.ErrorText = "something went wrong"
	return e
}

// ErrMissing reports a singleton record that does not exist.
func ErrMissing(err error) *Err {
	return newErr(err, http.StatusNotFound)
}
