package v1

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const uploadsPath = "/uploads"

func baseURL(ctx *gin.Context) string {
	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	return scheme + "://" + ctx.Request.Host
}

// uploadURL turns a stored file name into an absolute URL. Names that
// already are URLs are returned untouched.
func uploadURL(ctx *gin.Context, name string) string {
	if name == "" || strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}

	return baseURL(ctx) + uploadsPath + "/" + url.PathEscape(name)
}
