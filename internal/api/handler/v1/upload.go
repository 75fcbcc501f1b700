package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/raffle-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/raffle-api/internal/pkg/upload"
)

var errFileRequired = errors.New("the file field is required")

type UploadHandler struct {
	store FileStore
}

func NewUploadHandler(store FileStore) *UploadHandler {
	return &UploadHandler{
		store: store,
	}
}

// HandleUpload godoc
// @Summary      Upload an image or payment proof
// @Tags         uploads
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "file to store"
// @Success      201   {object}  response.Upload
// @Failure      400   {object}  response.Err
// @Failure      413   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /uploads [post]
func (h *UploadHandler) HandleUpload(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RenderErr(ctx, response.ErrRequestEntityTooLarge(upload.ErrTooLarge))
			return
		}

		response.RenderErr(ctx, response.ErrBadRequest(errFileRequired))
		return
	}

	name, respErr := saveUpload(h.store, fh)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusCreated, response.Upload{
		Filename: name,
		URL:      uploadURL(ctx, name),
	})
}
