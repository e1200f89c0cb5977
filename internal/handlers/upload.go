package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/response"
)

func (h HandlerSet) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		respondError(c, apperr.Validation("invalid multipart form", nil))
		return
	}

	result, err := h.svc.Uploads.Upload(c.Request.Context(), actorID(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Image uploaded", result)
}

func (h HandlerSet) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, apperr.Validation("invalid multipart form", nil))
		return
	}

	results, err := h.svc.Uploads.UploadMany(c.Request.Context(), actorID(c), form.File["files"])
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, "Images uploaded", results)
}
