package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/abdulwahab5547/receiptify-api/internal/application"
	"github.com/abdulwahab5547/receiptify-api/internal/interface/middleware"
	"github.com/abdulwahab5547/receiptify-api/pkg/response"
)

type UploadHandler struct {
	Svc      *userapp.Service
	Logger   *logrus.Logger
	MaxBytes int64
}

func NewUploadHandler(svc *userapp.Service, logger *logrus.Logger, maxBytes int64) *UploadHandler {
	return &UploadHandler{Svc: svc, Logger: logger, MaxBytes: maxBytes}
}

// Upload POST /api/upload (auth required)
// Takes one multipart image under field "file", stores it externally, and
// appends the permanent URL to the caller's receipt list.
func (h *UploadHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	if h.MaxBytes > 0 && fh.Size > h.MaxBytes {
		response.Error(c, http.StatusBadRequest, "file too large", nil)
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.Error(c, http.StatusBadRequest, "only image uploads are accepted", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to read upload", nil)
		return
	}
	defer func() { _ = f.Close() }()

	uid := c.GetString(middleware.CtxUserIDKey)
	url, err := h.Svc.UploadReceipt(c.Request.Context(), uid, f, fh.Filename, contentType)
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "user not found", nil)
		case errors.Is(err, userapp.ErrStorageUnavailable):
			response.Error(c, http.StatusBadGateway, "failed to store file", nil)
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).WithField("user_id", uid).Error("upload failed")
			}
			response.Error(c, http.StatusInternalServerError, "failed to save receipt", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url}, "receipt uploaded", nil)
}
