package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abdulwahab5547/receiptify-api/config"
	"github.com/abdulwahab5547/receiptify-api/pkg/mailer"
	"github.com/abdulwahab5547/receiptify-api/pkg/response"
	"github.com/abdulwahab5547/receiptify-api/pkg/validation"
)

// EmailPublisher enqueues email jobs for the delivery worker.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type EmailHandler struct {
	Pub    EmailPublisher
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewEmailHandler(pub EmailPublisher, logger *logrus.Logger, cfg *config.Config) *EmailHandler {
	return &EmailHandler{Pub: pub, Logger: logger, Cfg: cfg}
}

type sendEmailRequest struct {
	Email string `form:"email" binding:"required,email"`
}

// Send POST /api/send-email
// Public share-a-receipt endpoint: takes a recipient address and a receipt
// file and enqueues delivery. The route is deliberately unauthenticated
// but rate-limited per client IP at registration.
func (h *EmailHandler) Send(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "email address and receipt file are required", validation.ToDetails(err))
		return
	}
	fh, err := c.FormFile("receipt")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "email address and receipt file are required", nil)
		return
	}
	if h.Cfg != nil && h.Cfg.MaxUploadBytes > 0 && fh.Size > h.Cfg.MaxUploadBytes {
		response.Error(c, http.StatusBadRequest, "receipt file too large", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to read receipt file", nil)
		return
	}
	defer func() { _ = f.Close() }()
	buf, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to read receipt file", nil)
		return
	}

	if h.Cfg != nil && !h.Cfg.MailSendEnabled {
		response.Success[any](c, http.StatusOK, gin.H{"sent": false, "disabled": true}, "email sending disabled", nil)
		return
	}

	job := mailer.EmailJob{
		To:         req.Email,
		Subject:    "Your receipt",
		Text:       "Please find your receipt attached.",
		Filename:   fh.Filename,
		Attachment: buf,
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("failed to publish email job")
		}
		response.Error(c, http.StatusInternalServerError, "failed to send email", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "email sent successfully", nil)
}
