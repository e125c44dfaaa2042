package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdulwahab5547/receiptify-api/internal/container"
	handlers "github.com/abdulwahab5547/receiptify-api/internal/interface/http"
	"github.com/abdulwahab5547/receiptify-api/internal/interface/middleware"
)

// EmailModule wires the public share-a-receipt route. It carries no auth
// gate on purpose; the per-IP limiter keeps anonymous use of the mail
// transport bounded.

type EmailModule struct {
	Handler *handlers.EmailHandler
}

func NewEmailModule(h *handlers.EmailHandler) *EmailModule {
	return &EmailModule{Handler: h}
}

func (m *EmailModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.POST("/send-email", limiter, m.Handler.Send)
}
