package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdulwahab5547/receiptify-api/internal/container"
	handlers "github.com/abdulwahab5547/receiptify-api/internal/interface/http"
	"github.com/abdulwahab5547/receiptify-api/internal/interface/middleware"
	"github.com/abdulwahab5547/receiptify-api/pkg/helpers"
)

// UploadModule wires the authenticated receipt upload route.

type UploadModule struct {
	Handler *handlers.UploadHandler
	JWT     *helpers.JWTManager
}

func NewUploadModule(h *handlers.UploadHandler, jwt *helpers.JWTManager) *UploadModule {
	return &UploadModule{Handler: h, JWT: jwt}
}

func (m *UploadModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.BearerAuth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/upload", m.Handler.Upload)
	}
}
