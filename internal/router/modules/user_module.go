package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdulwahab5547/receiptify-api/internal/container"
	handlers "github.com/abdulwahab5547/receiptify-api/internal/interface/http"
	"github.com/abdulwahab5547/receiptify-api/internal/interface/middleware"
	"github.com/abdulwahab5547/receiptify-api/pkg/helpers"
)

// UserModule wires account routes.
// Public: POST /api/signup, POST /api/login
// Protected: GET /api/user, GET /api/user/receipts

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.BearerAuth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/user", m.Handler.GetProfile)
		auth.GET("/user/receipts", m.Handler.GetReceipts)
	}
}
