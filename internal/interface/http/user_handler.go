package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/abdulwahab5547/receiptify-api/internal/application"
	"github.com/abdulwahab5547/receiptify-api/internal/domain/entity"
	"github.com/abdulwahab5547/receiptify-api/internal/domain/repository"
	"github.com/abdulwahab5547/receiptify-api/internal/interface/middleware"
	"github.com/abdulwahab5547/receiptify-api/pkg/response"
	"github.com/abdulwahab5547/receiptify-api/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	FirstName     string `json:"firstName" binding:"required"`
	LastName      string `json:"lastName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,pwd"`
	CompanyName   string `json:"companyName"`
	CompanySlogan string `json:"companySlogan"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// profileProjection is the user shape returned to clients. The credential
// never appears here.
func profileProjection(u *entity.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"firstName":     u.FirstName,
		"lastName":      u.LastName,
		"email":         u.Email,
		"companyName":   u.CompanyName,
		"companySlogan": u.CompanySlogan,
	}
}

// Signup POST /api/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Signup(c.Request.Context(), userapp.SignupInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Password:      req.Password,
		CompanyName:   req.CompanyName,
		CompanySlogan: req.CompanySlogan,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.Error(c, http.StatusBadRequest, "email already registered", nil)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).Error("signup failed")
		}
		response.Error(c, http.StatusInternalServerError, "failed to create user", nil)
		return
	}
	response.Success(c, http.StatusCreated, profileProjection(u), "user created", nil)
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	token, exp, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token}, "login successful", map[string]any{"expires_at": exp})
}

// GetProfile GET /api/user
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, profileProjection(u), "profile", nil)
}

// GetReceipts GET /api/user/receipts
func (h *UserHandler) GetReceipts(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	urls, err := h.Svc.GetReceipts(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"receiptUrls": urls}, "receipts", nil)
}
