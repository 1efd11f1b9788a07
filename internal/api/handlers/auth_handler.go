package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/cvstudio/internal/services"
	"github.com/yoockh/cvstudio/internal/utils"
	"github.com/yoockh/cvstudio/internal/validator"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in validator.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, utils.Invalid("AuthHandler.Register", "invalid request body", []string{"invalid request body"}, err))
		return
	}

	res, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in validator.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, utils.Invalid("AuthHandler.Login", "invalid request body", []string{"invalid request body"}, err))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type verifyResponse struct {
	Success bool               `json:"success"`
	User    verifyResponseUser `json:"user"`
	Message string             `json:"message"`
}

type verifyResponseUser struct {
	ID string `json:"id"`
}

// Verify runs behind JWTAuth, so reaching it means the token is valid.
func (h *AuthHandler) Verify(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, verifyResponse{
		Success: true,
		User:    verifyResponseUser{ID: userID},
		Message: "Token is valid",
	})
}
