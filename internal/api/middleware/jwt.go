package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/cvstudio/internal/services"
	"github.com/yoockh/cvstudio/internal/utils"
)

type authError struct {
	Success bool       `json:"success"`
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, authError{
		Success: false,
		Code:    utils.CodeUnauthorized,
		Message: msg,
	})
}

// BearerToken extracts the token from "Authorization: <scheme> <token>".
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", utils.E(utils.CodeUnauthorized, "BearerToken", "Access denied. No token provided.", utils.ErrUnauthenticated)
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", utils.E(utils.CodeUnauthorized, "BearerToken", "Invalid token format.", utils.ErrUnauthenticated)
	}
	return token, nil
}

func JWTAuth(tokens services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := BearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var userID string
			userID, err = tokens.Verify(raw)
			if err == nil {
				c.Set("user_id", userID)
				c.Next()
				return
			}
		}

		_ = c.Error(err)
		var ae *utils.AppError
		if errors.As(err, &ae) {
			abortUnauthorized(c, ae.Message)
			return
		}
		abortUnauthorized(c, "Invalid token")
	}
}
