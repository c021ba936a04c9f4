package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChlorophyllA/skin2/internal/config"
	"github.com/ChlorophyllA/skin2/internal/service"
)

// DTOs
type createOperatorReq struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// RegisterAuthRoutes registers operator create/login routes.
func RegisterAuthRoutes(r gin.IRouter, authSvc service.AuthService, cfg config.AuthConfig) {
	r.POST("/operator/create", func(c *gin.Context) {
		var req createOperatorReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
			return
		}

		op, err := authSvc.Register(c.Request.Context(), req.Username, req.Password, req.DisplayName)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrWeakPassword):
				c.JSON(http.StatusBadRequest, gin.H{"error": "weak password"})
			case errors.Is(err, service.ErrUserExists):
				c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
			default:
				_ = c.Error(err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			}
			return
		}

		// return basic operator info (no password)
		c.JSON(http.StatusCreated, gin.H{
			"id":           op.ID,
			"username":     op.Username,
			"display_name": op.DisplayName,
			"role":         op.Role,
		})
	})

	r.POST("/operator/login", func(c *gin.Context) {
		var req loginReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
			return
		}

		if cfg.JWTSecret == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		token, err := authSvc.Authenticate(c.Request.Context(), req.Username, req.Password, cfg.JWTSecret, cfg.Expires)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidCreds):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			default:
				_ = c.Error(err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			}
			return
		}

		c.JSON(http.StatusOK, tokenResp{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(cfg.Expires.Seconds()),
		})
	})
}
