package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ChlorophyllA/skin2/internal/service"
)

// SessionCookie carries the consultation session id.
const SessionCookie = "session_id"

type askReq struct {
	Question string `json:"question"`
}

// RegisterChatRoutes attaches GET /diagnose (issues a session) and POST /ask.
func RegisterChatRoutes(r gin.IRouter, svc service.ChatService, logger zerolog.Logger) {
	r.GET("/diagnose", func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || id == "" {
			id = svc.NewSession()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
		}
		c.JSON(http.StatusOK, gin.H{"session_id": id})
	})

	r.POST("/ask", func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session not initialized"})
			return
		}
		var req askReq
		_ = c.ShouldBindJSON(&req)

		reply, err := svc.Ask(c.Request.Context(), id, req.Question)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"reply": reply})
		case errors.Is(err, service.ErrSessionNotInitialized):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session not initialized"})
		case errors.Is(err, service.ErrEmptyQuestion):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Empty question"})
		default:
			logger.Error().Err(err).Msg("error processing question")
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
	})
}
