package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ChlorophyllA/skin2/internal/service"
)

// RegisterSkinRoutes attaches the encyclopedia endpoints.
func RegisterSkinRoutes(r gin.IRouter, svc service.SkinService) {
	r.GET("/api/skin/page", func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer"})
			return
		}
		out, err := svc.Page(c.Request.Context(), page)
		if err != nil {
			abortWithError(c, err, "internal")
			return
		}
		c.JSON(http.StatusOK, out)
	})

	r.GET("/api/skin/random", func(c *gin.Context) {
		d, err := svc.Random(c.Request.Context())
		if err != nil {
			abortWithError(c, err, "internal")
			return
		}
		if d == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusOK, d)
	})
}
