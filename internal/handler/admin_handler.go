package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ChlorophyllA/skin2/internal/importer"
	"github.com/ChlorophyllA/skin2/internal/middleware"
	"github.com/ChlorophyllA/skin2/internal/repository"
	"github.com/ChlorophyllA/skin2/internal/service"
)

// RegisterAdminRoutes attaches operator-only routes. r is expected to sit
// behind the auth middleware.
func RegisterAdminRoutes(r gin.IRouter, svc service.HospitalService, analytics repository.AnalyticsRepo, logger zerolog.Logger) {
	r.POST("/admin/import", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload"})
			return
		}
		defer f.Close()

		rows, err := importer.ReadWorkbook(f)
		if errors.Is(err, importer.ErrNoHospitalColumn) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workbook", "detail": err.Error()})
			return
		}

		n, err := svc.Replace(c.Request.Context(), rows)
		if err != nil {
			abortWithError(c, err, "internal")
			return
		}
		operator := c.GetString(middleware.CtxUsername)
		if claims, ok := middleware.OperatorFromContext(c); ok {
			operator = claims.Username
		}
		logger.Info().
			Str("operator", operator).
			Str("file", fh.Filename).
			Int64("rows", n).
			Msg("hospital directory replaced")
		c.JSON(http.StatusOK, gin.H{"imported": n})
	})

	r.GET("/admin/search-stats", func(c *gin.Context) {
		days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
		if err != nil || days < 1 {
			days = 7
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 1 || limit > 100 {
			limit = 20
		}
		since := time.Now().AddDate(0, 0, -days)
		stats, err := analytics.TopSearches(c.Request.Context(), since, limit)
		if err != nil {
			abortWithError(c, err, "internal")
			return
		}
		c.JSON(http.StatusOK, gin.H{"since": since.UTC().Format(time.RFC3339), "results": stats})
	})
}
