package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ChlorophyllA/skin2/internal/model"
	"github.com/ChlorophyllA/skin2/internal/repository"
	"github.com/ChlorophyllA/skin2/internal/service"
)

// RegisterHospitalRoutes attaches the directory API to the router (Engine or RouterGroup).
// analytics may be nil.
func RegisterHospitalRoutes(r gin.IRouter, svc service.HospitalService, analytics repository.AnalyticsRepo, logger zerolog.Logger) {
	r.GET("/api/levels", func(c *gin.Context) {
		levels, err := svc.Levels(c.Request.Context())
		if err != nil {
			abortWithError(c, err, "internal")
			return
		}
		c.JSON(http.StatusOK, levels)
	})

	r.GET("/api/cities", func(c *gin.Context) {
		cities, err := svc.Cities(c.Request.Context(), c.Query("province"))
		if err != nil {
			abortWithError(c, err, "internal")
			return
		}
		c.JSON(http.StatusOK, cities)
	})

	r.GET("/api/suggestions", func(c *gin.Context) {
		field := c.DefaultQuery("field", "province")
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultSuggestionLimit)))
		if err != nil {
			limit = service.DefaultSuggestionLimit
		}
		items, err := svc.Suggestions(c.Request.Context(), field, c.Query("q"), limit)
		if err != nil {
			abortWithError(c, err, "internal")
			return
		}
		c.JSON(http.StatusOK, items)
	})

	r.POST("/api/search", func(c *gin.Context) {
		var req model.SearchQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
			return
		}

		res, err := svc.Search(c.Request.Context(), req)
		if err != nil {
			abortWithError(c, err, "internal")
			return
		}

		if analytics != nil {
			filters := repository.HospitalFilters{
				Province:    req.Province,
				City:        req.City,
				Level:       req.Level,
				Departments: req.Departments,
			}
			if err := analytics.LogSearch(c.Request.Context(), filters, res.Page, res.Total); err != nil {
				logger.Warn().Err(err).Msg("log search event failed")
			}
		}

		c.JSON(http.StatusOK, res)
	})
}
