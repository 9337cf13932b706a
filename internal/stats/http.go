package stats

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openleague/matchday/internal/auth"
	"github.com/openleague/matchday/internal/fault"
)

func fail(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if f := fault.FieldOf(err); f != "" {
		body["field"] = f
	}
	c.JSON(fault.Status(err), body)
}

func RegisterRoutes(r *gin.Engine, svc *Service, protect gin.HandlerFunc) {
	api := r.Group("/api")

	api.GET("/matches/:id/timeline", func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		goals, err := svc.Timeline(c.Request.Context(), matchID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, goals)
	})

	api.GET("/matches/:id/tallies", func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		t, err := svc.Tallies(c.Request.Context(), matchID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	})

	api.GET("/matches/:id/mvp", func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		m, err := svc.MVP(c.Request.Context(), matchID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, m)
	})

	api.GET("/matches/:id/panel", func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		v, err := svc.PanelFor(c.Request.Context(), matchID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	})

	api.PUT("/matches/:id/panel", protect, func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		var req PanelInput
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
			return
		}
		u, _ := auth.FromContext(c)
		p, err := svc.UpsertPanel(c.Request.Context(), u.ID, matchID, req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})
}
