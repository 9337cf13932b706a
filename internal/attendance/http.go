package attendance

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

	api.PUT("/matches/:id/attendance", protect, func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		var req SetInput
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
			return
		}
		u, _ := auth.FromContext(c)
		if req.UserID == 0 {
			req.UserID = u.ID // self-report
		}
		a, err := svc.SetStatus(c.Request.Context(), u.ID, matchID, req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	})

	api.GET("/matches/:id/attendance/:teamID", func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		teamID, _ := strconv.ParseInt(c.Param("teamID"), 10, 64)
		list, err := svc.List(c.Request.Context(), matchID, teamID)
		if err != nil {
			fail(c, err)
			return
		}
		counts, err := svc.CountByStatus(c.Request.Context(), matchID, teamID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"attendance": list, "counts": counts})
	})
}
