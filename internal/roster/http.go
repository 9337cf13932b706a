package roster

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openleague/matchday/internal/fault"
)

func RegisterRoutes(r *gin.Engine, res *Resolver) {
	api := r.Group("/api")

	api.GET("/matches/:id/roster/:teamID", func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		teamID, _ := strconv.ParseInt(c.Param("teamID"), 10, 64)
		l, err := res.Lineup(c.Request.Context(), matchID, teamID)
		if err != nil {
			c.JSON(fault.Status(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, l)
	})
}
