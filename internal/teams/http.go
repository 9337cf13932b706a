package teams

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

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

	api.POST("/teams", protect, func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
			return
		}
		t, err := svc.Create(c.Request.Context(), req.Name)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	})

	api.GET("/teams/:id", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		t, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	})

	api.POST("/teams/:id/members", protect, func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		var req struct {
			UserID int64  `json:"user_id"`
			Role   string `json:"role"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
			return
		}
		if req.Role == "" {
			req.Role = string(RolePlayer)
		}
		m, err := svc.AddMember(c.Request.Context(), id, req.UserID, Role(req.Role))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, m)
	})

	api.GET("/teams/:id/members", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		out, err := svc.ListMembers(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
}
