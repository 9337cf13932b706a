package ledger

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

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

func actorID(c *gin.Context) int64 {
	u, _ := auth.FromContext(c)
	return u.ID
}

func RegisterRoutes(r *gin.Engine, svc *Service, protect gin.HandlerFunc) {
	api := r.Group("/api")

	api.POST("/matches/:id/events", protect, func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		var req RecordInput
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
			return
		}
		// Events always carry an idempotency key; clients that do not
		// send one can still retry safely with the key from the response.
		if req.ClientKey == "" {
			req.ClientKey = uuid.NewString()
		}
		ev, err := svc.Record(c.Request.Context(), actorID(c), matchID, req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, ev)
	})

	api.GET("/matches/:id/events", func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		newestFirst := c.Query("order") == "latest"
		list, err := svc.List(c.Request.Context(), matchID, newestFirst)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	// CSV export of a match's ledger in narrative order.
	api.GET("/matches/:id/events.csv", func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		list, err := svc.List(c.Request.Context(), matchID, false)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}

		filename := fmt.Sprintf("match_%d_events_%s.csv", matchID, time.Now().Format("2006-01-02"))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", "attachment; filename="+filename)

		w := csv.NewWriter(c.Writer)
		_ = w.Write([]string{"id", "kind", "team_id", "player_id", "related_id", "half", "minute", "reason", "note"})
		for _, e := range list {
			related := ""
			if e.RelatedID != nil {
				related = strconv.FormatInt(*e.RelatedID, 10)
			}
			_ = w.Write([]string{
				strconv.FormatInt(e.ID, 10),
				string(e.Kind),
				strconv.FormatInt(e.TeamID, 10),
				strconv.FormatInt(e.PlayerID, 10),
				related,
				strconv.Itoa(e.Half),
				strconv.Itoa(e.Minute),
				string(e.Reason),
				e.Note,
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
		}
	})

	api.DELETE("/events/:id", protect, func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		if err := svc.Delete(c.Request.Context(), actorID(c), id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	api.GET("/matches/:id/score", func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		sc, err := svc.Score(c.Request.Context(), matchID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, sc)
	})

	api.POST("/matches/:id/reconcile", protect, func(c *gin.Context) {
		matchID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		res, err := svc.Reconcile(c.Request.Context(), matchID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})
}
