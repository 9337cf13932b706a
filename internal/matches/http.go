package matches

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

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

func actorID(c *gin.Context) int64 {
	u, _ := auth.FromContext(c)
	return u.ID
}

func RegisterRoutes(r *gin.Engine, svc *Service, protect gin.HandlerFunc) {
	api := r.Group("/api")

	api.GET("/matches", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	// iCal export of the fixture list.
	api.GET("/matches.ics", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}

		c.Header("Content-Type", "text/calendar; charset=utf-8")
		c.Header("Content-Disposition", "attachment; filename=matches.ics")

		w := c.Writer
		fmt.Fprintln(w, "BEGIN:VCALENDAR")
		fmt.Fprintln(w, "VERSION:2.0")
		fmt.Fprintln(w, "PRODID:-//matchday//EN")
		fmt.Fprintln(w, "CALSCALE:GREGORIAN")

		now := time.Now().UTC().Format("20060102T150405Z")
		esc := func(s string) string {
			return strings.NewReplacer(",", "\\,", ";", "\\;", "\n", "\\n").Replace(s)
		}
		for _, m := range list {
			if m.Status == StatusCancelled {
				continue
			}
			fmt.Fprintln(w, "BEGIN:VEVENT")
			fmt.Fprintf(w, "UID:match-%d@matchday\n", m.ID)
			fmt.Fprintf(w, "DTSTAMP:%s\n", now)
			if m.Kickoff != nil {
				fmt.Fprintf(w, "DTSTART:%s\n", m.Kickoff.UTC().Format("20060102T150405Z"))
				end := m.Kickoff.Add(time.Duration(2*m.HalfLengthMin+15) * time.Minute)
				fmt.Fprintf(w, "DTEND:%s\n", end.UTC().Format("20060102T150405Z"))
			}
			fmt.Fprintf(w, "SUMMARY:%s\n", esc(fmt.Sprintf("%s match %d vs %d", m.Kind, m.HomeTeamID, m.AwayTeamID)))
			if m.Venue != "" {
				fmt.Fprintf(w, "LOCATION:%s\n", esc(m.Venue))
			}
			fmt.Fprintln(w, "END:VEVENT")
		}
		fmt.Fprintln(w, "END:VCALENDAR")
	})

	api.GET("/matches/:id", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		m, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, m)
	})

	api.POST("/matches", protect, func(c *gin.Context) {
		var req CreateInput
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
			return
		}
		m, err := svc.Create(c.Request.Context(), actorID(c), req)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, m)
	})

	api.POST("/matches/:id/start", protect, func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		m, err := svc.Start(c.Request.Context(), actorID(c), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, m)
	})

	api.POST("/matches/:id/finish", protect, func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		var req struct {
			Confirm bool `json:"confirm"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad json"})
			return
		}
		m, err := svc.Finish(c.Request.Context(), actorID(c), id, req.Confirm)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, m)
	})

	api.POST("/matches/:id/cancel", protect, func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
		m, err := svc.Cancel(c.Request.Context(), actorID(c), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, m)
	})
}
