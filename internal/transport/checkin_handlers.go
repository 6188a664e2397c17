package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/domain/schedule"
)

type checkInRequest struct {
	Items []checkin.RequestItem `json:"items" binding:"required,min=1"`
}

func (s *Server) handleCheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := s.batch.CheckIn(c.Request.Context(), req.Items)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCheckout(c *gin.Context) {
	attendanceID := c.Param("attendanceID")

	rec, err := s.batch.Checkout(c.Request.Context(), attendanceID)
	if err != nil {
		if errors.Is(err, checkin.ErrAttendanceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attendance not found"})
			return
		}
		s.logger.Error("checkout failed", "attendance_id", attendanceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handlePersonSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	campusID := c.DefaultQuery("campus", s.campusID)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	people, err := s.people.Search(c.Request.Context(), campusID, query, limit)
	if err != nil {
		s.logger.Error("person search failed", "campus", campusID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search unavailable"})
		return
	}
	if people == nil {
		people = []checkin.Person{}
	}

	c.JSON(http.StatusOK, gin.H{"people": people})
}

type configurationLocation struct {
	Snapshot  any                 `json:"snapshot"`
	Schedules []schedule.Schedule `json:"open_schedules"`
}

func (s *Server) handleConfiguration(c *gin.Context) {
	campusID := c.DefaultQuery("campus", s.campusID)

	snaps, err := s.ledger.ListByCampus(c.Request.Context(), campusID)
	if err != nil {
		s.logger.Error("configuration read failed", "campus", campusID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "configuration unavailable"})
		return
	}

	now := s.now()
	locations := make([]configurationLocation, 0, len(snaps))
	for _, snap := range snaps {
		open, err := s.schedules.ListOpenForLocation(c.Request.Context(), snap.LocationID, now)
		if err != nil {
			s.logger.Error("schedule read failed", "location_id", snap.LocationID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "configuration unavailable"})
			return
		}
		locations = append(locations, configurationLocation{Snapshot: snap, Schedules: open})
	}

	c.JSON(http.StatusOK, gin.H{
		"campus":    campusID,
		"as_of":     now,
		"locations": locations,
	})
}
