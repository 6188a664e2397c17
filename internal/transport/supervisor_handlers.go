package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmorrell/narthex/internal/domain/checkin"
	"github.com/jmorrell/narthex/internal/domain/supervisor"
)

type loginRequest struct {
	PIN string `json:"pin" binding:"required"`
}

func (s *Server) handleSupervisorLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.supervisors.Login(c.Request.Context(), req.PIN)
	if err != nil {
		if errors.Is(err, supervisor.ErrBadPIN) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid pin"})
			return
		}
		s.logger.Error("supervisor login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSupervisorLogout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	if err := s.supervisors.Logout(c.Request.Context(), token); err != nil {
		if errors.Is(err, supervisor.ErrInvalidToken) || errors.Is(err, supervisor.ErrSessionExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		s.logger.Error("supervisor logout failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleForceAdmit(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	var req supervisor.ForceAdmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.supervisors.ForceAdmit(c.Request.Context(), sess, req)
	if err != nil {
		if errors.Is(err, checkin.ErrInvalidItem) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "person and location required"})
			return
		}
		s.logger.Error("force admit failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "force admit failed"})
		return
	}
	if result.Outcome == checkin.OutcomeNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": result.Message})
		return
	}
	c.JSON(http.StatusOK, result)
}

type supervisorCheckoutRequest struct {
	AttendanceID string `json:"attendance_id" binding:"required"`
	Reason       string `json:"reason"`
}

func (s *Server) handleSupervisorCheckout(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	var req supervisorCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.supervisors.Checkout(c.Request.Context(), sess, req.AttendanceID, req.Reason); err != nil {
		if errors.Is(err, checkin.ErrAttendanceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attendance not found"})
			return
		}
		s.logger.Error("supervisor checkout failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type reprintRequest struct {
	AttendanceID string `json:"attendance_id" binding:"required"`
}

func (s *Server) handleReprint(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	var req reprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := s.supervisors.ReprintCode(c.Request.Context(), sess, req.AttendanceID)
	if err != nil {
		switch {
		case errors.Is(err, checkin.ErrAttendanceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "attendance not found"})
		case errors.Is(err, supervisor.ErrNoSecurityCode):
			c.JSON(http.StatusConflict, gin.H{"error": "attendance has no security code"})
		default:
			s.logger.Error("reprint failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reprint failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"security_code": code})
}
