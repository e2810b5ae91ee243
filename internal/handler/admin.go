package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"intake/internal/auth"
	"intake/internal/metrics"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLogin checks the submitted credentials and issues an admin token.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	ok, err := h.creds.Verify(req.Email, req.Password)
	if err != nil {
		h.log.Error("read admin credentials", zap.Error(err))
		h.fail(c, err)
		return
	}
	if !ok {
		h.log.Warn("admin login rejected", zap.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	token, err := auth.Issue(req.Email, auth.RoleAdmin, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL)
	if err != nil {
		h.log.Error("issue admin token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"admin":   gin.H{"email": req.Email},
		"token":   token.Value,
	})
}

func (h *Handler) ListAdmissions(c *gin.Context) {
	admissions, err := h.admissions.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "admissions": admissions})
}

type decisionRequest struct {
	Action     string `json:"action"`
	AdminEmail string `json:"adminEmail"`
}

// DecideAdmission approves the admission when action is "approve" and
// rejects it otherwise.
func (h *Handler) DecideAdmission(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.AdminEmail == "" {
		if claims, ok := c.Get(auth.ClaimsKey); ok {
			req.AdminEmail = claims.(auth.Claims).Subject
		}
	}

	rec, err := h.admissions.Decide(c.Request.Context(), c.Param("id"), req.Action, req.AdminEmail)
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics.AdmissionDecisions.WithLabelValues(string(rec.Status)).Inc()
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"admission": rec,
		"message":   "Admission " + string(rec.Status) + " successfully",
	})
}
