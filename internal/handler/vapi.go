package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"intake/internal/apperr"
	"intake/internal/metrics"
	"intake/internal/vapi"
)

func (h *Handler) VapiConfig(c *gin.Context) {
	resp := gin.H{"hasApiKey": h.cfg.VapiAPIKey != ""}
	if h.cfg.VapiAssistantID != "" {
		resp["assistantId"] = h.cfg.VapiAssistantID
	}
	c.JSON(http.StatusOK, resp)
}

type callRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// StartCall asks the voice API to dial phoneNumber with the configured assistant.
func (h *Handler) StartCall(c *gin.Context) {
	var req callRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.log.Info("call request received", zap.String("phone_number", req.PhoneNumber))

	if h.cfg.VapiAPIKey == "" || h.cfg.VapiAssistantID == "" || h.calls == nil {
		h.log.Error("voice API not configured")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "VAPI not configured. Please set VAPI_API_KEY and VAPI_ASSISTANT_ID in .env",
		})
		return
	}

	call := vapi.CreateCallRequest{
		Customer:    vapi.Customer{Number: req.PhoneNumber},
		AssistantID: h.cfg.VapiAssistantID,
	}
	if id := h.cfg.VapiPhoneNumberID; id != "" {
		if vapi.ValidPhoneNumberID(id) {
			call.PhoneNumberID = id
		} else {
			h.log.Warn("ignoring VAPI_PHONE_NUMBER_ID, not a UUID", zap.String("value", id))
		}
	}

	created, err := h.calls.CreateCall(c.Request.Context(), call)
	if err != nil {
		metrics.OutboundCalls.WithLabelValues(metrics.OutcomeFailure).Inc()
		h.log.Error("create call failed", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperr.Message(err)})
		return
	}
	metrics.OutboundCalls.WithLabelValues(metrics.OutcomeSuccess).Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "call": created})
}
