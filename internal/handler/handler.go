// Package handler exposes the intake backend over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"intake/internal/admission"
	"intake/internal/apperr"
	"intake/internal/auth"
	"intake/internal/config"
	"intake/internal/vapi"
	"intake/internal/webhook"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "ASA Chatbot Backend"

// CallCreator starts outbound voice calls.
type CallCreator interface {
	CreateCall(ctx context.Context, req vapi.CreateCallRequest) (json.RawMessage, error)
}

type Handler struct {
	cfg        config.App
	admissions *admission.Service
	events     *webhook.Router
	creds      *auth.CredentialStore
	calls      CallCreator
	log        *zap.Logger
}

func New(cfg config.App, admissions *admission.Service, events *webhook.Router,
	creds *auth.CredentialStore, calls CallCreator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:        cfg,
		admissions: admissions,
		events:     events,
		creds:      creds,
		calls:      calls,
		log:        logger,
	}
}

// ---------- Webhook ----------

func (h *Handler) VapiWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}
	status, resp := h.events.Handle(c.Request.Context(), body)
	c.JSON(status, resp)
}

// ---------- Health ----------

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
		"vapi":    h.cfg.VapiConfigured(),
	})
}

// fail answers with the status and message carried by err.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
}
