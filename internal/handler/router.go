package handler

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"intake/internal/auth"
	"intake/internal/httpmiddleware"
)

// Router builds the gin engine with middleware and all routes.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(h.log, "/api/health", "/metrics"))
	r.Use(httpmiddleware.CORS())
	r.Use(httpmiddleware.SecurityHeaders())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		api.POST("/vapi/webhook", h.VapiWebhook)
		api.GET("/vapi/config", h.VapiConfig)
		api.POST("/vapi/call", h.StartCall)

		api.POST("/admin/login", h.AdminLogin)

		admin := api.Group("/admin")
		if h.cfg.AdminRequireToken {
			admin.Use(auth.AdminAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
		}
		admin.GET("/admissions", h.ListAdmissions)
		admin.POST("/admissions/:id/approve", h.DecideAdmission)
	}

	// Serve frontend when present
	if dir := h.cfg.StaticDir; dir != "" {
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err == nil {
			r.StaticFile("/", index)
			r.Static("/static", dir)
		}
	}
	return r
}
