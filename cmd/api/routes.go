package main

import (
	"github.com/edsindustries1/my-outbound-dialer/internal/httpapi"
	"github.com/edsindustries1/my-outbound-dialer/internal/telephony"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, webhook telephony.WebhookHandler, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks (public).
	// NOTE: This endpoint should be protected by Telnyx signature validation in production.
	r.POST("/webhooks/telnyx", webhook.HandleTelnyx)

	v1 := r.Group("/v1")
	{
		// Token issuance is the only unauthenticated v1 route.
		v1.POST("/auth/login", h.Login)

		protected := v1.Group("")
		protected.Use(authMW)
		{
			campaigns := protected.Group("/campaigns")
			{
				campaigns.POST("/start", h.StartCampaign)
				campaigns.POST("/:campaign_id/stop", h.StopCampaign)
				campaigns.GET("/status", h.Status)
			}

			protected.POST("/test-call", h.TestCall)

			protected.GET("/reports/campaign", h.CampaignReport)
		}
	}
}
