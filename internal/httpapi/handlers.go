package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/edsindustries1/my-outbound-dialer/internal/auth"
	"github.com/edsindustries1/my-outbound-dialer/internal/campaign"
	"github.com/edsindustries1/my-outbound-dialer/internal/reporting"
	"github.com/edsindustries1/my-outbound-dialer/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth         *auth.Manager
	Orchestrator *campaign.Orchestrator
	Reports      *reporting.Service
}

/* ===================== AUTH ===================== */

type loginRequest struct {
	Operator string `json:"operator"`
	Password string `json:"password"`
}

// Login checks the shared operator credential and issues a JWT token pair.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Operator == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "operator and password required"})
		return
	}
	if err := h.Auth.CheckPassword(req.Password); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad credentials"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.Operator)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

/* ===================== CAMPAIGNS ===================== */

type startCampaignRequest struct {
	Numbers        []string `json:"numbers"`
	Mode           string   `json:"mode"`
	BatchSize      int      `json:"batch_size"`
	PacingSeconds  int      `json:"pacing_seconds"`
	TransferNumber string   `json:"transfer_number"`
	VoicemailAudio string   `json:"voicemail_audio"`
}

// StartCampaign starts a new dialing campaign. Returns 409 when a campaign
// is already running.
func (h Handlers) StartCampaign(c *gin.Context) {
	log := logger.FromGin(c)

	var req startCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	id, err := h.Orchestrator.Start(c.Request.Context(), campaign.StartRequest{
		Numbers:        req.Numbers,
		Mode:           campaign.Mode(req.Mode),
		BatchSize:      req.BatchSize,
		Pacing:         time.Duration(req.PacingSeconds) * time.Second,
		TransferNumber: req.TransferNumber,
		VoicemailAudio: req.VoicemailAudio,
	})
	if err != nil {
		switch {
		case errors.Is(err, campaign.ErrCampaignRunning):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, campaign.ErrInvalidRequest):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Error("campaign start failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "campaign start failed"})
		}
		return
	}

	operator, _ := auth.Operator(c.Request.Context())
	log.Info("campaign started via api", "campaign_id", id, "operator", operator, "numbers", len(req.Numbers))
	c.JSON(http.StatusOK, gin.H{"campaign_id": id})
}

// StopCampaign stops the identified campaign. Idempotent: stopping a campaign
// that already finished returns 200.
func (h Handlers) StopCampaign(c *gin.Context) {
	id := c.Param("campaign_id")
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "campaign_id required"})
		return
	}
	if err := h.Orchestrator.Stop(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, campaign.ErrNoCampaign), errors.Is(err, campaign.ErrUnknownCampaign):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "stop failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// Status is the read-only snapshot polled by the dashboard.
func (h Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.Orchestrator.Snapshot())
}

/* ===================== TEST CALL ===================== */

type testCallRequest struct {
	Number string `json:"number"`
}

// TestCall places a single call outside any campaign so the operator can
// verify gateway credentials end to end.
func (h Handlers) TestCall(c *gin.Context) {
	log := logger.FromGin(c)

	var req testCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	callID, err := h.Orchestrator.PlaceTestCall(c.Request.Context(), req.Number)
	if err != nil {
		if errors.Is(err, campaign.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "number required"})
			return
		}
		log.Error("test call failed", "to", req.Number, "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "failed to place call; check gateway credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call_id": callID})
}

/* ===================== REPORTS ===================== */

// CampaignReport aggregates finished-call outcomes from the historical sink.
// Defaults to the last 24 hours when no range is given.
func (h Handlers) CampaignReport(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}

	now := time.Now().UTC()
	rng := reporting.TimeRange{From: now.Add(-24 * time.Hour), To: now}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		rng.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		rng.To = t
	}

	summary, err := h.Reports.CampaignSummary(c.Request.Context(), reporting.CampaignSummaryRequest{
		CampaignID: c.Query("campaign_id"),
		Range:      rng,
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
