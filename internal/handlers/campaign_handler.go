package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/internal/services"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/givehopebz/givehope-api/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// listTimeout bounds the public campaign listing so a slow backend degrades
// to an explicit 503 instead of a hang.
const listTimeout = 3 * time.Second

// CampaignHandler handles HTTP requests for published campaigns and the
// public site stats.
type CampaignHandler struct {
	Service      *services.ModerationService
	StatsService *services.StatsService
	UserService  *services.UserService
}

// NewCampaignHandler creates a new instance of CampaignHandler.
func NewCampaignHandler(service *services.ModerationService, statsService *services.StatsService, userService *services.UserService) *CampaignHandler {
	return &CampaignHandler{
		Service:      service,
		StatsService: statsService,
		UserService:  userService,
	}
}

// ListCampaignsHandler returns live campaigns, optionally filtered by
// category.
func (h *CampaignHandler) ListCampaignsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), listTimeout)
	defer cancel()

	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.ParseInt(v, 10, 64)
	}

	campaigns, err := h.Service.ListCampaigns(ctx, r.URL.Query().Get("category"), limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to list campaigns")
		if errors.Is(err, context.DeadlineExceeded) || apperr.KindOf(err) == apperr.KindInternal {
			writeError(w, apperr.Wrap(apperr.KindUnavailable, "campaign listing is temporarily unavailable", err))
			return
		}
		writeError(w, err)
		return
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// GetCampaignHandler returns one live campaign.
func (h *CampaignHandler) GetCampaignHandler(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.Service.GetCampaign(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// SiteStatsHandler returns the site-wide totals. Never errors; degrades to
// zeros when the backend is unavailable.
func (h *CampaignHandler) SiteStatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.StatsService.SiteStats(r.Context()))
}

// DeleteCampaignHandler removes a campaign (admin) or the caller's own.
func (h *CampaignHandler) DeleteCampaignHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	if err := h.Service.Delete(r.Context(), identityOf(claims), mux.Vars(r)["id"]); err != nil {
		logrus.WithError(err).WithField("campaignID", mux.Vars(r)["id"]).Warn("Campaign delete failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AdminCreateCampaignHandler publishes a campaign directly, skipping
// moderation.
func (h *CampaignHandler) AdminCreateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	var input services.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid request payload"))
		return
	}
	defer r.Body.Close()

	creator, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	campaign, err := h.Service.DirectCreate(r.Context(), identityOf(claims), creator, input)
	if err != nil {
		writeError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"campaignID": campaign.ID.Hex(),
		"adminID":    claims.UserID,
	}).Info("Campaign created directly")
	writeJSON(w, http.StatusOK, campaign)
}

// AdminEditTextHandler updates a campaign's display text.
func (h *CampaignHandler) AdminEditTextHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	var payload struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		FullDescription string `json:"full_description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid request payload"))
		return
	}
	defer r.Body.Close()

	err := h.Service.EditText(r.Context(), identityOf(claims), mux.Vars(r)["id"],
		payload.Title, payload.Description, payload.FullDescription)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// AdminHoldHandler flips a campaign's hold flag.
func (h *CampaignHandler) AdminHoldHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	var payload struct {
		OnHold bool `json:"on_hold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := h.Service.SetOnHold(r.Context(), identityOf(claims), mux.Vars(r)["id"], payload.OnHold); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
