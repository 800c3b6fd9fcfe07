package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/internal/services"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/givehopebz/givehope-api/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// DonationHandler handles donor submissions and the admin approval queue.
type DonationHandler struct {
	Service *services.DonationService
}

// NewDonationHandler creates a new instance of DonationHandler.
func NewDonationHandler(service *services.DonationService) *DonationHandler {
	return &DonationHandler{Service: service}
}

// CreateDonationHandler accepts a donation from anyone, authenticated or
// not. Instantly-confirmed methods are recorded and applied in one step;
// bank transfers wait in the pending queue for admin approval.
func (h *DonationHandler) CreateDonationHandler(w http.ResponseWriter, r *http.Request) {
	var input services.DonationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logrus.WithError(err).Warn("Invalid donation payload")
		writeError(w, apperr.New(apperr.KindValidation, "invalid request payload"))
		return
	}
	defer r.Body.Close()

	var donation *models.Donation
	var err error
	if models.InstantMethod(input.Method) {
		donation, err = h.Service.RecordAndComplete(r.Context(), input)
	} else {
		donation, err = h.Service.RecordPending(r.Context(), input)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"donationID": donation.ID.Hex(),
		"campaignID": donation.CampaignID.Hex(),
		"status":     donation.Status,
	}).Info("Donation recorded")
	writeJSON(w, http.StatusOK, donation)
}

// ListCampaignDonationsHandler returns a campaign's public donor list,
// completed donations only, newest first. Anonymous donors stay anonymous.
func (h *DonationHandler) ListCampaignDonationsHandler(w http.ResponseWriter, r *http.Request) {
	donations, err := h.Service.ListCompleted(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	public := make([]models.Donation, 0, len(donations))
	for _, d := range donations {
		public = append(public, d.Public())
	}
	writeJSON(w, http.StatusOK, public)
}

// AdminListDonationsHandler returns the admin queue for a status
// (default pending).
func (h *DonationHandler) AdminListDonationsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.DonationStatusPending
	}
	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.ParseInt(v, 10, 64)
	}

	donations, err := h.Service.ListByStatus(r.Context(), identityOf(claims), status, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

// AdminApproveDonationHandler completes a pending donation, applying it to
// the campaign aggregates exactly once.
func (h *DonationHandler) AdminApproveDonationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}
	donationID := mux.Vars(r)["id"]

	if err := h.Service.Complete(r.Context(), identityOf(claims), donationID); err != nil {
		logrus.WithError(err).WithField("donationID", donationID).Warn("Donation approval failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// AdminFailDonationHandler marks a pending donation failed.
func (h *DonationHandler) AdminFailDonationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	if err := h.Service.MarkFailed(r.Context(), identityOf(claims), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "failed"})
}

// AdminAuditHandler compares a campaign's stored aggregates to its ledger.
func (h *DonationHandler) AdminAuditHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Audit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// AdminReconcileHandler recomputes a campaign's aggregates from the ledger
// and repairs any drift.
func (h *DonationHandler) AdminReconcileHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Reconcile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
