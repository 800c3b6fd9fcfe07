package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/givehopebz/givehope-api/internal/services"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/givehopebz/givehope-api/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ReviewHandler handles campaign submissions and the moderation queue.
type ReviewHandler struct {
	Service     *services.ModerationService
	UserService *services.UserService
}

// NewReviewHandler creates a new instance of ReviewHandler.
func NewReviewHandler(service *services.ModerationService, userService *services.UserService) *ReviewHandler {
	return &ReviewHandler{
		Service:     service,
		UserService: userService,
	}
}

// SubmitHandler accepts a campaign proposal from any authenticated user.
func (h *ReviewHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	var input services.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during campaign submission")
		writeError(w, apperr.New(apperr.KindValidation, "invalid request payload"))
		return
	}
	defer r.Body.Close()

	creator, err := h.UserService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	review, err := h.Service.Submit(r.Context(), creator, input)
	if err != nil {
		writeError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"userID":   claims.UserID,
		"reviewID": review.ID.Hex(),
	}).Info("Campaign submitted for review")
	writeJSON(w, http.StatusOK, review)
}

// MyReviewsHandler lists the caller's own submissions.
func (h *ReviewHandler) MyReviewsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	reviews, err := h.Service.ListMyReviews(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// DeleteReviewHandler removes a submission; creators may withdraw their own.
func (h *ReviewHandler) DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	if err := h.Service.Delete(r.Context(), identityOf(claims), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AdminListReviewsHandler returns the pending moderation queue.
func (h *ReviewHandler) AdminListReviewsHandler(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Service.ListPendingReviews(r.Context())
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindUnavailable, "failed to list reviews", err))
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// AdminApproveHandler promotes a review into a live campaign.
func (h *ReviewHandler) AdminApproveHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}
	reviewID := mux.Vars(r)["id"]

	campaign, err := h.Service.Approve(r.Context(), identityOf(claims), reviewID)
	if err != nil {
		logrus.WithError(err).WithField("reviewID", reviewID).Warn("Approval failed")
		writeError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"reviewID":   reviewID,
		"campaignID": campaign.ID.Hex(),
	}).Info("Campaign approved")
	writeJSON(w, http.StatusOK, campaign)
}

// AdminRejectHandler rejects a pending review.
func (h *ReviewHandler) AdminRejectHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}
	reviewID := mux.Vars(r)["id"]

	if err := h.Service.Reject(r.Context(), identityOf(claims), reviewID); err != nil {
		logrus.WithError(err).WithField("reviewID", reviewID).Warn("Rejection failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}
