package handlers

import (
	"net/http"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/internal/services"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/givehopebz/givehope-api/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler lets users read and acknowledge their notifications.
type NotificationHandler struct {
	Service *services.NotificationService
}

// NewNotificationHandler creates a new instance of NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// ListHandler returns the caller's notifications, newest first.
func (h *NotificationHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid user ID"))
		return
	}

	notifs, err := h.Service.GetUserNotifications(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if notifs == nil {
		notifs = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifs)
}

// MarkReadHandler flips one of the caller's notifications to read.
func (h *NotificationHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid user ID"))
		return
	}
	notifID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid notification ID"))
		return
	}

	if err := h.Service.MarkAsRead(r.Context(), notifID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
