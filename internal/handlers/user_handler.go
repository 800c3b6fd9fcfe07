package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/givehopebz/givehope-api/internal/config"
	"github.com/givehopebz/givehope-api/internal/services"
	"github.com/givehopebz/givehope-api/pkg/apperr"
	jwtutil "github.com/givehopebz/givehope-api/pkg/jwt"
	"github.com/givehopebz/givehope-api/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to accounts and the
// verification gate.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.WithError(err).Warn("Failed to decode registration request")
		writeError(w, apperr.New(apperr.KindValidation, "invalid request payload"))
		return
	}
	defer r.Body.Close()

	user, err := h.Service.RegisterUser(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		log.WithError(err).Warn("Failed to register user")
		writeError(w, err)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User registered successfully")
	writeJSON(w, http.StatusOK, user)
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		writeError(w, apperr.New(apperr.KindValidation, "invalid request payload"))
		return
	}
	defer r.Body.Close()

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		log.WithField("email", credentials.Email).Warn("Authentication failed")
		writeError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		writeError(w, apperr.Wrap(apperr.KindInternal, "failed to generate token", err))
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetMeHandler returns the caller's own account.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// EligibilityHandler resolves the campaign-creation gate for the caller:
// active account plus verified phone.
func (h *UserHandler) EligibilityHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}

	eligible, err := h.Service.CheckEligibility(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"can_create_campaign": eligible})
}

// GetUserHandler handles fetching a user by ID; users can only read their
// own profile.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	requestedUserID := mux.Vars(r)["id"]

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}
	if requestedUserID != claims.UserID {
		log.WithFields(log.Fields{
			"requestedUserID": requestedUserID,
			"loggedInUserID":  claims.UserID,
		}).Warn("Forbidden access attempt")
		writeError(w, apperr.New(apperr.KindForbidden, "you can only access your own profile"))
		return
	}

	user, err := h.Service.GetUser(r.Context(), requestedUserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUserHandler handles updating the caller's own profile fields.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	requestedUserID := mux.Vars(r)["id"]

	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, apperr.New(apperr.KindUnauthorized, "unauthorized"))
		return
	}
	if requestedUserID != claims.UserID {
		writeError(w, apperr.New(apperr.KindForbidden, "you can only update your own profile"))
		return
	}

	var payload struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid request payload"))
		return
	}
	defer r.Body.Close()

	user, err := h.Service.UpdateProfile(r.Context(), requestedUserID, payload.Username)
	if err != nil {
		log.WithError(err).WithField("userID", requestedUserID).Error("Failed to update user")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// AdminGetAllUsersHandler lists every account.
func (h *UserHandler) AdminGetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindUnavailable, "failed to retrieve users", err))
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// AdminSetVerificationHandler flips verification flags on an account.
func (h *UserHandler) AdminSetVerificationHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	var update services.VerificationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := h.Service.SetVerification(r.Context(), userID, update); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AdminSetStatusHandler changes an account's status.
func (h *UserHandler) AdminSetStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := h.Service.SetStatus(r.Context(), userID, payload.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
