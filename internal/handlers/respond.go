package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/givehopebz/givehope-api/pkg/apperr"
	"github.com/givehopebz/givehope-api/pkg/authz"
	jwtutil "github.com/givehopebz/givehope-api/pkg/jwt"
	"github.com/givehopebz/givehope-api/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Log.WithError(err).Error("Failed to encode response")
		}
	}
}

// writeError sends the structured error envelope. Only the kind and the
// client-safe message leave the process; wrapped causes stay in the logs.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.HTTPStatus(err), map[string]string{
		"error":   string(apperr.KindOf(err)),
		"message": apperr.MessageOf(err),
	})
}

func identityOf(claims *jwtutil.Claims) authz.Identity {
	if claims == nil {
		return authz.Identity{}
	}
	return authz.Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}
}
