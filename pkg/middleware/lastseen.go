package middleware

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpdateLastSeenMiddleware stamps the caller's last-seen time on every
// authenticated request. Failures are ignored; this is best-effort telemetry
// for the identity gate.
func UpdateLastSeenMiddleware(record func(r *http.Request, userID primitive.ObjectID)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims != nil {
				if userID, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
					record(r, userID)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
