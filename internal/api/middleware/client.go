package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/Rrens/studymate/internal/api/response"
)

type contextKey string

const (
	ClientIDKey contextKey = "clientID"

	// ClientIDHeader names the study document a request acts on
	ClientIDHeader = "X-Client-ID"
)

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ClientContext reads the optional client id header into the request context.
// Requests without one act on the default document.
func ClientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := r.Header.Get(ClientIDHeader)
		if clientID != "" && !clientIDPattern.MatchString(clientID) {
			response.BadRequest(w, "invalid client ID")
			return
		}

		ctx := context.WithValue(r.Context(), ClientIDKey, clientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientID gets the client ID from context; empty means the default client
func GetClientID(ctx context.Context) string {
	clientID, _ := ctx.Value(ClientIDKey).(string)
	return clientID
}
