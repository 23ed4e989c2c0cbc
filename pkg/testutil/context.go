package testutil

import (
	"net/http"
	"time"

	id "amparo/pkg/domain"
	"amparo/pkg/requestcontext"
)

// WithIdentity stores a caller identity on the request context, simulating
// what the auth middleware does for authenticated requests.
func WithIdentity(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithPinnedTime pins the request-scoped clock so handlers produce
// deterministic timestamps.
func WithPinnedTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
