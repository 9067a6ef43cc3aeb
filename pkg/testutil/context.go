// Package testutil provides common helpers for handler and integration tests.
package testutil

import (
	"context"
	"net/http"

	"lifeledger/internal/platform/middleware"
)

// WithOrg adds an organization ID to the request context, simulating what the
// auth middleware does for authenticated portal requests.
func WithOrg(req *http.Request, orgID int64) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyOrgID, orgID)
	return req.WithContext(ctx)
}

// WithSubject adds a subject to the request context.
func WithSubject(req *http.Request, subject string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeySubject, subject)
	return req.WithContext(ctx)
}

// WithAuth adds both subject and organization ID, the typical state for an
// authenticated request.
func WithAuth(req *http.Request, subject string, orgID int64) *http.Request {
	return WithOrg(WithSubject(req, subject), orgID)
}
