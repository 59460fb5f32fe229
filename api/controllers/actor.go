package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hirekitlabs/hirekit-backend/api/middleware"
	pkgerrors "github.com/hirekitlabs/hirekit-backend/pkg/errors"
)

// actorIDFromContext resolves the authenticated user id the auth middleware
// injected. Mutating operations record this id in the audit trail.
func actorIDFromContext(r *http.Request) (uuid.UUID, error) {
	if r == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	actorID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user identity")
	}
	return actorID, nil
}
