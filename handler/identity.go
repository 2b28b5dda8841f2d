package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Identity is the verified caller identity. Token verification against the
// identity provider happens upstream; this service consumes the result as an
// opaque, trusted input.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Verifier extracts the verified identity from an incoming request.
type Verifier interface {
	Verify(r *http.Request) (Identity, error)
}

// HeaderVerifier trusts identity headers set by the authenticating gateway.
// Only deploy it behind infrastructure that strips these headers from
// external traffic.
type HeaderVerifier struct {
	UserIDHeader string
	EmailHeader  string
}

// NewHeaderVerifier returns a HeaderVerifier with the default header names.
func NewHeaderVerifier() *HeaderVerifier {
	return &HeaderVerifier{
		UserIDHeader: "X-User-Id",
		EmailHeader:  "X-User-Email",
	}
}

func (v *HeaderVerifier) Verify(r *http.Request) (Identity, error) {
	raw := r.Header.Get(v.UserIDHeader)
	if raw == "" {
		return Identity{}, ErrMissingIdentity
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return Identity{}, ErrInvalidUserID
	}

	return Identity{
		UserID: userID,
		Email:  r.Header.Get(v.EmailHeader),
	}, nil
}

type identityCtxKey struct{}

// identityFromContext retrieves the verified identity stored by the
// authentication middleware.
func identityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

// withIdentity rejects requests without a verifiable identity and stores the
// identity in the request context for the wrapped handlers.
func (h *Handler) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.verifier.Verify(r)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), identityCtxKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
