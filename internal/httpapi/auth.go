package httpapi

import (
	"context"
	"net/http"

	"github.com/arawak/cameraroll/internal/config"
)

type principalKeyType struct{}

var principalKey = principalKeyType{}

const (
	PermCanRead   = "can_read"
	PermCanSave   = "can_save"
	PermCanDelete = "can_delete"
)

var knownPermissions = map[string]struct{}{
	PermCanRead:   {},
	PermCanSave:   {},
	PermCanDelete: {},
}

type Principal struct {
	ID          string
	Permissions map[string]struct{}
	Source      string
}

func newPrincipalFromAPIKey(key *APIKey) *Principal {
	perms := make(map[string]struct{}, len(key.Permissions))
	for _, p := range key.Permissions {
		perms[p] = struct{}{}
	}
	return &Principal{
		ID:          key.ID,
		Permissions: perms,
		Source:      "apikey",
	}
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

func (p *Principal) HasPermission(perm string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Permissions[perm]
	return ok
}

func (s *Server) authMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch s.cfg.AuthMode {
			case config.AuthNone:
				next.ServeHTTP(w, r)
			case config.AuthAPIKey:
				key := r.Header.Get("X-Api-Key")
				if key == "" {
					writeError(w, http.StatusUnauthorized, "unauthorized", "missing api key", nil)
					return
				}
				entry, ok := s.apiKeys.Lookup(key)
				if !ok {
					writeError(w, http.StatusUnauthorized, "unauthorized", "invalid api key", nil)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), newPrincipalFromAPIKey(entry))))
			default:
				writeError(w, http.StatusUnauthorized, "unauthorized", "auth mode not supported", nil)
			}
		})
	}
}

func (s *Server) requirePermissions(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.cfg.AuthMode == config.AuthNone {
				next.ServeHTTP(w, r)
				return
			}
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal", nil)
				return
			}
			for _, perm := range perms {
				if !p.HasPermission(perm) {
					writeError(w, http.StatusForbidden, "forbidden", "missing permission "+perm, nil)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
