package handler

import (
	"context"
	"net/http"

	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/auth"
	"github.com/IMAD-HB/ets-louaguef-sayah/internal/domain/user"
)

// sessionCookie is the cookie carrying the signed session token.
const sessionCookie = "token"

// sessionKey is the context key for the authenticated session claims.
type sessionKey struct{}

// sessionFrom extracts the session claims from the request context. The
// second return value is false for anonymous requests.
func sessionFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(sessionKey{}).(*auth.Claims)
	return claims, ok
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: h.sameSite(),
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: h.sameSite(),
	})
}

// sameSite returns None for cross-site SPA deployments (requires Secure) and
// Lax otherwise.
func (h *Handler) sameSite() http.SameSite {
	if h.cfg.SecureCookies {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// requireAuth rejects requests without a valid session cookie.
func (h *Handler) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.verify(r)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "not logged in")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, claims)))
	})
}

// requireAdmin rejects requests that are not from an admin session.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.verify(r)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "not logged in")
			return
		}
		if claims.Role != user.RoleAdmin {
			writeMessage(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, claims)))
	})
}

// optionalAuth attaches session claims when a valid cookie is present but
// lets anonymous requests through.
func (h *Handler) optionalAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := h.verify(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, claims))
		}
		next(w, r)
	})
}

func (h *Handler) verify(r *http.Request) (*auth.Claims, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	claims, err := h.tokens.Verify(c.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}
