// Package identity resolves the opaque user behind an HTTP request.
//
// The auth lifecycle (sign-in, refresh, sign-out) belongs to the hosted auth
// service; this package only decodes the session token it issued into a
// stable user id. An absent or invalid token is simply "unauthenticated",
// never an error.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/lukamv/studysuite/internal/logger"
)

// AccessTokenCookie is the cookie the front end stores the session token in.
const AccessTokenCookie = "sb_access_token"

// Session identifies a signed-in user for the duration of one request.
type Session struct {
	UserID string // stable opaque identifier (the token's subject)
	Token  string // raw access token, forwarded to the table store for RLS
}

// Provider yields the current session for a request, if any.
type Provider interface {
	FromRequest(r *http.Request) (Session, bool)
}

// JWTProvider validates HS256 session tokens against the project's JWT
// secret and extracts the subject claim.
type JWTProvider struct {
	secret []byte
	log    *logger.Logger
}

// NewJWTProvider creates a provider for the given shared secret. With an
// empty secret every request is treated as unauthenticated.
func NewJWTProvider(secret string) *JWTProvider {
	p := &JWTProvider{
		secret: []byte(secret),
		log:    logger.Default().WithPrefix("identity"),
	}
	if secret == "" {
		p.log.Warn("no JWT secret configured, all requests will be unauthenticated")
	}
	return p
}

// FromRequest extracts and validates the session token from the
// Authorization header or the session cookie.
func (p *JWTProvider) FromRequest(r *http.Request) (Session, bool) {
	if len(p.secret) == 0 {
		return Session{}, false
	}

	raw := bearerToken(r)
	if raw == "" {
		return Session{}, false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		p.log.Debug("rejected session token: %v", err)
		return Session{}, false
	}
	if claims.Subject == "" {
		p.log.Debug("session token has no subject")
		return Session{}, false
	}

	return Session{UserID: claims.Subject, Token: raw}, true
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
			return strings.TrimSpace(auth[7:])
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

type ctxKey struct{}

// NewContext returns a context carrying the session.
func NewContext(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the session stored in the context, if any.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(Session)
	return sess, ok
}
