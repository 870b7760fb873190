package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rpupo63/tech-knowledge-api/errs"
	"github.com/rs/zerolog/log"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// stubIdentity is what every bearer token resolves to when no JWT secret is configured.
var stubIdentity = Identity{ID: "1", Roles: []string{RoleAdmin}}

// Claims are the JWT claims the API reads. sub is the caller id.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type authMiddleware struct {
	responder Responder
	secret    []byte
}

func newAuthMiddleware(secret string) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	if secret == "" {
		logger.Warn().Msg("JWT_SECRET is not set: every bearer token authenticates as an admin")
	}
	return authMiddleware{
		responder: NewResponder(logger),
		secret:    []byte(secret),
	}
}

func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.responder.WriteError(w, errs.NewInvalidTokenError(errors.New("authorization header must use the Bearer scheme")))
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		identity, err := m.identify(token)
		if err != nil {
			m.responder.WriteError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithIdentity(r.Context(), identity)))
	})
}

func (m authMiddleware) identify(token string) (Identity, error) {
	if len(m.secret) == 0 {
		return stubIdentity, nil
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Identity{}, errs.NewExpiredTokenError()
	}
	if err != nil {
		return Identity{}, errs.NewInvalidTokenError(err)
	}
	if claims.Subject == "" {
		return Identity{}, errs.NewInvalidTokenError(errors.New("token has no subject"))
	}

	return Identity{ID: claims.Subject, Roles: claims.Roles}, nil
}

// authorize admits callers holding at least one of roles. It must run after authenticate.
func (m authMiddleware) authorize(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := ctxGetIdentity(r.Context())
			if !ok {
				m.responder.WriteError(w, errs.NewMissingTokenError())
				return
			}
			if len(roles) > 0 && !identity.HasAnyRole(roles...) {
				m.responder.WriteError(w, errs.NewInsufficientRoleError(roles))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
