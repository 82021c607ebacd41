package middleware

import (
	"errors"
	"net/http"
	apperrors "reservations/pkg/errors"
	httputil "reservations/pkg/http"
	"reservations/pkg/logger"
	"reservations/pkg/model"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload issued by the identity provider. The subject
// is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate verifies an HS256 bearer token and stores the resulting
// Principal in the request context. Paths in public pass through untouched.
func Authenticate(secret string, log *logger.Logger, public ...string) (func(http.Handler) http.Handler, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	key := []byte(secret)

	skip := make(map[string]struct{}, len(public))
	for _, p := range public {
		skip[p] = struct{}{}
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := parsePrincipal(parser, key, r.Header.Get("Authorization"))
			if err != nil {
				log.Warn("Authentication failed",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"reason", err.Error(),
				)
				if writeErr := httputil.WriteError(w, apperrors.Unauthorized("Invalid or missing bearer token")); writeErr != nil {
					log.Error("failed to write error response", "middleware", "Authenticate", "error", writeErr)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}, nil
}

func parsePrincipal(parser *jwt.Parser, key []byte, header string) (model.Principal, error) {
	tokenStr, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenStr == "" {
		return model.Principal{}, errors.New("missing bearer token")
	}

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return model.Principal{}, err
	}

	if claims.Subject == "" {
		return model.Principal{}, errors.New("token has no subject")
	}

	role := claims.Role
	switch role {
	case model.RoleUser, model.RoleModerator, model.RoleAdmin:
	case "":
		role = model.RoleUser
	default:
		return model.Principal{}, errors.New("unknown role " + role)
	}

	return model.Principal{ID: claims.Subject, Role: role}, nil
}
