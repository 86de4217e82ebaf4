package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/soaringjerry/surveystats/internal/utils"
)

type authCtxKey int

const authKey authCtxKey = 7

// Claims identify the client of a read token.
type Claims struct {
	Client string `json:"client"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 read token for client.
func SignToken(secret []byte, client string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{Client: client, RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(ttl))}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseToken(secret []byte, tok string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{}, func(token *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// RequireToken rejects requests without a valid bearer token signed with
// secret. An empty secret leaves the API public. Paths in open bypass the check.
func RequireToken(secret []byte, open ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(secret) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range open {
				if r.URL.Path == p {
					next.ServeHTTP(w, r)
					return
				}
			}
			h := r.Header.Get("Authorization")
			if strings.HasPrefix(h, "Bearer ") {
				tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
				if c, err := parseToken(secret, tok); err == nil {
					ctx := context.WithValue(r.Context(), authKey, c)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": utils.T(LocaleFromContext(r.Context()), "error.unauthorized")})
		})
	}
}

// ClientFromContext returns the client named by the request's token.
func ClientFromContext(ctx context.Context) (string, bool) {
	if c, ok := ctx.Value(authKey).(*Claims); ok && c.Client != "" {
		return c.Client, true
	}
	return "", false
}
