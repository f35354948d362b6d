package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"bazaar/globals"
	"bazaar/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// TokenTTL is the lifetime of an access token.
const TokenTTL = 3 * time.Hour

// JWT claims
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrMissingToken = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenMessage is the client-facing text for a token error.
func TokenMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "No token provided"
	case errors.Is(err, ErrTokenExpired):
		return "Token expired"
	}
	return "Invalid token"
}

// Authenticator verifies HS256 access tokens signed with Secret.
type Authenticator struct {
	Secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{Secret: secret}
}

// Issue signs a token for userID acting as role.
func (a *Authenticator) Issue(userID, role string, now time.Time) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

// ValidateJWT parses a raw "Bearer <token>" header value.
func (a *Authenticator) ValidateJWT(header string) (*Claims, error) {
	if !strings.HasPrefix(header, "Bearer ") || len(header) < 8 {
		return nil, ErrMissingToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(header[7:], claims, func(token *jwt.Token) (any, error) {
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate admits requests carrying a valid token whose role is one of
// roles, or any role when none are given. The user id and role are stored in
// the request context.
func (a *Authenticator) Authenticate(next httprouter.Handle, roles ...string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := a.ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, TokenMessage(err))
			return
		}
		if len(roles) > 0 && !hasRole(roles, claims.Role) {
			utils.RespondWithError(w, http.StatusForbidden, "Access denied")
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Require is Authenticate in Middleware form.
func (a *Authenticator) Require(roles ...string) Middleware {
	return func(next httprouter.Handle) httprouter.Handle {
		return a.Authenticate(next, roles...)
	}
}
