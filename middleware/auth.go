package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-storefront/apperror"
	"go-storefront/models"
	"go-storefront/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// AccountLookup re-reads an account so role changes apply to tokens that
// were issued before them.
type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// Gate is the two-stage authorization middleware: Authenticate verifies the
// bearer token, RequireAdmin checks the stored role of the caller.
type Gate struct {
	tokens   *utils.TokenIssuer
	accounts AccountLookup
	respond  *utils.Responder
}

func NewGate(tokens *utils.TokenIssuer, accounts AccountLookup, respond *utils.Responder) *Gate {
	return &Gate{tokens: tokens, accounts: accounts, respond: respond}
}

// ClaimsFromContext returns the claims attached by Authenticate
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// Authenticate verifies JWT tokens and attaches the claims to the context.
// A missing credential is a malformed request; a bad one is unauthorized.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			g.respond.Error(w, r, apperror.BadRequest("Invalid Authentication", nil))
			return
		}

		claims, err := g.tokens.Verify(tokenStr)
		if err != nil {
			g.respond.Error(w, r, apperror.Unauthorized("Invalid token", err))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin lets the request through only when the caller's account
// still exists and is flagged as administrator. Everyone else gets 403.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			g.respond.Error(w, r, apperror.Unauthorized("Invalid token", nil))
			return
		}

		user, err := g.accounts.GetByEmail(r.Context(), claims.Email)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				g.respond.Error(w, r, apperror.Forbidden("Forbidden: Admins only", err))
				return
			}
			g.respond.Error(w, r, err)
			return
		}
		if !user.IsAdmin {
			g.respond.Error(w, r, apperror.Forbidden("Forbidden: Admins only", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
