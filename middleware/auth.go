package middleware

import (
	"errors"
	"log"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/studysync/studysync-api/auth"
	"github.com/studysync/studysync-api/utils"
)

// EnsureValidToken verifies the bearer token on every wrapped route and stores the
// validated claims in the request context. Failures never reach the handler.
func EnsureValidToken(issuer *auth.TokenIssuer) (func(http.Handler) http.Handler, error) {
	jwtValidator, err := issuer.Validator()
	if err != nil {
		return nil, err
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(tokenErrorHandler),
	)

	return func(next http.Handler) http.Handler {
		return mw.CheckJWT(requireIdentity(next))
	}, nil
}

func tokenErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
		utils.ErrorWithMessage(w, http.StatusUnauthorized, "authorization token required")
		return
	}
	log.Printf("EnsureValidToken: rejected token for %s %s: %v", r.Method, r.URL.Path, err)
	utils.ErrorWithMessage(w, http.StatusUnauthorized, "invalid or expired token")
}

// requireIdentity rejects validated tokens whose claims cannot be turned into a caller.
func requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetIdentity(r); !ok {
			utils.ErrorWithMessage(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
