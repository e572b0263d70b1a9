package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/studysync/studysync-api/auth"
)

const maxBodyBytes = 1 << 20

// GetIdentity returns the caller attached by the bearer middleware.
func GetIdentity(r *http.Request) (auth.Identity, bool) {
	claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !ok {
		return auth.Identity{}, false
	}
	return auth.IdentityFromClaims(claims)
}

// PathID parses a uuid path parameter. Malformed ids read as missing documents.
func PathID(r *http.Request, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, NotFound(what + " not found")
	}
	return id, nil
}

// Decode reads a JSON body into dst. An empty body leaves dst untouched.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return Invalid("invalid request body")
}
