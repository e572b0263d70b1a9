package handlers

import (
	"net/http"
	"time"

	"github.com/studysync/studysync-api/auth"
	"github.com/studysync/studysync-api/models"
	"gorm.io/gorm"
)

// DBHandler carries the process-wide, read-only dependencies every route needs.
type DBHandler struct {
	*gorm.DB
	Tokens *auth.TokenIssuer
	Now    func() time.Time

	// InviteCodes generates group invite codes.
	InviteCodes func() (string, error)
}

func NewDBHandler(db *gorm.DB, tokens *auth.TokenIssuer) *DBHandler {
	return &DBHandler{
		DB:     db,
		Tokens: tokens,
		Now:    func() time.Time { return time.Now().UTC() },

		InviteCodes: models.NewInviteCode,
	}
}

// conn scopes the connection to the request so a cancelled request cancels its queries.
func (db *DBHandler) conn(r *http.Request) *gorm.DB {
	return db.DB.WithContext(r.Context())
}
