package models

import (
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRejected InviteStatus = "rejected"
	InviteStatusExpired  InviteStatus = "expired"
)

// InviteTTL is how long an emailed invitation stays valid.
const InviteTTL = 7 * 24 * time.Hour

// GroupInvite records an outstanding invitation. It is separate from the
// group's permanent invite code and never grants membership by itself.
type GroupInvite struct {
	Model
	GroupID     uuid.UUID    `json:"groupId" gorm:"type:text;not null;index"`
	InvitedBy   uuid.UUID    `json:"invitedBy" gorm:"type:text;not null"`
	InvitedUser *uuid.UUID   `json:"invitedUser,omitempty" gorm:"type:text"`
	Email       string       `json:"email" gorm:"size:255"`
	Token       string       `json:"-" gorm:"size:64;uniqueIndex;not null"`
	Status      InviteStatus `json:"status" gorm:"size:10;not null"`
	ExpiresAt   time.Time    `json:"expiresAt" gorm:"index"`
}

func NewGroupInvite(groupID, invitedBy uuid.UUID, email string, now time.Time) (*GroupInvite, error) {
	token, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	return &GroupInvite{
		GroupID:   groupID,
		InvitedBy: invitedBy,
		Email:     NormalizeEmail(email),
		Token:     token,
		Status:    InviteStatusPending,
		ExpiresAt: now.Add(InviteTTL),
	}, nil
}

func (i *GroupInvite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
