package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// ManagerRoles may change group settings and invite people.
var ManagerRoles = []Role{RoleOwner, RoleAdmin}

const (
	inviteCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	InviteCodeLength   = 6
)

// NewInviteCode returns a random 6 character uppercase base-36 code.
func NewInviteCode() (string, error) {
	return gonanoid.Generate(inviteCodeAlphabet, InviteCodeLength)
}

// NormalizeInviteCode makes code lookups case-insensitive.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type GroupSettings struct {
	AllowMemberInvites     bool `json:"allowMemberInvites"`
	AllowMemberCreateCards bool `json:"allowMemberCreateCards"`
	AllowMemberCreateNotes bool `json:"allowMemberCreateNotes"`
}

func DefaultGroupSettings() GroupSettings {
	return GroupSettings{
		AllowMemberInvites:     false,
		AllowMemberCreateCards: true,
		AllowMemberCreateNotes: true,
	}
}

// Group is a shared study space scoped to one subject.
type Group struct {
	Model
	Name        string `json:"name" gorm:"not null;size:100"`
	Description string `json:"description"`

	SubjectID uuid.UUID `json:"subjectId" gorm:"type:text;not null;index"`
	Subject   *Subject  `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	CreatedBy uuid.UUID `json:"createdBy" gorm:"type:text;not null"`
	Creator   *User     `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	Members []GroupMember `json:"members" gorm:"foreignKey:GroupID"`

	IsPublic   bool          `json:"isPublic"`
	InviteCode string        `json:"inviteCode" gorm:"size:6;uniqueIndex;not null"`
	Settings   GroupSettings `json:"settings" gorm:"embedded;embeddedPrefix:setting_"`
}

// BeforeCreate assigns the ID and, when missing, an invite code.
func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if err := g.Model.BeforeCreate(tx); err != nil {
		return err
	}
	if g.InviteCode == "" {
		code, err := NewInviteCode()
		if err != nil {
			return err
		}
		g.InviteCode = code
	}
	return nil
}

func (g *Group) Validate() error {
	g.Name = strings.TrimSpace(g.Name)
	switch {
	case g.Name == "":
		return errors.New("group name is required")
	case g.SubjectID == uuid.Nil:
		return errors.New("subjectId is required")
	}
	return nil
}

// GroupMember is one row per (group, user). The unique index keeps joins from
// inserting the same user twice even when two requests race.
type GroupMember struct {
	ID       uuid.UUID `json:"-" gorm:"type:text;primaryKey"`
	GroupID  uuid.UUID `json:"-" gorm:"type:text;not null;uniqueIndex:idx_group_member"`
	UserID   uuid.UUID `json:"userId" gorm:"type:text;not null;uniqueIndex:idx_group_member;index"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role     Role      `json:"role" gorm:"size:10;not null"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (m *GroupMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Role == "" {
		m.Role = RoleMember
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}

// HasRole reports whether the member holds one of roles.
func (m *GroupMember) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if m.Role == r {
			return true
		}
	}
	return false
}

// CanInvite applies the role check, relaxed for members when the group allows it.
func (m *GroupMember) CanInvite(settings GroupSettings) bool {
	return m.HasRole(ManagerRoles...) || settings.AllowMemberInvites
}

func (m *GroupMember) CanCreateCards(settings GroupSettings) bool {
	return m.HasRole(ManagerRoles...) || settings.AllowMemberCreateCards
}

func (m *GroupMember) CanCreateNotes(settings GroupSettings) bool {
	return m.HasRole(ManagerRoles...) || settings.AllowMemberCreateNotes
}
