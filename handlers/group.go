package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/studysync/studysync-api/models"
	"github.com/studysync/studysync-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// inviteCodeAttempts bounds regeneration when a fresh invite code collides with an existing one.
const inviteCodeAttempts = 5

type settingsRequest struct {
	AllowMemberInvites     *bool `json:"allowMemberInvites"`
	AllowMemberCreateCards *bool `json:"allowMemberCreateCards"`
	AllowMemberCreateNotes *bool `json:"allowMemberCreateNotes"`
}

func (req *settingsRequest) apply(s *models.GroupSettings) {
	if req == nil {
		return
	}
	if req.AllowMemberInvites != nil {
		s.AllowMemberInvites = *req.AllowMemberInvites
	}
	if req.AllowMemberCreateCards != nil {
		s.AllowMemberCreateCards = *req.AllowMemberCreateCards
	}
	if req.AllowMemberCreateNotes != nil {
		s.AllowMemberCreateNotes = *req.AllowMemberCreateNotes
	}
}

type groupRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	SubjectID   *string          `json:"subjectId"`
	IsPublic    *bool            `json:"isPublic"`
	Settings    *settingsRequest `json:"settings"`
}

// applyMutable copies the fields that may change after creation.
func (req *groupRequest) applyMutable(g *models.Group) {
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
	if req.IsPublic != nil {
		g.IsPublic = *req.IsPublic
	}
	req.Settings.apply(&g.Settings)
}

// loadGroup fetches a group with creator, subject and members (oldest first) populated.
func loadGroup(tx *gorm.DB, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := withGroupAssociations(tx).Where("id = ?", id).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("Group not found or access denied")
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func withGroupAssociations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Creator").
		Preload("Subject").
		Preload("Members", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("joined_at ASC")
		}).
		Preload("Members.User")
}

// POST /api/groups
func (db *DBHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	var req groupRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}

	group := models.Group{
		CreatedBy: identity.ID,
		Settings:  models.DefaultGroupSettings(),
	}
	req.applyMutable(&group)
	subjectID, err := parseOptionalID(req.SubjectID, "subjectId")
	if err != nil {
		utils.Error(w, err)
		return
	}
	if subjectID != nil {
		group.SubjectID = *subjectID
	}
	if err := group.Validate(); err != nil {
		utils.Error(w, utils.Invalid(err.Error()))
		return
	}

	conn := db.conn(r)
	if _, err := visibleSubject(conn, group.SubjectID, identity.ID); err != nil {
		utils.Error(w, err)
		return
	}

	if err := db.insertGroup(conn, &group, identity.ID); err != nil {
		log.Printf("CreateGroup: failed to create group: %v", err)
		utils.Error(w, err)
		return
	}

	created, err := loadGroup(conn, group.ID)
	if err != nil {
		utils.Error(w, err)
		return
	}

	log.Printf("CreateGroup: created group id=%s code=%s owner=%s", created.ID, created.InviteCode, identity.ID)
	utils.JSON(w, http.StatusCreated, utils.Envelope{"group": created})
}

// insertGroup stores the group with its creator as the only (owner) member. A colliding
// invite code is regenerated a bounded number of times before giving up with Conflict.
func (db *DBHandler) insertGroup(conn *gorm.DB, group *models.Group, owner uuid.UUID) error {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := db.InviteCodes()
		if err != nil {
			return err
		}
		group.ID = uuid.Nil
		group.InviteCode = code

		err = conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Create(group).Error; err != nil {
				return err
			}
			return tx.Create(&models.GroupMember{
				GroupID:  group.ID,
				UserID:   owner,
				Role:     models.RoleOwner,
				JoinedAt: db.Now(),
			}).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		log.Printf("CreateGroup: invite code %s already taken, retrying", code)
	}
	return utils.Conflict("Could not allocate a unique invite code, please try again")
}

// GET /api/groups/my
func (db *DBHandler) GetMyGroups(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	conn := db.conn(r)
	groups := []models.Group{}
	err = withGroupAssociations(conn).
		Where("id IN (?)", memberGroupIDs(conn, identity.ID)).
		Order("created_at DESC").
		Find(&groups).Error
	if err != nil {
		log.Printf("GetMyGroups: failed to fetch groups: %v", err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"groups": groups})
}

// GET /api/groups/{id}
func (db *DBHandler) GetGroupByID(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Group")
	if err != nil {
		utils.Error(w, err)
		return
	}

	conn := db.conn(r)
	if _, err := requireMember(conn, id, identity.ID); err != nil {
		utils.Error(w, err)
		return
	}
	group, err := loadGroup(conn, id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"group": group})
}

// PUT /api/groups/{id}. Only name, description, isPublic and settings can change.
func (db *DBHandler) UpdateGroupByID(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Group")
	if err != nil {
		utils.Error(w, err)
		return
	}

	var req groupRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}

	conn := db.conn(r)
	if _, err := requireMember(conn, id, identity.ID, models.ManagerRoles...); err != nil {
		utils.Error(w, err)
		return
	}

	var group models.Group
	if err := conn.Where("id = ?", id).First(&group).Error; err != nil {
		utils.Error(w, utils.NotFound("Group not found or access denied"))
		return
	}
	req.applyMutable(&group)
	if err := group.Validate(); err != nil {
		utils.Error(w, utils.Invalid(err.Error()))
		return
	}
	if err := conn.Omit(clause.Associations).Save(&group).Error; err != nil {
		log.Printf("UpdateGroupByID: failed to update group %s: %v", id, err)
		utils.Error(w, err)
		return
	}

	updated, err := loadGroup(conn, id)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, utils.Envelope{"group": updated})
}

// DELETE /api/groups/{id}. Owner only; the group's cards, notes, invites and
// memberships are removed with it in one transaction.
func (db *DBHandler) DeleteGroupByID(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Group")
	if err != nil {
		utils.Error(w, err)
		return
	}

	conn := db.conn(r)
	if _, err := requireMember(conn, id, identity.ID, models.RoleOwner); err != nil {
		utils.Error(w, err)
		return
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Flashcard{}, &models.Note{}, &models.GroupInvite{}, &models.GroupMember{}} {
			if err := tx.Where("group_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&models.Group{}).Error
	})
	if err != nil {
		log.Printf("DeleteGroupByID: failed to delete group %s: %v", id, err)
		utils.Error(w, err)
		return
	}

	log.Printf("DeleteGroupByID: group %s deleted by %s", id, identity.ID)
	utils.JSON(w, http.StatusOK, utils.Envelope{"message": "Group deleted successfully"})
}

// POST /api/groups/{id}/invite. Records an invitation; no email is sent.
func (db *DBHandler) InviteToGroup(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Group")
	if err != nil {
		utils.Error(w, err)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}
	email := models.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		utils.Error(w, utils.Invalid("A valid email is required"))
		return
	}

	conn := db.conn(r)
	member, err := requireMember(conn, id, identity.ID)
	if err != nil {
		utils.Error(w, err)
		return
	}
	var group models.Group
	if err := conn.Where("id = ?", id).First(&group).Error; err != nil {
		utils.Error(w, utils.NotFound("Group not found or access denied"))
		return
	}
	if !member.CanInvite(group.Settings) {
		utils.Error(w, utils.Forbidden("Insufficient permissions for this group"))
		return
	}

	now := db.Now()
	invite, err := models.NewGroupInvite(group.ID, identity.ID, email, now)
	if err != nil {
		utils.Error(w, err)
		return
	}

	var invitee models.User
	if err := conn.Where("email = ?", email).First(&invitee).Error; err == nil {
		invite.InvitedUser = &invitee.ID
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at <= ?", now).Delete(&models.GroupInvite{}).Error; err != nil {
			return err
		}
		return tx.Create(invite).Error
	})
	if err != nil {
		log.Printf("InviteToGroup: failed to create invite for group %s: %v", id, err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, utils.Envelope{
		"message": "Invitation sent successfully",
		"invite": utils.Envelope{
			"id":        invite.ID,
			"email":     invite.Email,
			"status":    invite.Status,
			"expiresAt": invite.ExpiresAt,
		},
	})
}

// POST /api/groups/join/{inviteCode}. The only self-service way into a group.
func (db *DBHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	code := models.NormalizeInviteCode(chi.URLParam(r, "inviteCode"))

	conn := db.conn(r)
	var group models.Group
	err = conn.Where("invite_code = ?", code).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, utils.NotFound("Invalid invite code"))
		return
	}
	if err != nil {
		utils.Error(w, err)
		return
	}

	if err := db.addMember(conn, group.ID, identity.ID, models.RoleMember); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			utils.Error(w, utils.Conflict("You are already a member of this group"))
			return
		}
		utils.Error(w, err)
		return
	}

	joined, err := loadGroup(conn, group.ID)
	if err != nil {
		utils.Error(w, err)
		return
	}

	log.Printf("JoinGroup: user %s joined group %s", identity.ID, group.ID)
	utils.JSON(w, http.StatusOK, utils.Envelope{
		"message": "Successfully joined the group",
		"group":   joined,
	})
}

// addMember inserts a membership row. The (group, user) unique index turns a
// concurrent duplicate into Conflict instead of a second row.
func (db *DBHandler) addMember(conn *gorm.DB, groupID, userID uuid.UUID, role models.Role) error {
	var count int64
	if err := conn.Model(&models.GroupMember{}).Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.Conflict("User is already a member of this group")
	}

	err := conn.Create(&models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		JoinedAt: db.Now(),
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.Conflict("User is already a member of this group")
	}
	return err
}

// GET /api/groups/{id}/members
func (db *DBHandler) GetGroupMembers(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Group")
	if err != nil {
		utils.Error(w, err)
		return
	}

	conn := db.conn(r)
	if _, err := requireMember(conn, id, identity.ID); err != nil {
		utils.Error(w, err)
		return
	}

	members := []models.GroupMember{}
	err = conn.Preload("User").Where("group_id = ?", id).Order("joined_at ASC").Find(&members).Error
	if err != nil {
		log.Printf("GetGroupMembers: failed to fetch members of %s: %v", id, err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"members": members})
}

// POST /api/groups/{id}/add-member. Owner/admin shortcut that skips the invite code.
func (db *DBHandler) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Group")
	if err != nil {
		utils.Error(w, err)
		return
	}

	var req struct {
		UserID string      `json:"userId"`
		Role   models.Role `json:"role"`
	}
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		utils.Error(w, utils.Invalid("userId is required"))
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	// A group has exactly one owner: its creator.
	if role != models.RoleMember && role != models.RoleAdmin {
		utils.Error(w, utils.Invalid("role must be member or admin"))
		return
	}

	conn := db.conn(r)
	if _, err := requireMember(conn, id, identity.ID, models.ManagerRoles...); err != nil {
		utils.Error(w, err)
		return
	}

	var user models.User
	if err := conn.Where("id = ?", userID).First(&user).Error; err != nil {
		utils.Error(w, utils.NotFound("User not found"))
		return
	}

	if err := db.addMember(conn, id, userID, role); err != nil {
		utils.Error(w, err)
		return
	}

	group, err := loadGroup(conn, id)
	if err != nil {
		utils.Error(w, err)
		return
	}

	log.Printf("AddGroupMember: %s added %s to group %s as %s", identity.ID, userID, id, role)
	utils.JSON(w, http.StatusCreated, utils.Envelope{"group": group})
}
