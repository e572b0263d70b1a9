package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/studysync/studysync-api/auth"
	"github.com/studysync/studysync-api/models"
	"github.com/studysync/studysync-api/utils"
	"gorm.io/gorm"
)

// caller returns the authenticated identity. Routes behind the bearer middleware always have one.
func caller(r *http.Request) (auth.Identity, error) {
	identity, ok := utils.GetIdentity(r)
	if !ok {
		return auth.Identity{}, utils.Unauthorized("Unauthorized")
	}
	return identity, nil
}

// findOwned loads the document with id whose ownerColumn equals owner. Documents owned
// by someone else are reported as missing so their existence is not revealed.
func findOwned[T any](tx *gorm.DB, id uuid.UUID, ownerColumn string, owner uuid.UUID, notFound string) (*T, error) {
	var doc T
	err := tx.Where("id = ?", id).Where(ownerColumn+" = ?", owner).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound(notFound)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// requireMember returns the caller's membership of groupID. Non-members get NotFound;
// members without one of roles (when given) get Forbidden.
func requireMember(tx *gorm.DB, groupID, userID uuid.UUID, roles ...models.Role) (*models.GroupMember, error) {
	var member models.GroupMember
	err := tx.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("Group not found or access denied")
	}
	if err != nil {
		return nil, err
	}
	if len(roles) > 0 && !member.HasRole(roles...) {
		return nil, utils.Forbidden("Insufficient permissions for this group")
	}
	return &member, nil
}

// visibleSubject loads a subject the caller owns or that is public.
func visibleSubject(tx *gorm.DB, id, userID uuid.UUID) (*models.Subject, error) {
	var subject models.Subject
	err := tx.Where("id = ?", id).Where("created_by = ? OR is_public = ?", userID, true).First(&subject).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("Subject not found")
	}
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// memberGroupIDs is a subquery selecting every group the user belongs to.
func memberGroupIDs(tx *gorm.DB, userID uuid.UUID) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.GroupMember{}).
		Select("group_id").
		Where("user_id = ?", userID)
}

func parseOptionalID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, utils.Invalid(field + " is invalid")
	}
	return &id, nil
}
