package client

import (
	"github.com/google/uuid"
	"github.com/studysync/studysync-api/models"
)

// Fixed data served in demo mode when the API cannot be reached.
var (
	demoSubjects = models.DefaultSubjects()

	demoGroups = []models.Group{
		{
			Model:       models.Model{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000b1")},
			Name:        "Biology study circle",
			Description: "Demo group",
			SubjectID:   demoSubjects[0].ID,
			CreatedBy:   models.SeedOwnerID,
			InviteCode:  "DEMO01",
			Settings:    models.DefaultGroupSettings(),
			Members:     []models.GroupMember{{UserID: models.SeedOwnerID, Role: models.RoleOwner}},
		},
	}
)

func DemoSubjects() []models.Subject {
	return append([]models.Subject(nil), demoSubjects...)
}

func DemoGroups() []models.Group {
	return append([]models.Group(nil), demoGroups...)
}
