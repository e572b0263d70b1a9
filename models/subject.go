package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultSubjectColor = "blue-500"
	DefaultSubjectIcon  = "📚"
)

// Subject groups notes, flashcards and study groups under one topic.
type Subject struct {
	Model
	Name        string    `json:"name" gorm:"not null;size:100;index"`
	Description string    `json:"description"`
	Color       string    `json:"color" gorm:"size:50"`
	Icon        string    `json:"icon" gorm:"size:20"`
	CreatedBy   uuid.UUID `json:"createdBy" gorm:"type:text;not null;index"`
	IsPublic    bool      `json:"isPublic"`
}

func (s *Subject) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return errors.New("subject name is required")
	}
	if s.Color == "" {
		s.Color = DefaultSubjectColor
	}
	if s.Icon == "" {
		s.Icon = DefaultSubjectIcon
	}
	return nil
}

// VisibleTo reports whether userID may read the subject.
func (s *Subject) VisibleTo(userID uuid.UUID) bool {
	return s.IsPublic || s.CreatedBy == userID
}

// SeedOwnerID owns the default subjects.
var SeedOwnerID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// DefaultSubjects are the public subjects a fresh installation starts with. IDs are fixed.
func DefaultSubjects() []Subject {
	return []Subject{
		{Model: Model{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000a1")}, Name: "Biology", Description: "The study of living organisms", Color: "green", Icon: "🧬", CreatedBy: SeedOwnerID, IsPublic: true},
		{Model: Model{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000a2")}, Name: "Chemistry", Description: "The study of substances and their properties", Color: "blue", Icon: "🧪", CreatedBy: SeedOwnerID, IsPublic: true},
		{Model: Model{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000a3")}, Name: "Mathematics", Description: "The study of numbers and calculation", Color: "purple", Icon: "📐", CreatedBy: SeedOwnerID, IsPublic: true},
	}
}
