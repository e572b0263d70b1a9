package models

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const NoteTitleMaxLength = 100

// Note is a titled text document, optionally shared with a group.
type Note struct {
	Model
	Title   string `json:"title" gorm:"not null;size:100"`
	Content string `json:"content" gorm:"not null"`

	SubjectID uuid.UUID  `json:"subjectId" gorm:"type:text;not null;index:idx_note_subject_author"`
	Subject   *Subject   `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	AuthorID  uuid.UUID  `json:"authorId" gorm:"type:text;not null;index:idx_note_subject_author"`
	Author    *User      `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	GroupID   *uuid.UUID `json:"groupId,omitempty" gorm:"type:text;index"`

	IsPublic bool     `json:"isPublic"`
	Tags     []string `json:"tags" gorm:"serializer:json"`
	FileURL  string   `json:"fileUrl"`
	FileName string   `json:"fileName"`
}

func (n *Note) Validate() error {
	n.Title = strings.TrimSpace(n.Title)
	n.Content = strings.TrimSpace(n.Content)
	switch {
	case n.Title == "":
		return errors.New("title is required")
	case utf8.RuneCountInString(n.Title) > NoteTitleMaxLength:
		return errors.New("title cannot exceed 100 characters")
	case n.Content == "":
		return errors.New("content is required")
	case n.SubjectID == uuid.Nil:
		return errors.New("subjectId is required")
	case n.AuthorID == uuid.Nil:
		return errors.New("authorId is required")
	}
	n.Tags = normalizeTags(n.Tags)
	return nil
}

// normalizeTags trims tags and drops blanks and duplicates, keeping first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
