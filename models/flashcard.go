package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

const (
	// StudyCooldown is how long a reviewed card stays out of the study queue.
	StudyCooldown = 24 * time.Hour
	// StudyBatchSize caps the number of cards returned for one study session.
	StudyBatchSize = 20
)

// Flashcard is a question/answer pair with self-assessment counters.
type Flashcard struct {
	Model
	Question string `json:"question" gorm:"not null"`
	Answer   string `json:"answer" gorm:"not null"`

	SubjectID uuid.UUID  `json:"subjectId" gorm:"type:text;not null;index"`
	AuthorID  uuid.UUID  `json:"authorId" gorm:"type:text;not null;index"`
	Author    *User      `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	GroupID   *uuid.UUID `json:"groupId,omitempty" gorm:"type:text;index"`

	Difficulty    Difficulty `json:"difficulty" gorm:"size:10;not null"`
	KnowCount     int        `json:"knowCount" gorm:"not null"`
	DontKnowCount int        `json:"dontKnowCount" gorm:"not null"`
	LastReviewed  *time.Time `json:"lastReviewed"`
}

// Validate trims the text fields and fills defaults before a write.
func (f *Flashcard) Validate() error {
	f.Question = strings.TrimSpace(f.Question)
	f.Answer = strings.TrimSpace(f.Answer)
	switch {
	case f.Question == "":
		return errors.New("question is required")
	case f.Answer == "":
		return errors.New("answer is required")
	case f.SubjectID == uuid.Nil:
		return errors.New("subjectId is required")
	case f.AuthorID == uuid.Nil:
		return errors.New("authorId is required")
	}
	if f.Difficulty == "" {
		f.Difficulty = DifficultyMedium
	}
	if !f.Difficulty.Valid() {
		return errors.New("difficulty must be one of easy, medium, hard")
	}
	if f.KnowCount < 0 || f.DontKnowCount < 0 {
		return errors.New("review counters cannot be negative")
	}
	return nil
}

// MarkKnown records a successful review. Three or more successes make the card easy.
func (f *Flashcard) MarkKnown(now time.Time) {
	f.KnowCount++
	f.LastReviewed = &now
	switch {
	case f.KnowCount >= 3:
		f.Difficulty = DifficultyEasy
	case f.KnowCount >= 1:
		f.Difficulty = DifficultyMedium
	}
}

// MarkUnknown records a failed review; the card always becomes hard.
func (f *Flashcard) MarkUnknown(now time.Time) {
	f.DontKnowCount++
	f.LastReviewed = &now
	f.Difficulty = DifficultyHard
}

// DueForStudy reports whether the card was never reviewed or the cooldown has passed.
func (f *Flashcard) DueForStudy(now time.Time) bool {
	return f.LastReviewed == nil || f.LastReviewed.Before(now.Add(-StudyCooldown))
}
