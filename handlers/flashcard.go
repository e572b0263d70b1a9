package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/studysync/studysync-api/models"
	"github.com/studysync/studysync-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// flashcardRequest is shared by create and update. authorId is never read from the body.
type flashcardRequest struct {
	Question   *string            `json:"question"`
	Answer     *string            `json:"answer"`
	SubjectID  *string            `json:"subjectId"`
	GroupID    *string            `json:"groupId"`
	Difficulty *models.Difficulty `json:"difficulty"`
}

// apply copies the provided fields onto card.
func (req *flashcardRequest) apply(card *models.Flashcard) error {
	if req.Question != nil {
		card.Question = *req.Question
	}
	if req.Answer != nil {
		card.Answer = *req.Answer
	}
	if req.Difficulty != nil {
		card.Difficulty = *req.Difficulty
	}
	subjectID, err := parseOptionalID(req.SubjectID, "subjectId")
	if err != nil {
		return err
	}
	if subjectID != nil {
		card.SubjectID = *subjectID
	}
	return nil
}

// POST /api/flashcards
func (db *DBHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	var req flashcardRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}

	card := models.Flashcard{AuthorID: identity.ID}
	if err := req.apply(&card); err != nil {
		utils.Error(w, err)
		return
	}
	if err := card.Validate(); err != nil {
		utils.Error(w, utils.Invalid(err.Error()))
		return
	}

	conn := db.conn(r)
	groupID, err := parseOptionalID(req.GroupID, "groupId")
	if err != nil {
		utils.Error(w, err)
		return
	}
	if groupID != nil {
		var group models.Group
		if err := conn.Where("id = ?", *groupID).First(&group).Error; err != nil {
			utils.Error(w, utils.NotFound("Group not found or access denied"))
			return
		}
		member, err := requireMember(conn, group.ID, identity.ID)
		if err != nil {
			utils.Error(w, err)
			return
		}
		if !member.CanCreateCards(group.Settings) {
			utils.Error(w, utils.Forbidden("Members cannot create flashcards in this group"))
			return
		}
		card.GroupID = groupID
	}

	if _, err := visibleSubject(conn, card.SubjectID, identity.ID); err != nil {
		utils.Error(w, err)
		return
	}

	db.createFlashcard(w, r, &card)
}

// createFlashcard persists a validated card and answers with the author populated.
func (db *DBHandler) createFlashcard(w http.ResponseWriter, r *http.Request, card *models.Flashcard) {
	conn := db.conn(r)
	if err := conn.Omit(clause.Associations).Create(card).Error; err != nil {
		log.Printf("CreateFlashcard: failed to create flashcard: %v", err)
		utils.Error(w, err)
		return
	}
	if err := conn.Preload("Author").Where("id = ?", card.ID).First(card).Error; err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, utils.Envelope{"flashcard": card})
}

// GET /api/flashcards/subject/{subjectID}
// Cards the caller wrote plus cards shared in any group the caller belongs to.
func (db *DBHandler) GetFlashcardsForSubject(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	subjectID, err := utils.PathID(r, "subjectID", "Subject")
	if err != nil {
		utils.Error(w, err)
		return
	}

	conn := db.conn(r)
	flashcards := []models.Flashcard{}
	err = conn.Preload("Author").
		Where("subject_id = ?", subjectID).
		Where("author_id = ? OR group_id IN (?)", identity.ID, memberGroupIDs(conn, identity.ID)).
		Order("created_at DESC").
		Find(&flashcards).Error
	if err != nil {
		log.Printf("GetFlashcardsForSubject: failed to fetch flashcards: %v", err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"flashcards": flashcards})
}

// GET /api/flashcards/study/{subjectID}
// Up to StudyBatchSize of the caller's cards that were never reviewed or not in the last day.
func (db *DBHandler) GetFlashcardsForStudy(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	subjectID, err := utils.PathID(r, "subjectID", "Subject")
	if err != nil {
		utils.Error(w, err)
		return
	}

	cutoff := db.Now().Add(-models.StudyCooldown)
	flashcards := []models.Flashcard{}
	err = db.conn(r).
		Where("subject_id = ? AND author_id = ?", subjectID, identity.ID).
		Where("last_reviewed IS NULL OR last_reviewed < ?", cutoff).
		Order("created_at ASC").
		Limit(models.StudyBatchSize).
		Find(&flashcards).Error
	if err != nil {
		log.Printf("GetFlashcardsForStudy: failed to fetch due flashcards: %v", err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"flashcards": flashcards})
}

// PUT /api/flashcards/{id}/know
func (db *DBHandler) MarkFlashcardKnown(w http.ResponseWriter, r *http.Request) {
	db.reviewFlashcard(w, r, (*models.Flashcard).MarkKnown)
}

// PUT /api/flashcards/{id}/dont-know
func (db *DBHandler) MarkFlashcardUnknown(w http.ResponseWriter, r *http.Request) {
	db.reviewFlashcard(w, r, (*models.Flashcard).MarkUnknown)
}

func (db *DBHandler) reviewFlashcard(w http.ResponseWriter, r *http.Request, mark func(*models.Flashcard, time.Time)) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Flashcard")
	if err != nil {
		utils.Error(w, err)
		return
	}

	var card *models.Flashcard
	err = db.conn(r).Transaction(func(tx *gorm.DB) error {
		found, err := findOwned[models.Flashcard](tx, id, "author_id", identity.ID, "Flashcard not found")
		if err != nil {
			return err
		}
		mark(found, db.Now())
		if err := tx.Omit(clause.Associations).Save(found).Error; err != nil {
			return err
		}
		card = found
		return tx.Preload("Author").Where("id = ?", found.ID).First(card).Error
	})
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"flashcard": card})
}

// PUT /api/flashcards/{id}
func (db *DBHandler) UpdateFlashcardByID(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Flashcard")
	if err != nil {
		utils.Error(w, err)
		return
	}

	var req flashcardRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}

	conn := db.conn(r)
	card, err := findOwned[models.Flashcard](conn, id, "author_id", identity.ID, "Flashcard not found")
	if err != nil {
		utils.Error(w, err)
		return
	}
	if err := req.apply(card); err != nil {
		utils.Error(w, err)
		return
	}
	if err := card.Validate(); err != nil {
		utils.Error(w, utils.Invalid(err.Error()))
		return
	}
	if req.SubjectID != nil {
		if _, err := visibleSubject(conn, card.SubjectID, identity.ID); err != nil {
			utils.Error(w, err)
			return
		}
	}

	if err := conn.Omit(clause.Associations).Save(card).Error; err != nil {
		log.Printf("UpdateFlashcardByID: failed to update flashcard %s: %v", id, err)
		utils.Error(w, err)
		return
	}
	if err := conn.Preload("Author").Where("id = ?", card.ID).First(card).Error; err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"flashcard": card})
}

// DELETE /api/flashcards/{id}
func (db *DBHandler) DeleteFlashcardByID(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Flashcard")
	if err != nil {
		utils.Error(w, err)
		return
	}

	result := db.conn(r).Where("id = ? AND author_id = ?", id, identity.ID).Delete(&models.Flashcard{})
	if result.Error != nil {
		log.Printf("DeleteFlashcardByID: failed to delete flashcard %s: %v", id, result.Error)
		utils.Error(w, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(w, utils.NotFound("Flashcard not found"))
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"message": "Flashcard deleted successfully"})
}

// groupFlashcard builds a card stamped with the group and defaulting to its subject.
func groupFlashcard(req *flashcardRequest, group *models.Group, author uuid.UUID) (*models.Flashcard, error) {
	groupID := group.ID
	card := &models.Flashcard{
		AuthorID:  author,
		GroupID:   &groupID,
		SubjectID: group.SubjectID,
	}
	if err := req.apply(card); err != nil {
		return nil, err
	}
	if err := card.Validate(); err != nil {
		return nil, utils.Invalid(err.Error())
	}
	return card, nil
}
