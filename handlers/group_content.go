package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/studysync/studysync-api/models"
	"github.com/studysync/studysync-api/utils"
	"gorm.io/gorm"
)

// groupForMember resolves the {id} group and the caller's membership of it.
func (db *DBHandler) groupForMember(r *http.Request) (*models.Group, *models.GroupMember, error) {
	identity, err := caller(r)
	if err != nil {
		return nil, nil, err
	}
	id, err := utils.PathID(r, "id", "Group")
	if err != nil {
		return nil, nil, err
	}

	conn := db.conn(r)
	member, err := requireMember(conn, id, identity.ID)
	if err != nil {
		return nil, nil, err
	}
	var group models.Group
	err = conn.Where("id = ?", id).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, utils.NotFound("Group not found or access denied")
	}
	if err != nil {
		return nil, nil, err
	}
	return &group, member, nil
}

// GET /api/groups/{id}/flashcards
func (db *DBHandler) GetGroupFlashcards(w http.ResponseWriter, r *http.Request) {
	group, _, err := db.groupForMember(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	flashcards := []models.Flashcard{}
	err = db.conn(r).Preload("Author").
		Where("group_id = ?", group.ID).
		Order("created_at DESC").
		Find(&flashcards).Error
	if err != nil {
		log.Printf("GetGroupFlashcards: failed to fetch flashcards for %s: %v", group.ID, err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"flashcards": flashcards})
}

// POST /api/groups/{id}/flashcards
func (db *DBHandler) CreateGroupFlashcard(w http.ResponseWriter, r *http.Request) {
	group, member, err := db.groupForMember(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	if !member.CanCreateCards(group.Settings) {
		utils.Error(w, utils.Forbidden("Members cannot create flashcards in this group"))
		return
	}

	var req flashcardRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}
	card, err := groupFlashcard(&req, group, member.UserID)
	if err != nil {
		utils.Error(w, err)
		return
	}
	if req.SubjectID != nil {
		if _, err := visibleSubject(db.conn(r), card.SubjectID, member.UserID); err != nil {
			utils.Error(w, err)
			return
		}
	}

	db.createFlashcard(w, r, card)
}

// GET /api/groups/{id}/notes
func (db *DBHandler) GetGroupNotes(w http.ResponseWriter, r *http.Request) {
	group, _, err := db.groupForMember(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	notes := []models.Note{}
	err = db.conn(r).Preload("Author").
		Where("group_id = ?", group.ID).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		log.Printf("GetGroupNotes: failed to fetch notes for %s: %v", group.ID, err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"notes": notes})
}

// POST /api/groups/{id}/notes
func (db *DBHandler) CreateGroupNote(w http.ResponseWriter, r *http.Request) {
	group, member, err := db.groupForMember(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	if !member.CanCreateNotes(group.Settings) {
		utils.Error(w, utils.Forbidden("Members cannot create notes in this group"))
		return
	}

	var req noteRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}
	note, err := groupNote(&req, group, member.UserID)
	if err != nil {
		utils.Error(w, err)
		return
	}
	if req.SubjectID != nil {
		if _, err := visibleSubject(db.conn(r), note.SubjectID, member.UserID); err != nil {
			utils.Error(w, err)
			return
		}
	}

	db.createNote(w, r, note)
}

// PUT /api/groups/{id}/notes/{noteID}. Only the note's author may edit it.
func (db *DBHandler) UpdateGroupNote(w http.ResponseWriter, r *http.Request) {
	group, member, err := db.groupForMember(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	noteID, err := utils.PathID(r, "noteID", "Note")
	if err != nil {
		utils.Error(w, err)
		return
	}

	conn := db.conn(r).Where("group_id = ?", group.ID)
	note, err := findOwned[models.Note](conn, noteID, "author_id", member.UserID, "Note not found or you are not the author")
	if err != nil {
		utils.Error(w, err)
		return
	}
	db.updateNote(w, r, note, member.UserID)
}

// DELETE /api/groups/{id}/notes/{noteID}
func (db *DBHandler) DeleteGroupNote(w http.ResponseWriter, r *http.Request) {
	group, member, err := db.groupForMember(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	noteID, err := utils.PathID(r, "noteID", "Note")
	if err != nil {
		utils.Error(w, err)
		return
	}

	scope := db.conn(r).Where("id = ? AND group_id = ? AND author_id = ?", noteID, group.ID, member.UserID)
	deleteNote(w, scope, "Note not found or you are not the author")
}
