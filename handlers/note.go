package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/studysync/studysync-api/models"
	"github.com/studysync/studysync-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type noteRequest struct {
	Title     *string   `json:"title"`
	Content   *string   `json:"content"`
	SubjectID *string   `json:"subjectId"`
	GroupID   *string   `json:"groupId"`
	IsPublic  *bool     `json:"isPublic"`
	Tags      *[]string `json:"tags"`
	FileURL   *string   `json:"fileUrl"`
	FileName  *string   `json:"fileName"`
}

func (req *noteRequest) apply(note *models.Note) error {
	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.IsPublic != nil {
		note.IsPublic = *req.IsPublic
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}
	if req.FileURL != nil {
		note.FileURL = *req.FileURL
	}
	if req.FileName != nil {
		note.FileName = *req.FileName
	}
	subjectID, err := parseOptionalID(req.SubjectID, "subjectId")
	if err != nil {
		return err
	}
	if subjectID != nil {
		note.SubjectID = *subjectID
	}
	return nil
}

// POST /api/notes
func (db *DBHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	var req noteRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}

	note := models.Note{AuthorID: identity.ID}
	if err := req.apply(&note); err != nil {
		utils.Error(w, err)
		return
	}
	if err := note.Validate(); err != nil {
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
		if !member.CanCreateNotes(group.Settings) {
			utils.Error(w, utils.Forbidden("Members cannot create notes in this group"))
			return
		}
		note.GroupID = groupID
	}

	if _, err := visibleSubject(conn, note.SubjectID, identity.ID); err != nil {
		utils.Error(w, err)
		return
	}

	db.createNote(w, r, &note)
}

func (db *DBHandler) createNote(w http.ResponseWriter, r *http.Request, note *models.Note) {
	conn := db.conn(r)
	if err := conn.Omit(clause.Associations).Create(note).Error; err != nil {
		log.Printf("CreateNote: failed to create note: %v", err)
		utils.Error(w, err)
		return
	}
	if err := conn.Preload("Author").Where("id = ?", note.ID).First(note).Error; err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, utils.Envelope{"note": note})
}

// GET /api/notes/my
func (db *DBHandler) GetMyNotes(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	notes := []models.Note{}
	err = db.conn(r).Preload("Subject").
		Where("author_id = ?", identity.ID).
		Order("updated_at DESC").
		Find(&notes).Error
	if err != nil {
		log.Printf("GetMyNotes: failed to fetch notes: %v", err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"notes": notes})
}

// GET /api/notes/subject/{subjectID}
func (db *DBHandler) GetNotesForSubject(w http.ResponseWriter, r *http.Request) {
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

	notes := []models.Note{}
	err = db.conn(r).Preload("Author").
		Where("subject_id = ?", subjectID).
		Where("author_id = ? OR is_public = ?", identity.ID, true).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		log.Printf("GetNotesForSubject: failed to fetch notes: %v", err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"notes": notes})
}

// PUT /api/notes/{id}
func (db *DBHandler) UpdateNoteByID(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Note")
	if err != nil {
		utils.Error(w, err)
		return
	}

	conn := db.conn(r)
	note, err := findOwned[models.Note](conn, id, "author_id", identity.ID, "Note not found")
	if err != nil {
		utils.Error(w, err)
		return
	}
	db.updateNote(w, r, note, identity.ID)
}

// updateNote applies the body to an already authorized note.
func (db *DBHandler) updateNote(w http.ResponseWriter, r *http.Request, note *models.Note, author uuid.UUID) {
	var req noteRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}
	if err := req.apply(note); err != nil {
		utils.Error(w, err)
		return
	}
	if err := note.Validate(); err != nil {
		utils.Error(w, utils.Invalid(err.Error()))
		return
	}

	conn := db.conn(r)
	if req.SubjectID != nil {
		if _, err := visibleSubject(conn, note.SubjectID, author); err != nil {
			utils.Error(w, err)
			return
		}
	}
	if err := conn.Omit(clause.Associations).Save(note).Error; err != nil {
		log.Printf("UpdateNote: failed to update note %s: %v", note.ID, err)
		utils.Error(w, err)
		return
	}
	if err := conn.Preload("Author").Where("id = ?", note.ID).First(note).Error; err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"note": note})
}

// DELETE /api/notes/{id}
func (db *DBHandler) DeleteNoteByID(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Note")
	if err != nil {
		utils.Error(w, err)
		return
	}

	deleteNote(w, db.conn(r).Where("id = ? AND author_id = ?", id, identity.ID), "Note not found")
}

// deleteNote removes the single note selected by scope.
func deleteNote(w http.ResponseWriter, scope *gorm.DB, notFound string) {
	result := scope.Delete(&models.Note{})
	if result.Error != nil {
		log.Printf("DeleteNote: failed to delete note: %v", result.Error)
		utils.Error(w, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(w, utils.NotFound(notFound))
		return
	}
	utils.JSON(w, http.StatusOK, utils.Envelope{"message": "Note deleted successfully"})
}

// groupNote builds a note stamped with the group and defaulting to its subject.
func groupNote(req *noteRequest, group *models.Group, author uuid.UUID) (*models.Note, error) {
	groupID := group.ID
	note := &models.Note{
		AuthorID:  author,
		GroupID:   &groupID,
		SubjectID: group.SubjectID,
	}
	if err := req.apply(note); err != nil {
		return nil, err
	}
	if err := note.Validate(); err != nil {
		return nil, utils.Invalid(err.Error())
	}
	return note, nil
}
