package handlers

import (
	"log"
	"net/http"

	"github.com/studysync/studysync-api/models"
	"github.com/studysync/studysync-api/utils"
)

// GET /api/subjects
func (db *DBHandler) GetSubjects(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	subjects := []models.Subject{}
	err = db.conn(r).
		Where("created_by = ? OR is_public = ?", identity.ID, true).
		Order("name ASC").
		Find(&subjects).Error
	if err != nil {
		log.Printf("GetSubjects: failed to list subjects: %v", err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"subjects": subjects})
}

// GET /api/subjects/{id}
func (db *DBHandler) GetSubjectByID(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}
	id, err := utils.PathID(r, "id", "Subject")
	if err != nil {
		utils.Error(w, err)
		return
	}

	subject, err := visibleSubject(db.conn(r), id, identity.ID)
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"subject": subject})
}

// POST /api/subjects
func (db *DBHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Color       string `json:"color"`
		Icon        string `json:"icon"`
		IsPublic    *bool  `json:"isPublic"`
	}
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}

	subject := models.Subject{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		CreatedBy:   identity.ID,
		IsPublic:    true,
	}
	if req.IsPublic != nil {
		subject.IsPublic = *req.IsPublic
	}
	if err := subject.Validate(); err != nil {
		utils.Error(w, utils.Invalid(err.Error()))
		return
	}

	if err := db.conn(r).Create(&subject).Error; err != nil {
		log.Printf("CreateSubject: failed to create subject: %v", err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, utils.Envelope{"subject": subject})
}
