package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/studysync/studysync-api/auth"
	"github.com/studysync/studysync-api/models"
	"github.com/studysync/studysync-api/utils"
	"gorm.io/gorm"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/register
func (db *DBHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	email := models.NormalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		utils.Error(w, utils.Invalid("Name, email and password are required."))
		return
	}

	conn := db.conn(r)
	var existing models.User
	err := conn.Where("email = ?", email).First(&existing).Error
	if err == nil {
		utils.Error(w, utils.Conflict("User with this email already exists."))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Register: failed to hash password: %v", err)
		utils.Error(w, err)
		return
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.DefaultUserRole,
	}
	if err := conn.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(w, utils.Conflict("Email already in use."))
			return
		}
		log.Printf("Register: failed to create user: %v", err)
		utils.Error(w, err)
		return
	}

	token, err := db.Tokens.CreateToken(user.ID, user.Email, user.Role)
	if err != nil {
		log.Printf("Register: token generation error: %v", err)
		utils.Error(w, err)
		return
	}

	log.Printf("Register: created user id=%s", user.ID)
	utils.JSON(w, http.StatusCreated, utils.Envelope{
		"message": "User registered successfully.",
		"user":    user,
		"token":   token,
	})
}

// POST /api/auth/login
func (db *DBHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}

	email := models.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		utils.Error(w, utils.Invalid("Email and password are required."))
		return
	}

	var user models.User
	err := db.conn(r).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, utils.Unauthorized("Invalid email or password."))
		return
	}
	if err != nil {
		utils.Error(w, err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		utils.Error(w, utils.Unauthorized("Invalid email or password."))
		return
	}

	token, err := db.Tokens.CreateToken(user.ID, user.Email, user.Role)
	if err != nil {
		log.Printf("Login: token generation error: %v", err)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{
		"message": "Login successful.",
		"user":    user,
		"token":   token,
	})
}

// GET /api/auth/me
func (db *DBHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	var user models.User
	err = db.conn(r).Where("id = ?", identity.ID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(w, utils.NotFound("User not found."))
		return
	}
	if err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{"user": user})
}

// PUT /api/auth/user
func (db *DBHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := utils.Decode(r, &req); err != nil {
		utils.Error(w, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.Error(w, utils.Invalid("Name is required."))
		return
	}

	conn := db.conn(r)
	result := conn.Model(&models.User{}).Where("id = ?", identity.ID).Update("name", name)
	if result.Error != nil {
		log.Printf("UpdateUsername: failed to update user %s: %v", identity.ID, result.Error)
		utils.Error(w, result.Error)
		return
	}
	// The account can disappear between token issuance and this write.
	if result.RowsAffected == 0 {
		utils.Error(w, utils.NotFound("User not found."))
		return
	}

	var user models.User
	if err := conn.Where("id = ?", identity.ID).First(&user).Error; err != nil {
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, utils.Envelope{
		"message": "Username updated successfully.",
		"user":    user,
	})
}

// POST /api/auth/logout. Tokens are not revoked; the client drops its copy.
func (db *DBHandler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, utils.Envelope{"message": "Logged out successfully."})
}
