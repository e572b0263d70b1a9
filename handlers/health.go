package handlers

import (
	"net/http"
	"time"

	"github.com/studysync/studysync-api/utils"
)

// GET /api/
func (db *DBHandler) Root(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message":   "StudySync API is running",
		"version":   "1.0.0",
		"timestamp": db.Now().Format(time.RFC3339),
	})
}

// GET /api/health. Always 200; the database field reports connectivity.
func (db *DBHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "Connected"
	sqlDB, err := db.DB.DB()
	if err != nil || sqlDB.PingContext(r.Context()) != nil {
		status = "Disconnected"
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "OK",
		"message":  "Server is running smoothly",
		"database": status,
	})
}
