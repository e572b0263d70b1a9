package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// Envelope is a success body; JSON adds "success": true.
type Envelope map[string]any

func JSON(w http.ResponseWriter, status int, body Envelope) {
	if body == nil {
		body = Envelope{}
	}
	body["success"] = true
	WriteJSON(w, status, body)
}

// Error writes {success:false,error} with the status of the wrapped domain error.
// Anything that is not a domain error is logged and hidden behind a 500.
func Error(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Error: unexpected failure: %v", err)
		message = "internal server error"
	}
	ErrorWithMessage(w, status, message)
}

func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes body as-is, without the success envelope.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("WriteJSON: failed to encode response: %v", err)
	}
}
