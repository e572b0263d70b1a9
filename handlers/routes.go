package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes builds the /api router. requireAuth wraps every route that needs a bearer token.
func (db *DBHandler) Routes(requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", db.Root)
	r.Get("/health", db.Health)

	// Auth
	r.Post("/auth/register", db.Register)
	r.Post("/auth/login", db.Login)
	r.Post("/auth/logout", db.Logout)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/auth/me", db.Me)
		r.Put("/auth/user", db.UpdateUsername)

		// Subjects
		r.Get("/subjects", db.GetSubjects)
		r.Post("/subjects", db.CreateSubject)
		r.Get("/subjects/{id}", db.GetSubjectByID)

		// Flashcards
		r.Post("/flashcards", db.CreateFlashcard)
		r.Get("/flashcards/subject/{subjectID}", db.GetFlashcardsForSubject)
		r.Get("/flashcards/study/{subjectID}", db.GetFlashcardsForStudy)
		r.Put("/flashcards/{id}/know", db.MarkFlashcardKnown)
		r.Put("/flashcards/{id}/dont-know", db.MarkFlashcardUnknown)
		r.Put("/flashcards/{id}", db.UpdateFlashcardByID)
		r.Delete("/flashcards/{id}", db.DeleteFlashcardByID)

		// Notes
		r.Post("/notes", db.CreateNote)
		r.Get("/notes/my", db.GetMyNotes)
		r.Get("/notes/subject/{subjectID}", db.GetNotesForSubject)
		r.Put("/notes/{id}", db.UpdateNoteByID)
		r.Delete("/notes/{id}", db.DeleteNoteByID)

		// Groups
		r.Post("/groups", db.CreateGroup)
		r.Get("/groups/my", db.GetMyGroups)
		r.Post("/groups/join/{inviteCode}", db.JoinGroup)
		r.Get("/groups/{id}", db.GetGroupByID)
		r.Put("/groups/{id}", db.UpdateGroupByID)
		r.Delete("/groups/{id}", db.DeleteGroupByID)
		r.Post("/groups/{id}/invite", db.InviteToGroup)
		r.Get("/groups/{id}/members", db.GetGroupMembers)
		r.Post("/groups/{id}/add-member", db.AddGroupMember)

		// Group content
		r.Get("/groups/{id}/flashcards", db.GetGroupFlashcards)
		r.Post("/groups/{id}/flashcards", db.CreateGroupFlashcard)
		r.Get("/groups/{id}/notes", db.GetGroupNotes)
		r.Post("/groups/{id}/notes", db.CreateGroupNote)
		r.Put("/groups/{id}/notes/{noteID}", db.UpdateGroupNote)
		r.Delete("/groups/{id}/notes/{noteID}", db.DeleteGroupNote)
	})

	return r
}
