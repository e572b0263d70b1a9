package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studysync/studysync-api/models"
)

func (a *testAPI) createNote(u apiUser, subject uuid.UUID, title string, public bool) string {
	a.t.Helper()
	status, body := a.call(http.MethodPost, "/notes", u.Token, map[string]any{
		"title": title, "content": "content of " + title, "subjectId": subject,
		"isPublic": public, "tags": []string{"bio", " bio ", "cells"},
	})
	require.Equal(a.t, http.StatusCreated, status, body)
	return body["note"].(map[string]any)["id"].(string)
}

func TestCreateNote(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	subject := api.createSubject(ivan, "Biology", true)

	id := api.createNote(ivan, subject, "Cells", false)

	var stored models.Note
	require.NoError(t, api.db.Where("id = ?", id).First(&stored).Error)
	assert.Equal(t, []string{"bio", "cells"}, stored.Tags)
	assert.Equal(t, ivan.ID, stored.AuthorID)

	status, _ := api.call(http.MethodPost, "/notes", ivan.Token, map[string]any{
		"title": strings.Repeat("t", 101), "content": "c", "subjectId": subject,
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestNotesForSubjectAndMyNotes(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	anna := api.register("Anna", "anna@example.com")
	subject := api.createSubject(ivan, "Biology", true)

	api.createNote(ivan, subject, "Public", true)
	api.createNote(ivan, subject, "Private", false)
	api.createNote(anna, subject, "Anna's", false)

	status, body := api.call(http.MethodGet, "/notes/subject/"+subject.String(), anna.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["notes"], 2)

	status, body = api.call(http.MethodGet, "/notes/my", ivan.Token, nil)
	require.Equal(t, http.StatusOK, status)
	notes := body["notes"].([]any)
	require.Len(t, notes, 2)
	assert.Equal(t, "Biology", notes[0].(map[string]any)["subject"].(map[string]any)["name"])
}

func TestNoteOnlyAuthorCanModify(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	anna := api.register("Anna", "anna@example.com")
	subject := api.createSubject(ivan, "Biology", true)
	id := api.createNote(ivan, subject, "Cells", true)

	status, _ := api.call(http.MethodPut, "/notes/"+id, anna.Token, map[string]any{"title": "Defaced"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = api.call(http.MethodDelete, "/notes/"+id, anna.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var stored models.Note
	require.NoError(t, api.db.Where("id = ?", id).First(&stored).Error)
	assert.Equal(t, "Cells", stored.Title)

	status, body := api.call(http.MethodPut, "/notes/"+id, ivan.Token, map[string]any{"title": "Cell biology"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Cell biology", body["note"].(map[string]any)["title"])

	status, _ = api.call(http.MethodDelete, "/notes/"+id, ivan.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, api.count(&models.Note{}, "id = ?", id))
}
