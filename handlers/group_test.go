package handlers_test

import (
	"net/http"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studysync/studysync-api/models"
)

func memberRoles(group map[string]any) map[string]string {
	roles := map[string]string{}
	for _, m := range group["members"].([]any) {
		member := m.(map[string]any)
		roles[member["userId"].(string)] = member["role"].(string)
	}
	return roles
}

func TestCreateGroupMakesCreatorOwner(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	subject := api.createSubject(ivan, "Biology", true)

	group := api.createGroup(ivan, subject, "Biology circle")
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Z]{6}$`), group["inviteCode"])
	assert.Equal(t, map[string]string{ivan.ID.String(): "owner"}, memberRoles(group))
	assert.Equal(t, "Ivan", group["creator"].(map[string]any)["name"])
	assert.Equal(t, "Biology", group["subject"].(map[string]any)["name"])

	settings := group["settings"].(map[string]any)
	assert.Equal(t, false, settings["allowMemberInvites"])
	assert.Equal(t, true, settings["allowMemberCreateCards"])
	assert.Equal(t, true, settings["allowMemberCreateNotes"])

	status, _ := api.call(http.MethodPost, "/groups", ivan.Token, map[string]any{"name": "No subject"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestJoinGroupByInviteCode(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	anna := api.register("Anna", "anna@example.com")
	subject := api.createSubject(ivan, "Biology", true)
	group := api.createGroup(ivan, subject, "Biology circle")
	code := group["inviteCode"].(string)

	status, body := api.call(http.MethodPost, "/groups/join/"+strings.ToLower(code), anna.Token, nil)
	require.Equal(t, http.StatusOK, status, body)
	joined := body["group"].(map[string]any)
	assert.Equal(t, map[string]string{
		ivan.ID.String(): "owner",
		anna.ID.String(): "member",
	}, memberRoles(joined))

	status, body = api.call(http.MethodPost, "/groups/join/"+code, anna.Token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "You are already a member of this group", body["error"])
	assert.EqualValues(t, 2, api.count(&models.GroupMember{}, "group_id = ?", group["id"]))

	status, body = api.call(http.MethodPost, "/groups/join/ZZZZZZ", anna.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Invalid invite code", body["error"])

	status, body = api.call(http.MethodGet, "/groups/my", anna.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["groups"], 1)
}

func TestGroupAccessForNonMembers(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	stranger := api.register("Petr", "petr@example.com")
	subject := api.createSubject(ivan, "Biology", true)
	id := api.createGroup(ivan, subject, "Circle")["id"].(string)

	for _, path := range []string{"/groups/" + id, "/groups/" + id + "/members", "/groups/" + id + "/flashcards", "/groups/" + id + "/notes"} {
		status, body := api.call(http.MethodGet, path, stranger.Token, nil)
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Equal(t, "Group not found or access denied", body["error"], path)
	}

	status, _ := api.call(http.MethodGet, "/groups/not-a-uuid", ivan.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGroupRoles(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	anna := api.register("Anna", "anna@example.com")
	petr := api.register("Petr", "petr@example.com")
	subject := api.createSubject(ivan, "Biology", true)
	group := api.createGroup(ivan, subject, "Circle")
	id := group["id"].(string)

	status, _ := api.call(http.MethodPost, "/groups/join/"+group["inviteCode"].(string), anna.Token, nil)
	require.Equal(t, http.StatusOK, status)

	// Plain members cannot manage the group.
	status, body := api.call(http.MethodPut, "/groups/"+id, anna.Token, map[string]any{"name": "Mine now"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Insufficient permissions for this group", body["error"])
	status, _ = api.call(http.MethodPost, "/groups/"+id+"/add-member", anna.Token, map[string]any{"userId": petr.ID})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.call(http.MethodPost, "/groups/"+id+"/invite", anna.Token, map[string]any{"email": "x@example.com"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.call(http.MethodDelete, "/groups/"+id, anna.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// The owner can.
	status, body = api.call(http.MethodPost, "/groups/"+id+"/add-member", ivan.Token, map[string]any{"userId": petr.ID, "role": "admin"})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "admin", memberRoles(body["group"].(map[string]any))[petr.ID.String()])

	status, _ = api.call(http.MethodPost, "/groups/"+id+"/add-member", ivan.Token, map[string]any{"userId": petr.ID})
	assert.Equal(t, http.StatusConflict, status)
	status, _ = api.call(http.MethodPost, "/groups/"+id+"/add-member", ivan.Token, map[string]any{"userId": anna.ID, "role": "owner"})
	assert.Equal(t, http.StatusBadRequest, status)

	// Admins can update settings but not delete.
	status, body = api.call(http.MethodPut, "/groups/"+id, petr.Token, map[string]any{
		"name":     "Renamed",
		"settings": map[string]any{"allowMemberInvites": true},
	})
	require.Equal(t, http.StatusOK, status, body)
	updated := body["group"].(map[string]any)
	assert.Equal(t, "Renamed", updated["name"])
	settings := updated["settings"].(map[string]any)
	assert.Equal(t, true, settings["allowMemberInvites"])
	assert.Equal(t, true, settings["allowMemberCreateCards"])

	status, _ = api.call(http.MethodDelete, "/groups/"+id, petr.Token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// With invites opened up, members may invite.
	status, body = api.call(http.MethodPost, "/groups/"+id+"/invite", anna.Token, map[string]any{"email": "Olga@Example.com"})
	require.Equal(t, http.StatusCreated, status, body)
	invite := body["invite"].(map[string]any)
	assert.Equal(t, "olga@example.com", invite["email"])
	assert.Equal(t, "pending", invite["status"])

	status, body = api.call(http.MethodGet, "/groups/"+id+"/members", anna.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["members"], 3)
}

func TestInviteValidationAndPurge(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	subject := api.createSubject(ivan, "Biology", true)
	id := api.createGroup(ivan, subject, "Circle")["id"].(string)

	status, _ := api.call(http.MethodPost, "/groups/"+id+"/invite", ivan.Token, map[string]any{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.call(http.MethodPost, "/groups/"+id+"/invite", ivan.Token, map[string]any{"email": "a@example.com"})
	require.Equal(t, http.StatusCreated, status)
	require.NoError(t, api.db.Model(&models.GroupInvite{}).Where("1 = 1").
		Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error)

	status, _ = api.call(http.MethodPost, "/groups/"+id+"/invite", ivan.Token, map[string]any{"email": "b@example.com"})
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 1, api.count(&models.GroupInvite{}, "1 = 1"))
	assert.EqualValues(t, 1, api.count(&models.GroupInvite{}, "email = ?", "b@example.com"))
}

func TestGroupContentRespectsSettings(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	anna := api.register("Anna", "anna@example.com")
	subject := api.createSubject(ivan, "Biology", true)
	group := api.createGroup(ivan, subject, "Circle")
	id := group["id"].(string)
	status, _ := api.call(http.MethodPost, "/groups/join/"+group["inviteCode"].(string), anna.Token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := api.call(http.MethodPost, "/groups/"+id+"/flashcards", anna.Token, map[string]any{"question": "q", "answer": "a"})
	require.Equal(t, http.StatusCreated, status, body)
	card := body["flashcard"].(map[string]any)
	assert.Equal(t, id, card["groupId"])
	assert.Equal(t, subject.String(), card["subjectId"])

	status, body = api.call(http.MethodGet, "/groups/"+id+"/flashcards", ivan.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["flashcards"], 1)

	status, _ = api.call(http.MethodPut, "/groups/"+id, ivan.Token, map[string]any{
		"settings": map[string]any{"allowMemberCreateCards": false, "allowMemberCreateNotes": false},
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = api.call(http.MethodPost, "/groups/"+id+"/flashcards", anna.Token, map[string]any{"question": "q", "answer": "a"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.call(http.MethodPost, "/groups/"+id+"/notes", anna.Token, map[string]any{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.call(http.MethodPost, "/flashcards", anna.Token, map[string]any{
		"question": "q", "answer": "a", "subjectId": subject, "groupId": id,
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.call(http.MethodPost, "/groups/"+id+"/notes", ivan.Token, map[string]any{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusCreated, status)
}

func TestGroupNotesOnlyAuthorCanModify(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	anna := api.register("Anna", "anna@example.com")
	subject := api.createSubject(ivan, "Biology", true)
	group := api.createGroup(ivan, subject, "Circle")
	id := group["id"].(string)
	status, _ := api.call(http.MethodPost, "/groups/join/"+group["inviteCode"].(string), anna.Token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := api.call(http.MethodPost, "/groups/"+id+"/notes", anna.Token, map[string]any{"title": "Anna's note", "content": "c"})
	require.Equal(t, http.StatusCreated, status, body)
	noteID := body["note"].(map[string]any)["id"].(string)

	status, body = api.call(http.MethodPut, "/groups/"+id+"/notes/"+noteID, ivan.Token, map[string]any{"title": "Owner edit"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Note not found or you are not the author", body["error"])
	status, _ = api.call(http.MethodDelete, "/groups/"+id+"/notes/"+noteID, ivan.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = api.call(http.MethodPut, "/groups/"+id+"/notes/"+noteID, anna.Token, map[string]any{"content": "updated"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "updated", body["note"].(map[string]any)["content"])

	status, body = api.call(http.MethodGet, "/groups/"+id+"/notes", ivan.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["notes"], 1)

	status, _ = api.call(http.MethodDelete, "/groups/"+id+"/notes/"+noteID, anna.Token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestDeleteGroupCascades(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	anna := api.register("Anna", "anna@example.com")
	subject := api.createSubject(ivan, "Biology", true)
	group := api.createGroup(ivan, subject, "Circle")
	id := group["id"].(string)

	status, _ := api.call(http.MethodPost, "/groups/join/"+group["inviteCode"].(string), anna.Token, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = api.call(http.MethodPost, "/groups/"+id+"/flashcards", anna.Token, map[string]any{"question": "q", "answer": "a"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.call(http.MethodPost, "/groups/"+id+"/notes", anna.Token, map[string]any{"title": "t", "content": "c"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = api.call(http.MethodPost, "/groups/"+id+"/invite", ivan.Token, map[string]any{"email": "x@example.com"})
	require.Equal(t, http.StatusCreated, status)
	api.createFlashcard(ivan, subject, "personal")

	status, body := api.call(http.MethodDelete, "/groups/"+id, ivan.Token, nil)
	require.Equal(t, http.StatusOK, status, body)

	assert.EqualValues(t, 0, api.count(&models.Group{}, "id = ?", id))
	assert.EqualValues(t, 0, api.count(&models.GroupMember{}, "group_id = ?", id))
	assert.EqualValues(t, 0, api.count(&models.GroupInvite{}, "group_id = ?", id))
	assert.EqualValues(t, 0, api.count(&models.Note{}, "group_id = ?", id))
	assert.EqualValues(t, 1, api.count(&models.Flashcard{}, "1 = 1"))

	status, _ = api.call(http.MethodGet, "/groups/"+id, ivan.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGroupContentOnHiddenSubject(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	anna := api.register("Anna", "anna@example.com")
	secret := api.createSubject(ivan, "Secret", false)
	subject := api.createSubject(anna, "Biology", true)
	own := api.createSubject(anna, "Drafts", false)
	id := api.createGroup(anna, subject, "Circle")["id"].(string)

	status, body := api.call(http.MethodPost, "/groups/"+id+"/flashcards", anna.Token, map[string]any{
		"question": "q", "answer": "a", "subjectId": secret,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Subject not found", body["error"])

	status, body = api.call(http.MethodPost, "/groups/"+id+"/notes", anna.Token, map[string]any{
		"title": "t", "content": "c", "subjectId": secret,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Subject not found", body["error"])

	assert.EqualValues(t, 0, api.count(&models.Flashcard{}, "subject_id = ?", secret))
	assert.EqualValues(t, 0, api.count(&models.Note{}, "subject_id = ?", secret))

	status, body = api.call(http.MethodPost, "/groups/"+id+"/flashcards", anna.Token, map[string]any{
		"question": "q", "answer": "a", "subjectId": own,
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, own.String(), body["flashcard"].(map[string]any)["subjectId"])
}

func TestCreateGroupRetriesInviteCodeCollision(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	subject := api.createSubject(ivan, "Biology", true)

	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	api.handler.InviteCodes = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	first := api.createGroup(ivan, subject, "First")
	second := api.createGroup(ivan, subject, "Second")

	assert.Equal(t, "AAAAAA", first["inviteCode"])
	assert.Equal(t, "BBBBBB", second["inviteCode"])
	assert.Empty(t, codes)
	assert.EqualValues(t, 2, api.count(&models.Group{}, "1 = 1"))
	assert.EqualValues(t, 2, api.count(&models.GroupMember{}, "user_id = ?", ivan.ID))
}

func TestCreateGroupGivesUpAfterRepeatedCollisions(t *testing.T) {
	api := newTestAPI(t)
	ivan := api.register("Ivan", "ivan@example.com")
	subject := api.createSubject(ivan, "Biology", true)

	calls := 0
	api.handler.InviteCodes = func() (string, error) {
		calls++
		return "AAAAAA", nil
	}
	api.createGroup(ivan, subject, "First")
	require.Equal(t, 1, calls)

	status, body := api.call(http.MethodPost, "/groups", ivan.Token, map[string]any{"name": "Second", "subjectId": subject})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Could not allocate a unique invite code, please try again", body["error"])
	assert.Equal(t, 6, calls)
	assert.EqualValues(t, 1, api.count(&models.Group{}, "1 = 1"))
	assert.EqualValues(t, 1, api.count(&models.GroupMember{}, "1 = 1"))
}
