package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/studysync/studysync-api/models"
)

type SubjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	IsPublic    *bool  `json:"isPublic,omitempty"`
}

type FlashcardInput struct {
	Question   string            `json:"question,omitempty"`
	Answer     string            `json:"answer,omitempty"`
	SubjectID  string            `json:"subjectId,omitempty"`
	GroupID    string            `json:"groupId,omitempty"`
	Difficulty models.Difficulty `json:"difficulty,omitempty"`
}

type NoteInput struct {
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content,omitempty"`
	SubjectID string   `json:"subjectId,omitempty"`
	GroupID   string   `json:"groupId,omitempty"`
	IsPublic  *bool    `json:"isPublic,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	FileURL   string   `json:"fileUrl,omitempty"`
	FileName  string   `json:"fileName,omitempty"`
}

type GroupInput struct {
	Name        string                `json:"name,omitempty"`
	Description string                `json:"description,omitempty"`
	SubjectID   string                `json:"subjectId,omitempty"`
	IsPublic    *bool                 `json:"isPublic,omitempty"`
	Settings    *models.GroupSettings `json:"settings,omitempty"`
}

type Invite struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expiresAt"`
}

// Subjects lists visible subjects, falling back to demo data when enabled.
func (c *Client) Subjects(ctx context.Context) ([]models.Subject, error) {
	var resp struct {
		Subjects []models.Subject `json:"subjects"`
	}
	err := c.do(ctx, http.MethodGet, "/subjects", nil, &resp)
	if c.demo && errors.Is(err, ErrNetwork) {
		return DemoSubjects(), nil
	}
	return resp.Subjects, err
}

func (c *Client) Subject(ctx context.Context, id string) (*models.Subject, error) {
	var resp struct {
		Subject models.Subject `json:"subject"`
	}
	if err := c.do(ctx, http.MethodGet, "/subjects/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Subject, nil
}

func (c *Client) CreateSubject(ctx context.Context, in SubjectInput) (*models.Subject, error) {
	var resp struct {
		Subject models.Subject `json:"subject"`
	}
	if err := c.do(ctx, http.MethodPost, "/subjects", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Subject, nil
}

type flashcardResponse struct {
	Flashcard models.Flashcard `json:"flashcard"`
}

type flashcardsResponse struct {
	Flashcards []models.Flashcard `json:"flashcards"`
}

func (c *Client) flashcard(ctx context.Context, method, path string, body any) (*models.Flashcard, error) {
	var resp flashcardResponse
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Flashcard, nil
}

func (c *Client) flashcards(ctx context.Context, path string) ([]models.Flashcard, error) {
	var resp flashcardsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Flashcards, nil
}

func (c *Client) CreateFlashcard(ctx context.Context, in FlashcardInput) (*models.Flashcard, error) {
	return c.flashcard(ctx, http.MethodPost, "/flashcards", in)
}

func (c *Client) FlashcardsForSubject(ctx context.Context, subjectID string) ([]models.Flashcard, error) {
	return c.flashcards(ctx, "/flashcards/subject/"+url.PathEscape(subjectID))
}

func (c *Client) StudyFlashcards(ctx context.Context, subjectID string) ([]models.Flashcard, error) {
	return c.flashcards(ctx, "/flashcards/study/"+url.PathEscape(subjectID))
}

func (c *Client) MarkKnown(ctx context.Context, id string) (*models.Flashcard, error) {
	return c.flashcard(ctx, http.MethodPut, "/flashcards/"+url.PathEscape(id)+"/know", nil)
}

func (c *Client) MarkUnknown(ctx context.Context, id string) (*models.Flashcard, error) {
	return c.flashcard(ctx, http.MethodPut, "/flashcards/"+url.PathEscape(id)+"/dont-know", nil)
}

func (c *Client) UpdateFlashcard(ctx context.Context, id string, in FlashcardInput) (*models.Flashcard, error) {
	return c.flashcard(ctx, http.MethodPut, "/flashcards/"+url.PathEscape(id), in)
}

func (c *Client) DeleteFlashcard(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/flashcards/"+url.PathEscape(id), nil, nil)
}

type noteResponse struct {
	Note models.Note `json:"note"`
}

type notesResponse struct {
	Notes []models.Note `json:"notes"`
}

func (c *Client) note(ctx context.Context, method, path string, body any) (*models.Note, error) {
	var resp noteResponse
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

func (c *Client) notes(ctx context.Context, path string) ([]models.Note, error) {
	var resp notesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

func (c *Client) CreateNote(ctx context.Context, in NoteInput) (*models.Note, error) {
	return c.note(ctx, http.MethodPost, "/notes", in)
}

func (c *Client) MyNotes(ctx context.Context) ([]models.Note, error) {
	return c.notes(ctx, "/notes/my")
}

func (c *Client) NotesForSubject(ctx context.Context, subjectID string) ([]models.Note, error) {
	return c.notes(ctx, "/notes/subject/"+url.PathEscape(subjectID))
}

func (c *Client) UpdateNote(ctx context.Context, id string, in NoteInput) (*models.Note, error) {
	return c.note(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), in)
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, nil)
}

type groupResponse struct {
	Group models.Group `json:"group"`
}

func (c *Client) group(ctx context.Context, method, path string, body any) (*models.Group, error) {
	var resp groupResponse
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Group, nil
}

func groupPath(id string, parts ...string) string {
	p := "/groups/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func (c *Client) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	return c.group(ctx, http.MethodPost, "/groups", in)
}

// MyGroups lists the caller's groups, falling back to demo data when enabled.
func (c *Client) MyGroups(ctx context.Context) ([]models.Group, error) {
	var resp struct {
		Groups []models.Group `json:"groups"`
	}
	err := c.do(ctx, http.MethodGet, "/groups/my", nil, &resp)
	if c.demo && errors.Is(err, ErrNetwork) {
		return DemoGroups(), nil
	}
	return resp.Groups, err
}

func (c *Client) Group(ctx context.Context, id string) (*models.Group, error) {
	return c.group(ctx, http.MethodGet, groupPath(id), nil)
}

func (c *Client) UpdateGroup(ctx context.Context, id string, in GroupInput) (*models.Group, error) {
	return c.group(ctx, http.MethodPut, groupPath(id), in)
}

func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, groupPath(id), nil, nil)
}

// JoinGroup joins by invite code; codes are case-insensitive.
func (c *Client) JoinGroup(ctx context.Context, inviteCode string) (*models.Group, error) {
	return c.group(ctx, http.MethodPost, "/groups/join/"+url.PathEscape(inviteCode), nil)
}

func (c *Client) Invite(ctx context.Context, groupID, email string) (*Invite, error) {
	var resp struct {
		Invite Invite `json:"invite"`
	}
	if err := c.do(ctx, http.MethodPost, groupPath(groupID, "invite"), map[string]string{"email": email}, &resp); err != nil {
		return nil, err
	}
	return &resp.Invite, nil
}

func (c *Client) Members(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	var resp struct {
		Members []models.GroupMember `json:"members"`
	}
	if err := c.do(ctx, http.MethodGet, groupPath(groupID, "members"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (c *Client) AddMember(ctx context.Context, groupID, userID string, role models.Role) (*models.Group, error) {
	body := map[string]string{"userId": userID, "role": string(role)}
	return c.group(ctx, http.MethodPost, groupPath(groupID, "add-member"), body)
}

func (c *Client) GroupFlashcards(ctx context.Context, groupID string) ([]models.Flashcard, error) {
	return c.flashcards(ctx, groupPath(groupID, "flashcards"))
}

func (c *Client) CreateGroupFlashcard(ctx context.Context, groupID string, in FlashcardInput) (*models.Flashcard, error) {
	return c.flashcard(ctx, http.MethodPost, groupPath(groupID, "flashcards"), in)
}

func (c *Client) GroupNotes(ctx context.Context, groupID string) ([]models.Note, error) {
	return c.notes(ctx, groupPath(groupID, "notes"))
}

func (c *Client) CreateGroupNote(ctx context.Context, groupID string, in NoteInput) (*models.Note, error) {
	return c.note(ctx, http.MethodPost, groupPath(groupID, "notes"), in)
}

func (c *Client) UpdateGroupNote(ctx context.Context, groupID, noteID string, in NoteInput) (*models.Note, error) {
	return c.note(ctx, http.MethodPut, groupPath(groupID, "notes", url.PathEscape(noteID)), in)
}

func (c *Client) DeleteGroupNote(ctx context.Context, groupID, noteID string) error {
	return c.do(ctx, http.MethodDelete, groupPath(groupID, "notes", url.PathEscape(noteID)), nil, nil)
}
