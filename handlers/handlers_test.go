package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/studysync/studysync-api/auth"
	"github.com/studysync/studysync-api/config"
	"github.com/studysync/studysync-api/handlers"
	"github.com/studysync/studysync-api/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testAPI struct {
	t       *testing.T
	server  *httptest.Server
	db      *gorm.DB
	handler *handlers.DBHandler
}

type apiUser struct {
	ID    uuid.UUID
	Token string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	auth.PasswordCost = bcrypt.MinCost

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := config.Open(sqlite.Open(dsn), logger.Discard)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	tokens := auth.NewTokenIssuer("test-secret", "studysync", "studysync-api", time.Hour)
	requireAuth, err := middleware.EnsureValidToken(tokens)
	require.NoError(t, err)

	h := handlers.NewDBHandler(db, tokens)
	router := chi.NewRouter()
	router.Mount("/api", h.Routes(requireAuth))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testAPI{t: t, server: server, db: db, handler: h}
}

// call sends a JSON request and decodes the JSON response into a generic map.
func (a *testAPI) call(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+"/api"+path, reader)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (a *testAPI) register(name, email string) apiUser {
	a.t.Helper()
	status, body := a.call(http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, status, body)
	user := body["user"].(map[string]any)
	return apiUser{ID: uuid.MustParse(user["id"].(string)), Token: body["token"].(string)}
}

func (a *testAPI) createSubject(u apiUser, name string, public bool) uuid.UUID {
	a.t.Helper()
	status, body := a.call(http.MethodPost, "/subjects", u.Token, map[string]any{"name": name, "isPublic": public})
	require.Equal(a.t, http.StatusCreated, status, body)
	return uuid.MustParse(body["subject"].(map[string]any)["id"].(string))
}

func (a *testAPI) createFlashcard(u apiUser, subject uuid.UUID, question string) map[string]any {
	a.t.Helper()
	status, body := a.call(http.MethodPost, "/flashcards", u.Token, map[string]any{
		"question": question, "answer": "answer", "subjectId": subject,
	})
	require.Equal(a.t, http.StatusCreated, status, body)
	return body["flashcard"].(map[string]any)
}

func (a *testAPI) createGroup(u apiUser, subject uuid.UUID, name string) map[string]any {
	a.t.Helper()
	status, body := a.call(http.MethodPost, "/groups", u.Token, map[string]any{"name": name, "subjectId": subject})
	require.Equal(a.t, http.StatusCreated, status, body)
	return body["group"].(map[string]any)
}

func (a *testAPI) count(model any, query string, args ...any) int64 {
	a.t.Helper()
	var n int64
	require.NoError(a.t, a.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
