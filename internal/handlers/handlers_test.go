package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"charla/server/internal/accounts"
	"charla/server/internal/apperr"
	"charla/server/internal/chat"
	"charla/server/internal/models"
	ws "charla/server/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	registered []accounts.Registration
	photoBytes []byte
	err        error
}

func (f *fakeAccounts) Register(_ context.Context, reg accounts.Registration) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if reg.Photo == nil {
		return nil, apperr.Upload("No profile photo uploaded")
	}
	f.photoBytes, _ = io.ReadAll(reg.Photo)
	f.registered = append(f.registered, reg)
	return &models.User{ID: 7, Name: reg.Name, Email: reg.Email, Password: reg.Password, ProfilePhoto: "/uploads/x-" + reg.PhotoName}, nil
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if email == "ana@example.com" && password == "secreto" {
		return &models.User{ID: 1, Name: "Ana", Email: email, Password: password}, nil
	}
	return nil, apperr.ErrAuth
}

func (f *fakeAccounts) EmailExists(_ context.Context, email string) (bool, error) {
	return email == "ana@example.com", f.err
}

func (f *fakeAccounts) ListUsers(context.Context) ([]models.UserSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.UserSummary{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Ben"}}, nil
}

type fakeGroups struct {
	name    string
	photo   *string
	members []int64
}

func (f *fakeGroups) CreateGroup(_ context.Context, name string, photo *string, memberIDs []int64) (int64, error) {
	f.name, f.photo, f.members = name, photo, memberIDs
	return 42, nil
}

func (f *fakeGroups) GroupsForUser(_ context.Context, userID int64) ([]models.Group, error) {
	return []models.Group{{ID: 42, Name: "Team"}}, nil
}

type fakeHistory struct {
	pair  [2]int64
	group int64
	err   error
}

func (f *fakeHistory) FetchDirectHistory(_ context.Context, a, b int64) ([]models.EnrichedMessage, error) {
	f.pair = [2]int64{a, b}
	if f.err != nil {
		return nil, f.err
	}
	to := b
	return []models.EnrichedMessage{{
		Message:    models.Message{ID: 1, SenderID: a, RecipientID: &to, Content: "hola", Kind: models.KindText},
		SenderName: "Ana",
	}}, nil
}

func (f *fakeHistory) FetchGroupHistory(_ context.Context, groupID int64) ([]models.EnrichedMessage, error) {
	f.group = groupID
	return []models.EnrichedMessage{}, f.err
}

// fakeRouter validates like the real router and records what it accepted.
type fakeRouter struct {
	mu       sync.Mutex
	requests []chat.Request
	body     []byte
	err      error
}

func (f *fakeRouter) Dispatch(_ context.Context, req chat.Request) (*models.EnrichedMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if up, ok := req.(chat.Upload); ok {
		f.body, _ = io.ReadAll(up.File)
	}
	return &models.EnrichedMessage{Message: models.Message{ID: 99, Content: "ok"}, SenderName: "Ana"}, nil
}

type fakeBlobs struct {
	names []string
}

func (f *fakeBlobs) Put(_ context.Context, filename string, r io.Reader, _ int64) (string, error) {
	_, _ = io.ReadAll(r)
	f.names = append(f.names, filename)
	return "/uploads/1-abcdef12-" + filename, nil
}

type fixture struct {
	app      *fiber.App
	accounts *fakeAccounts
	groups   *fakeGroups
	history  *fakeHistory
	router   *fakeRouter
	blobs    *fakeBlobs
}

func newFixture() *fixture {
	f := &fixture{
		accounts: &fakeAccounts{},
		groups:   &fakeGroups{},
		history:  &fakeHistory{},
		router:   &fakeRouter{},
		blobs:    &fakeBlobs{},
	}
	h := &Handler{
		Accounts: f.accounts,
		Groups:   f.groups,
		History:  f.history,
		Router:   f.router,
		Blobs:    f.blobs,
		Hub:      ws.NewHub(),
	}

	app := fiber.New()
	app.Get("/api/health", h.Health)
	app.Post("/login", h.Login)
	app.Post("/register", h.Register)
	app.Post("/check-email", h.CheckEmail)
	app.Get("/users", h.GetUsers)
	app.Get("/groups", h.GetGroups)
	app.Post("/groups", h.CreateGroup)
	app.Get("/messages", h.GetMessages)
	app.Post("/messages", h.SendMessage)
	app.Get("/group-messages", h.GetGroupMessages)
	app.Post("/group-messages", h.SendGroupMessage)
	app.Post("/upload", h.UploadFile)
	app.Get("/ws", WebSocketUpgrade)
	app.Get("/ws/stats", h.GetWebSocketStats)
	f.app = app
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := f.app.Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	body := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type formFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	f := newFixture()
	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestLogin(t *testing.T) {
	f := newFixture()

	status, body := f.do(t, jsonRequest(http.MethodPost, "/login", `{"email":"ana@example.com","password":"secreto"}`))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Ana", user["name"])
	assert.NotContains(t, user, "password")

	status, body = f.do(t, jsonRequest(http.MethodPost, "/login", `{"email":"ana@example.com","password":"nope"}`))
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["message"])

	status, _ = f.do(t, jsonRequest(http.MethodPost, "/login", `{"email":`))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRegister(t *testing.T) {
	f := newFixture()

	req := multipartRequest(t, "/register",
		map[string]string{"name": "Ana", "email": "ana@example.com", "password": "secreto"},
		formFile{"profile_photo", "ana.png", "png-bytes"},
	)
	status, body := f.do(t, req)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	require.Len(t, f.accounts.registered, 1)
	assert.Equal(t, "ana.png", f.accounts.registered[0].PhotoName)
	assert.Equal(t, int64(len("png-bytes")), f.accounts.registered[0].PhotoSize)
	assert.Equal(t, "png-bytes", string(f.accounts.photoBytes))
}

func TestRegisterWithoutPhoto(t *testing.T) {
	f := newFixture()

	req := multipartRequest(t, "/register", map[string]string{"name": "Ana", "email": "ana@example.com", "password": "secreto"})
	status, body := f.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "No profile photo uploaded", body["error"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture()
	f.accounts.err = apperr.Duplicate("Email already registered")

	req := multipartRequest(t, "/register",
		map[string]string{"name": "Ana", "email": "ana@example.com", "password": "secreto"},
		formFile{"profile_photo", "ana.png", "png"},
	)
	status, body := f.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Email already registered", body["error"])
}

func TestCheckEmail(t *testing.T) {
	f := newFixture()

	_, body := f.do(t, jsonRequest(http.MethodPost, "/check-email", `{"email":"ana@example.com"}`))
	assert.Equal(t, true, body["exists"])

	_, body = f.do(t, jsonRequest(http.MethodPost, "/check-email", `{"email":"ben@example.com"}`))
	assert.Equal(t, false, body["exists"])

	status, _ := f.do(t, jsonRequest(http.MethodPost, "/check-email", `{}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetUsers(t *testing.T) {
	f := newFixture()

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/users", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var users []models.UserSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&users))
	assert.Len(t, users, 2)
}

func TestPersistenceFailureIsGeneric(t *testing.T) {
	f := newFixture()
	f.accounts.err = apperr.Persistence("list users", errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Internal server error", body["error"])
}

func TestResourceExhaustedIs503(t *testing.T) {
	f := newFixture()
	f.history.err = apperr.ErrResourceExhausted

	status, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/messages?userA=1&userB=2", nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestGetGroups(t *testing.T) {
	f := newFixture()

	status, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/groups?userId=3", nil))
	assert.Equal(t, fiber.StatusOK, status)

	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/groups", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "userId must be a positive integer", body["error"])
}

func TestCreateGroup(t *testing.T) {
	f := newFixture()

	req := multipartRequest(t, "/groups",
		map[string]string{"name": "Team", "member_ids": `[1, "2", 3]`},
		formFile{"group_photo", "team.jpg", "jpg"},
	)
	status, body := f.do(t, req)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 42, body["groupId"])

	assert.Equal(t, "Team", f.groups.name)
	assert.Equal(t, []int64{1, 2, 3}, f.groups.members)
	require.NotNil(t, f.groups.photo)
	assert.Equal(t, "/uploads/1-abcdef12-team.jpg", *f.groups.photo)
}

func TestCreateGroupWithoutPhoto(t *testing.T) {
	f := newFixture()

	req := multipartRequest(t, "/groups", map[string]string{"name": "Team", "member_ids": `[1,2]`})
	status, _ := f.do(t, req)
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, f.groups.photo)
	assert.Empty(t, f.blobs.names)
}

func TestCreateGroupValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"missing name":     {"member_ids": `[1]`},
		"members not json": {"name": "Team", "member_ids": "1,2"},
		"no members":       {"name": "Team", "member_ids": "[]"},
		"zero member":      {"name": "Team", "member_ids": "[0]"},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			status, _ := f.do(t, multipartRequest(t, "/groups", fields))
			assert.Equal(t, fiber.StatusBadRequest, status)
		})
	}
}

func TestGetMessages(t *testing.T) {
	f := newFixture()

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/messages?userA=1&userB=2", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var messages []models.EnrichedMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "hola", messages[0].Content)
	assert.Equal(t, "Ana", messages[0].SenderName)
	assert.Equal(t, [2]int64{1, 2}, f.history.pair)

	status, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/messages?userA=1", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetGroupMessages(t *testing.T) {
	f := newFixture()

	status, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/group-messages?groupId=5", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, int64(5), f.history.group)
}

func TestSendMessage(t *testing.T) {
	f := newFixture()

	status, body := f.do(t, jsonRequest(http.MethodPost, "/messages", `{"sender_id":"1","recipient_id":2,"content":"hola"}`))
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 99, body["id"])

	require.Len(t, f.router.requests, 1)
	assert.Equal(t, chat.DirectSend{From: chat.Identity{UserID: 1}, To: 2, Content: "hola"}, f.router.requests[0])
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture()

	status, body := f.do(t, jsonRequest(http.MethodPost, "/messages", `{"sender_id":1,"content":"hola"}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "recipient is required", body["error"])
	assert.Empty(t, f.router.requests)
}

func TestSendGroupMessage(t *testing.T) {
	f := newFixture()

	status, _ := f.do(t, jsonRequest(http.MethodPost, "/group-messages", `{"sender_id":1,"group_id":"4","content":"hi team"}`))
	require.Equal(t, fiber.StatusOK, status)

	require.Len(t, f.router.requests, 1)
	assert.Equal(t, chat.GroupSend{From: chat.Identity{UserID: 1}, Group: 4, Content: "hi team"}, f.router.requests[0])
}

func TestUploadFile(t *testing.T) {
	f := newFixture()

	req := multipartRequest(t, "/upload",
		map[string]string{"sender_id": "1", "recipient_id": "2"},
		formFile{"file", "photo.png", "png-bytes"},
	)
	status, _ := f.do(t, req)
	require.Equal(t, fiber.StatusOK, status)

	require.Len(t, f.router.requests, 1)
	up := f.router.requests[0].(chat.Upload)
	assert.Equal(t, int64(1), up.From.UserID)
	assert.Equal(t, int64(2), up.To)
	assert.Equal(t, int64(0), up.Group)
	assert.Equal(t, "photo.png", up.Filename)
	assert.Equal(t, "png-bytes", string(f.router.body))
}

func TestUploadWithoutFile(t *testing.T) {
	f := newFixture()

	req := multipartRequest(t, "/upload", map[string]string{"sender_id": "1", "recipient_id": "2"})
	status, body := f.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "No file uploaded", body["error"])
}

func TestUploadTargets(t *testing.T) {
	cases := map[string]map[string]string{
		"both":    {"sender_id": "1", "recipient_id": "2", "group_id": "3"},
		"neither": {"sender_id": "1"},
		"bad id":  {"sender_id": "1", "recipient_id": "two"},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			req := multipartRequest(t, "/upload", fields, formFile{"file", "a.pdf", "pdf"})
			status, _ := f.do(t, req)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Empty(t, f.router.requests)
		})
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	f := newFixture()
	status, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}

func TestWebSocketStats(t *testing.T) {
	f := newFixture()
	status, body := f.do(t, httptest.NewRequest(http.MethodGet, "/ws/stats", nil))
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 0, data["connections"])
}
