package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/postureperfect/avatar-server/domain/entities"
	"github.com/postureperfect/avatar-server/internal/auth"
)

type fakePipeline struct {
	segments []entities.MessageSegment
	err      error
	calls    int
}

func (f *fakePipeline) Chat(ctx context.Context, userMessage string) (*entities.ChatResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if userMessage == "" {
		return &entities.ChatResponse{Messages: []entities.MessageSegment{}}, nil
	}
	return &entities.ChatResponse{Messages: f.segments}, nil
}

func (f *fakePipeline) ChatStream(ctx context.Context, userMessage string, emit func(entities.MessageSegment) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if userMessage == "" {
		return nil
	}
	for _, segment := range f.segments {
		if err := emit(segment); err != nil {
			return err
		}
	}
	return nil
}

type fakeUserRepo struct {
	byEmail map[string]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*entities.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entities.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return entities.ErrEmailTaken
	}
	user.ID = "user-1"
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return f.byEmail[email], nil
}

type fakeContactRepo struct {
	created []*entities.Contact
	err     error
}

func (f *fakeContactRepo) Create(ctx context.Context, contact *entities.Contact) error {
	if f.err != nil {
		return f.err
	}
	contact.ID = "contact-1"
	f.created = append(f.created, contact)
	return nil
}

func newTestServer(t *testing.T, pipeline ChatPipeline, users *fakeUserRepo, contacts *fakeContactRepo) *echo.Echo {
	t.Helper()
	e := echo.New()
	InitRoutes(e, pipeline, users, contacts, zaptest.NewLogger(t))
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChatEmptyMessageReturnsEmptyList(t *testing.T) {
	pipeline := &fakePipeline{}
	e := newTestServer(t, pipeline, newFakeUserRepo(), &fakeContactRepo{})

	rec := doJSON(e, http.MethodPost, "/chat", `{"message": ""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"messages": []}`, rec.Body.String())
}

func TestChatReturnsSegments(t *testing.T) {
	pipeline := &fakePipeline{segments: []entities.MessageSegment{
		{
			Text:             "Let's get moving!",
			Audio:            "bXAz",
			FacialExpression: "smile",
			Animation:        "Talking_0",
			Lipsync: entities.VisemeTimeline{
				MouthCues: []entities.MouthCue{{Start: 0, End: 0.4, Value: "A"}},
			},
		},
	}}
	e := newTestServer(t, pipeline, newFakeUserRepo(), &fakeContactRepo{})

	rec := doJSON(e, http.MethodPost, "/chat", `{"message": "let's train"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	require.Equal(t, "Let's get moving!", resp.Messages[0].Text)
	require.Equal(t, "smile", resp.Messages[0].FacialExpression)
}

func TestChatPipelineFailureIsOpaque500(t *testing.T) {
	pipeline := &fakePipeline{err: &entities.TranscodeError{Err: errors.New("ffmpeg exploded")}}
	e := newTestServer(t, pipeline, newFakeUserRepo(), &fakeContactRepo{})

	rec := doJSON(e, http.MethodPost, "/chat", `{"message": "hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error": "Internal Server Error"}`, rec.Body.String())
	require.NotContains(t, rec.Body.String(), "ffmpeg")
}

func TestSubmitContact(t *testing.T) {
	contacts := &fakeContactRepo{}
	e := newTestServer(t, &fakePipeline{}, newFakeUserRepo(), contacts)

	rec := doJSON(e, http.MethodPost, "/api/contact", `{"name": "Ada", "email": "ada@example.com", "message": "hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, contacts.created, 1)
	require.Equal(t, "Ada", contacts.created[0].Name)
}

func TestRegisterUser(t *testing.T) {
	users := newFakeUserRepo()
	e := newTestServer(t, &fakePipeline{}, users, &fakeContactRepo{})

	rec := doJSON(e, http.MethodPost, "/api/users", `{"email": "a@b.c", "password": "pw", "account": "basic"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	stored := users.byEmail["a@b.c"]
	require.NotNil(t, stored)
	require.NotEqual(t, "pw", stored.Password, "password must be hashed")
	require.True(t, auth.CheckPassword(stored.Password, "pw"))
}

func TestRegisterUserMissingFields(t *testing.T) {
	e := newTestServer(t, &fakePipeline{}, newFakeUserRepo(), &fakeContactRepo{})

	rec := doJSON(e, http.MethodPost, "/api/users", `{"email": "a@b.c"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "All fields are required")
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	e := newTestServer(t, &fakePipeline{}, users, &fakeContactRepo{})

	body := `{"email": "a@b.c", "password": "pw", "account": "basic"}`
	require.Equal(t, http.StatusCreated, doJSON(e, http.MethodPost, "/api/users", body).Code)

	rec := doJSON(e, http.MethodPost, "/api/users", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Email already exists")
}

func TestLogin(t *testing.T) {
	users := newFakeUserRepo()
	e := newTestServer(t, &fakePipeline{}, users, &fakeContactRepo{})

	require.Equal(t, http.StatusCreated,
		doJSON(e, http.MethodPost, "/api/users", `{"email": "a@b.c", "password": "pw", "account": "basic"}`).Code)

	rec := doJSON(e, http.MethodPost, "/api/login", `{"email": "a@b.c", "password": "pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Login successful", resp.Message)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "a@b.c", claims.Email)
}

func TestLoginInvalidCredentials(t *testing.T) {
	users := newFakeUserRepo()
	e := newTestServer(t, &fakePipeline{}, users, &fakeContactRepo{})

	require.Equal(t, http.StatusCreated,
		doJSON(e, http.MethodPost, "/api/users", `{"email": "a@b.c", "password": "pw", "account": "basic"}`).Code)

	rec := doJSON(e, http.MethodPost, "/api/login", `{"email": "a@b.c", "password": "nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/login", `{"email": "missing@b.c", "password": "pw"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
