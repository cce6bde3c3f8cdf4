package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-access-control/internal/application"
	"github.com/oksasatya/go-access-control/internal/domain/entity"
	repo "github.com/oksasatya/go-access-control/internal/domain/repository"
	"github.com/oksasatya/go-access-control/internal/interface/middleware"
	"github.com/oksasatya/go-access-control/pkg/helpers"
	"github.com/oksasatya/go-access-control/pkg/validation"
)

const (
	aliceID = "11111111-1111-1111-1111-111111111111"
	adminID = "22222222-2222-2222-2222-222222222222"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type stubAuth struct {
	err    error
	res    *application.AuthResult
	client application.ClientInfo
}

func (s *stubAuth) Login(_ context.Context, creds application.Credentials, client application.ClientInfo) (*application.AuthResult, error) {
	s.client = client
	if s.err != nil {
		return nil, s.err
	}
	if creds.Password != "secret123" {
		return nil, application.ErrInvalidCredentials
	}
	return s.res, nil
}

type stubUsers struct {
	users map[string]entity.PublicUser
	err   error
}

func (s *stubUsers) Register(_ context.Context, in application.RegisterInput) (*entity.PublicUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Email == in.Email {
			return nil, repo.ErrDuplicateEmail
		}
	}
	u := entity.PublicUser{ID: fmt.Sprintf("id-%d", len(s.users)), Name: in.Name, Email: in.Email, Role: in.Role}
	s.users[u.ID] = u
	return &u, nil
}

func (s *stubUsers) GetPublic(_ context.Context, id string) (*entity.PublicUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, application.ErrUserNotFound
	}
	return &u, nil
}

func (s *stubUsers) List(context.Context) ([]entity.PublicUser, error) {
	out := make([]entity.PublicUser, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, s.err
}

type stubLogs struct {
	logs      []entity.AccessLog
	lastPage  application.Page
	lastUser  string
	searchErr error
	exportRes *application.ExportResult
	err       error
}

func (s *stubLogs) ListAll(_ context.Context, p application.Page) ([]entity.AccessLog, error) {
	s.lastPage = p
	return s.logs, s.err
}

func (s *stubLogs) ListByUser(_ context.Context, userID string, p application.Page) ([]entity.AccessLog, error) {
	s.lastUser, s.lastPage = userID, p
	return s.logs, s.err
}

func (s *stubLogs) Search(context.Context, string, int) ([]entity.AccessLog, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.logs, nil
}

func (s *stubLogs) Export(context.Context) (*application.ExportResult, error) {
	if s.exportRes == nil {
		return nil, application.ErrExportDisabled
	}
	return s.exportRes, nil
}

type testServer struct {
	engine *gin.Engine
	jwt    *helpers.JWTManager
	auth   *stubAuth
	users  *stubUsers
	logs   *stubLogs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		jwt: helpers.NewJWTManager("handler-secret", "handler-test", time.Hour),
		auth: &stubAuth{res: &application.AuthResult{
			Token:     "signed.jwt.token",
			ExpiresAt: time.Now().Add(time.Hour),
			User:      entity.PublicUser{ID: aliceID, Email: "a@x.com", Role: entity.RoleUser},
		}},
		users: &stubUsers{users: map[string]entity.PublicUser{
			aliceID: {ID: aliceID, Name: "Alice", Email: "a@x.com", Role: entity.RoleUser},
			adminID: {ID: adminID, Name: "Root", Email: "root@x.com", Role: entity.RoleAdmin},
		}},
		logs: &stubLogs{logs: []entity.AccessLog{{ID: "l1", UserID: aliceID, IPAddress: "1.1.1.1", Status: entity.AccessSuccess}}},
	}
	logger := helpers.NewDiscardLogger()
	ah := NewAuthHandler(ts.auth, logger, helpers.NewCookie("localhost", false))
	uh := NewUserHandler(ts.users, logger)
	lh := NewAccessLogHandler(ts.logs, logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP(false))
	api := r.Group("/api")
	api.POST("/auth/login", ah.Login)
	api.POST("/users", uh.Register)
	authed := api.Group("/", middleware.JWTAuth(ts.jwt))
	authed.GET("/profile", uh.Profile)
	authed.GET("/users/:id", uh.GetByID)
	authed.GET("/users", uh.List)
	authed.GET("/access-logs", lh.List)
	authed.GET("/access-logs/users/:id", lh.ListByUser)
	authed.GET("/access-logs/search", lh.Search)
	authed.POST("/access-logs/export", lh.Export)
	ts.engine = r
	return ts
}

func (ts *testServer) bearer(t *testing.T, id string, role entity.Role) string {
	t.Helper()
	tok, _, err := ts.jwt.GenerateAccessToken(helpers.TokenSubject{UserID: id, Email: id + "@x.com", Role: string(role)})
	require.NoError(t, err)
	return "Bearer " + tok
}

func (ts *testServer) do(method, path, body, authz string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("User-Agent", "handler-test")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)

	var res application.AuthResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "signed.jwt.token", res.Token)
	assert.Equal(t, aliceID, res.User.ID)
	assert.NotContains(t, string(env.Data), "password")

	cookie := w.Result().Cookies()
	require.Len(t, cookie, 1)
	assert.Equal(t, helpers.AccessTokenCookie, cookie[0].Name)
	assert.True(t, cookie[0].HttpOnly)

	assert.Equal(t, "handler-test", ts.auth.client.UserAgent)
	assert.NotEmpty(t, ts.auth.client.IPAddress)
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	ts := newTestServer(t)

	wrong := ts.do(http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"nope"}`, "")
	unknown := ts.do(http.MethodPost, "/api/auth/login", `{"email":"ghost@x.com","password":"x"}`, "")

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, decode(t, wrong).Message, decode(t, unknown).Message)
	assert.Equal(t, "invalid credentials", decode(t, wrong).Message)
	assert.Empty(t, wrong.Result().Cookies())
}

func TestLogin_BadPayload(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/login", `{"email":"not-an-email"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Contains(t, string(env.Error), `"email":"must be a valid email"`)
	assert.Contains(t, string(env.Error), `"password":"is required"`)

	w = ts.do(http.MethodPost, "/api/auth/login", `{`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_StorageDown(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.err = fmt.Errorf("find user: %w: dial tcp 10.0.0.5:5432: refused", repo.ErrStorageUnavailable)

	w := ts.do(http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"secret123"}`, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/users", `{"name":"Bob","email":"b@x.com","password":"longenough"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var u entity.PublicUser
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &u))
	assert.Equal(t, entity.RoleUser, u.Role)

	w = ts.do(http.MethodPost, "/api/users", `{"name":"Bob","email":"b@x.com","password":"longenough"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPost, "/api/users", `{"name":"Bob","email":"c@x.com","password":"short"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must be between 8 and 72 characters")
}

func TestProfileAndGetByID(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.bearer(t, aliceID, entity.RoleUser)
	admin := ts.bearer(t, adminID, entity.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/profile", "", "").Code)

	w := ts.do(http.MethodGet, "/api/profile", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"email":"a@x.com"`)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/users/"+aliceID, "", alice).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/api/users/"+adminID, "", alice).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/users/"+aliceID, "", admin).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/users/unknown", "", admin).Code)

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/api/users", "", alice).Code)
	w = ts.do(http.MethodGet, "/api/users", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
}

func TestAccessLogs(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.bearer(t, aliceID, entity.RoleUser)
	admin := ts.bearer(t, adminID, entity.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/access-logs", "", "").Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/api/access-logs", "", alice).Code)

	w := ts.do(http.MethodGet, "/api/access-logs?limit=10&offset=5", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, application.Page{Limit: 10, Offset: 5}, ts.logs.lastPage)
	var logs []entity.AccessLog
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "l1", logs[0].ID)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/access-logs?limit=-1", "", admin).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/access-logs?offset=2147483648", "", admin).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/access-logs?offset=4294967296", "", admin).Code)

	w = ts.do(http.MethodGet, "/api/access-logs/users/"+aliceID, "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, aliceID, ts.logs.lastUser)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/access-logs/users/not-a-uuid", "", admin).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/api/access-logs/users/"+aliceID, "", alice).Code)

	ts.logs.err = repo.ErrStorageUnavailable
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(http.MethodGet, "/api/access-logs", "", admin).Code)
}

func TestAccessLogSearchAndExport(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.bearer(t, adminID, entity.RoleAdmin)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/access-logs/search", "", admin).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/access-logs/search?q=ghost", "", admin).Code)

	ts.logs.searchErr = application.ErrSearchDisabled
	assert.Equal(t, http.StatusNotImplemented, ts.do(http.MethodGet, "/api/access-logs/search?q=ghost", "", admin).Code)

	assert.Equal(t, http.StatusNotImplemented, ts.do(http.MethodPost, "/api/access-logs/export", "", admin).Code)
	ts.logs.exportRes = &application.ExportResult{URL: "gs://b/o.ndjson", Count: 1}
	w := ts.do(http.MethodPost, "/api/access-logs/export", "", admin)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"url":"gs://b/o.ndjson"`)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{application.ErrInvalidCredentials, http.StatusUnauthorized},
		{application.ErrUnauthenticated, http.StatusUnauthorized},
		{application.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("create: %w", repo.ErrDuplicateEmail), http.StatusConflict},
		{application.ErrUserNotFound, http.StatusNotFound},
		{repo.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("x: %w", repo.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, msg := statusFor(tc.err)
		assert.Equal(t, tc.want, got, tc.err.Error())
		assert.NotEmpty(t, msg)
	}
}

func TestLogin_UnparseableRemoteAddr(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@x.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "@"
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unknown", ts.auth.client.IPAddress)
}
