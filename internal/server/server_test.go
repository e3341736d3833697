package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"kevdhev/personal-finance-api/internal/api/controller"
	"kevdhev/personal-finance-api/internal/api/repository"
	"kevdhev/personal-finance-api/internal/api/service"
	"kevdhev/personal-finance-api/internal/auth"
	"kevdhev/personal-finance-api/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pool, err := db.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.InitSchema(pool))
	t.Cleanup(func() { pool.Close() })

	tokens := auth.NewTokenIssuer([]byte("test-secret"), 30*time.Minute)
	userService := service.NewUserService(repository.NewUserRepository(pool), tokens)
	movementService := service.NewMovementService(repository.NewMovementRepository(pool))

	srv := NewServer(tokens, userService,
		controller.NewUserController(userService),
		controller.NewMovementController(movementService),
	)
	return srv.Engine()
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, engine *gin.Engine, username string) string {
	t.Helper()

	body := fmt.Sprintf(`{"username": %q, "email": %q, "password": "Str0ngP@ss"}`,
		username, username+"@example.com")
	rec := doJSON(t, engine, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	form := url.Values{"username": {username}, "password": {"Str0ngP@ss"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginRec := httptest.NewRecorder()
	engine.ServeHTTP(loginRec, req)
	require.Equal(t, http.StatusOK, loginRec.Code, loginRec.Body.String())

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &token))
	require.Equal(t, "bearer", token.TokenType)
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func createMovement(t *testing.T, engine *gin.Engine, token, body string) map[string]any {
	t.Helper()

	rec := doJSON(t, engine, http.MethodPost, "/movements", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var movement map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movement))
	return movement
}

func TestRegisterValidation(t *testing.T) {
	engine := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "short username", body: `{"username":"jd","email":"jd@example.com","password":"Str0ngP@ss"}`},
		{name: "bad email", body: `{"username":"john_doe","email":"nope","password":"Str0ngP@ss"}`},
		{name: "short password", body: `{"username":"john_doe","email":"jd@example.com","password":"S@1x"}`},
		{name: "password without digit", body: `{"username":"john_doe","email":"jd@example.com","password":"Strong@Pass"}`},
		{name: "password without symbol", body: `{"username":"john_doe","email":"jd@example.com","password":"Strong1Pass"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, engine, http.MethodPost, "/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	engine := newTestServer(t)

	body := `{"username":"john_doe","email":"jd@example.com","password":"Str0ngP@ss"}`
	rec := doJSON(t, engine, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The public view never includes the password or its hash.
	assert.NotContains(t, rec.Body.String(), "password")

	rec = doJSON(t, engine, http.MethodPost, "/register", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already registered")
}

func TestLoginBadCredentials(t *testing.T) {
	engine := newTestServer(t)
	registerAndLogin(t, engine, "john_doe")

	form := url.Values{"username": {"john_doe"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestMovementsRequireToken(t *testing.T) {
	engine := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "garbage token", token: "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, engine, http.MethodGet, "/movements", tt.token, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	engine := newTestServer(t)
	registerAndLogin(t, engine, "john_doe")

	expired, err := auth.NewTokenIssuer([]byte("test-secret"), time.Minute).
		IssueWithTTL("john_doe", -time.Minute)
	require.NoError(t, err)

	rec := doJSON(t, engine, http.MethodGet, "/movements", expired, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestTokenForDeletedSubjectRejected(t *testing.T) {
	engine := newTestServer(t)

	// Valid signature, but the subject was never registered.
	token, err := auth.NewTokenIssuer([]byte("test-secret"), time.Minute).Issue("ghost")
	require.NoError(t, err)

	rec := doJSON(t, engine, http.MethodGet, "/movements", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMovementLifecycle(t *testing.T) {
	engine := newTestServer(t)
	token := registerAndLogin(t, engine, "john_doe")

	created := createMovement(t, engine, token,
		`{"amount": 100.00, "type": "income", "description": "salary", "date": "2024-03-10T12:00:00Z"}`)
	id := int64(created["id"].(float64))
	createMovement(t, engine, token,
		`{"amount": 40.00, "type": "expense", "date": "2024-03-10T15:00:00Z"}`)

	// Summary: income 100, expense 40, balance 60.
	rec := doJSON(t, engine, http.MethodGet, "/movements/summary", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		TotalIncome  float64 `json:"total_income"`
		TotalExpense float64 `json:"total_expense"`
		Balance      float64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 100.00, summary.TotalIncome)
	assert.Equal(t, 40.00, summary.TotalExpense)
	assert.Equal(t, 60.00, summary.Balance)

	// Type filter excludes the expense row.
	rec = doJSON(t, engine, http.MethodGet, "/movements?movement_type=income", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "income", list[0]["type"])

	// Partial update changes only the description.
	rec = doJSON(t, engine, http.MethodPut, fmt.Sprintf("/movements/%d", id), token,
		`{"description": "rent"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "rent", updated["description"])
	assert.Equal(t, 100.00, updated["amount"])
	assert.Equal(t, "income", updated["type"])

	// Get, delete, then the id is gone.
	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/movements/%d", id), token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/movements/%d", id), token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, engine, http.MethodDelete, fmt.Sprintf("/movements/%d", id), token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/movements/%d", id), token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCrossOwnerAccessIsNotFound(t *testing.T) {
	engine := newTestServer(t)
	aliceToken := registerAndLogin(t, engine, "alice")
	bobToken := registerAndLogin(t, engine, "bob")

	created := createMovement(t, engine, aliceToken, `{"amount": 50, "type": "expense"}`)
	id := int64(created["id"].(float64))

	paths := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, fmt.Sprintf("/movements/%d", id), ""},
		{http.MethodPut, fmt.Sprintf("/movements/%d", id), `{"amount": 1}`},
		{http.MethodDelete, fmt.Sprintf("/movements/%d", id), ""},
	}
	for _, p := range paths {
		rec := doJSON(t, engine, p.method, p.path, bobToken, p.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", p.method, p.path)
	}

	// Bob's listing does not include Alice's movement.
	rec := doJSON(t, engine, http.MethodGet, "/movements", bobToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListValidation(t *testing.T) {
	engine := newTestServer(t)
	token := registerAndLogin(t, engine, "john_doe")

	tests := []struct {
		name string
		path string
	}{
		{name: "start after end", path: "/movements?start_date=2024-03-10&end_date=2024-03-01"},
		{name: "bad movement_type", path: "/movements?movement_type=transfer"},
		{name: "bad start_date", path: "/movements?start_date=10-03-2024"},
		{name: "bad skip", path: "/movements?skip=abc"},
		{name: "summary start after end", path: "/movements/summary?start_date=2024-03-10&end_date=2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, engine, http.MethodGet, tt.path, token, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestListDateWindow(t *testing.T) {
	engine := newTestServer(t)
	token := registerAndLogin(t, engine, "john_doe")

	createMovement(t, engine, token, `{"amount": 10, "type": "income", "date": "2024-03-01T09:00:00Z"}`)
	createMovement(t, engine, token, `{"amount": 20, "type": "income", "date": "2024-03-05T23:30:00Z"}`)
	createMovement(t, engine, token, `{"amount": 30, "type": "income", "date": "2024-03-09T00:00:00Z"}`)

	// Both bounds inclusive; the end day is covered in full.
	rec := doJSON(t, engine, http.MethodGet, "/movements?start_date=2024-03-05&end_date=2024-03-05", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 20.0, list[0]["amount"])
}

func TestCreateMovementValidation(t *testing.T) {
	engine := newTestServer(t)
	token := registerAndLogin(t, engine, "john_doe")

	tests := []struct {
		name string
		body string
	}{
		{name: "non-positive amount", body: `{"amount": 0, "type": "income"}`},
		{name: "negative amount", body: `{"amount": -5, "type": "expense"}`},
		{name: "bad type", body: `{"amount": 5, "type": "transfer"}`},
		{name: "missing type", body: `{"amount": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, engine, http.MethodPost, "/movements", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	engine := newTestServer(t)

	rec := doJSON(t, engine, http.MethodPost, "/register", "",
		`{"username":"john_doe","email":"jd@example.com","password":"Str0ngP@ss"}`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
