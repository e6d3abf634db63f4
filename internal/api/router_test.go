package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conexahub/conexa/internal/app"
	iauth "github.com/conexahub/conexa/internal/auth"
	"github.com/conexahub/conexa/internal/database/testutil"
	"github.com/conexahub/conexa/pkg/mail"
)

const testAdminToken = "hunter2"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret: "router-test-secret",
		Issuer: "conexa-test",
	})
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Auth.AdminToken = testAdminToken
	cfg.Registration.BaseURL = "https://app.conexa.test"

	router, err := NewRouter(db, jwtSvc, cfg, mail.NewConsoleMailer(zap.NewNop()))
	require.NoError(t, err)
	return router
}

type envelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var env envelope
	if recorder.Body.Len() > 0 {
		_ = json.Unmarshal(recorder.Body.Bytes(), &env)
	}
	return recorder, env
}

func adminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminToken}
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestOnboardingFlow(t *testing.T) {
	router := newTestRouter(t)

	// A visitor submits an intention.
	rec, env := doRequest(t, router, http.MethodPost, "/api/intentions", gin.H{
		"name":    "Ana Lima",
		"email":   "ana@example.com",
		"company": "Lima Consulting",
		"reason":  "Grow my network",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)

	intention := env.Data["intention"].(map[string]any)
	intentionID := intention["id"].(string)
	require.Equal(t, "PENDING", intention["status"])

	// Admin routes stay locked without the shared secret.
	rec, _ = doRequest(t, router, http.MethodGet, "/api/admin/intentions", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The admin reviews and approves the intention.
	rec, env = doRequest(t, router, http.MethodGet, "/api/admin/intentions?status=pending", nil, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.Data["intentions"], 1)

	rec, env = doRequest(t, router, http.MethodPatch, "/api/admin/intentions/"+intentionID+"/approve", nil, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)

	link := env.Data["registration_link"].(string)
	require.Contains(t, link, "https://app.conexa.test/register/")
	token := link[strings.LastIndex(link, "/")+1:]
	require.NotEmpty(t, token)

	// The registration link can be validated before use.
	rec, env = doRequest(t, router, http.MethodGet, "/api/intentions/validate/"+token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	// The invitee completes registration through the one-time link.
	profile := gin.H{
		"phone":      "+55 11 99999-0000",
		"profession": "Consultant",
		"segment":    "Consulting",
	}
	rec, env = doRequest(t, router, http.MethodPost, "/api/members/register/"+token, profile, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	member := env.Data["member"].(map[string]any)
	memberID := member["id"].(string)

	// The link cannot be replayed.
	rec, _ = doRequest(t, router, http.MethodPost, "/api/members/register/"+token, profile, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = doRequest(t, router, http.MethodGet, "/api/intentions/validate/"+token, nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	// The member logs in with their approved email.
	rec, env = doRequest(t, router, http.MethodPost, "/api/members/login", gin.H{"email": "ana@example.com"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sessionToken := env.Data["token"].(string)
	require.NotEmpty(t, sessionToken)
	require.Equal(t, false, env.Data["needs_completion"])

	// Member routes require the session token.
	rec, _ = doRequest(t, router, http.MethodGet, "/api/announcements", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = doRequest(t, router, http.MethodGet, "/api/announcements", nil, bearer(sessionToken))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	// The new member appears in the public directory.
	rec, env = doRequest(t, router, http.MethodGet, "/api/members/public/list", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	members := env.Data["members"].([]any)
	require.Len(t, members, 1)
	listed := members[0].(map[string]any)
	require.Equal(t, memberID, listed["id"])
	require.Equal(t, "Ana Lima", listed["name"])
	_, exposed := listed["email"]
	require.False(t, exposed)
}

func TestMemberRoutesEnforceOwnership(t *testing.T) {
	router := newTestRouter(t)

	// Onboard a member.
	_, env := doRequest(t, router, http.MethodPost, "/api/intentions", gin.H{
		"name":    "Bruno Costa",
		"email":   "bruno@example.com",
		"company": "Costa Legal",
		"reason":  "Referrals",
	}, nil)
	intentionID := env.Data["intention"].(map[string]any)["id"].(string)

	_, env = doRequest(t, router, http.MethodPatch, "/api/admin/intentions/"+intentionID+"/approve", nil, adminHeaders())
	link := env.Data["registration_link"].(string)
	token := link[strings.LastIndex(link, "/")+1:]

	rec, env := doRequest(t, router, http.MethodPost, "/api/members/register/"+token, gin.H{
		"phone":      "+55 21 98888-0000",
		"profession": "Lawyer",
		"segment":    "Legal",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	memberID := env.Data["member"].(map[string]any)["id"].(string)

	_, env = doRequest(t, router, http.MethodPost, "/api/members/login", gin.H{"email": "bruno@example.com"}, nil)
	sessionToken := env.Data["token"].(string)

	// Editing another member's profile is refused.
	rec, _ = doRequest(t, router, http.MethodPost, "/api/members/other-id/complete-profile", gin.H{
		"phone":      "+55 21 97777-0000",
		"profession": "Lawyer",
		"segment":    "Legal",
	}, bearer(sessionToken))
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Editing their own profile works.
	rec, env = doRequest(t, router, http.MethodPost, "/api/members/"+memberID+"/complete-profile", gin.H{
		"phone":      "+55 21 97777-0000",
		"profession": "Lawyer",
		"segment":    "Legal",
		"linkedin":   "https://linkedin.com/in/brunocosta",
	}, bearer(sessionToken))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://linkedin.com/in/brunocosta", env.Data["member"].(map[string]any)["linkedin"])
}

func TestAdminDashboardAndHealth(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := doRequest(t, router, http.MethodGet, "/api/admin/dashboard", nil, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
	require.Contains(t, env.Data, "stats")

	rec, env = doRequest(t, router, http.MethodGet, "/api/nope", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, env.Success)
}
