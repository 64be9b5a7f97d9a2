package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhodessheriff/sheriffd/internal/audit"
	"github.com/rhodessheriff/sheriffd/internal/conf"
	"github.com/rhodessheriff/sheriffd/internal/logging"
	"github.com/rhodessheriff/sheriffd/internal/model"
	"github.com/rhodessheriff/sheriffd/internal/security"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

func newTestServer(t *testing.T) (*echo.Echo, *Controller) {
	t.Helper()

	settings := &conf.Settings{
		Security: conf.SecuritySettings{
			SessionTTL:   time.Hour,
			SweepEvery:   time.Hour,
			MinPasswords: 4,
		},
		Storage: conf.StorageSettings{
			DataFile: filepath.Join(t.TempDir(), "storage.json"),
		},
	}

	e := echo.New()
	s := store.New(settings.Storage.DataFile)
	sessions := security.NewSessionManager(settings.Security.SessionTTL, settings.Security.SweepEvery)
	recorder := audit.NewRecorder(s)

	c := New(e, s, settings, sessions, recorder,
		WithRequestLogger(logging.NewDiscardLogger("api")))
	return e, c
}

// doJSON performs a request against the test server. A non-empty token goes
// into the X-Session-Token header.
func doJSON(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(sessionTokenHeader, token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func login(t *testing.T, e *echo.Echo, username, password string) string {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())
	body := decodeBody(t, rec)
	token, _ := body["sessionToken"].(string)
	require.NotEmpty(t, token)
	return token
}

// createDeputy provisions an account through the API and returns a session
// token for it.
func createDeputy(t *testing.T, e *echo.Echo, sheriffToken, username string, rank model.Rank) string {
	t.Helper()
	rec := doJSON(t, e, http.MethodPost, "/api/users", sheriffToken, map[string]any{
		"username": username,
		"password": "geheim",
		"rank":     rank,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return login(t, e, username, "geheim")
}

func TestHealthIsPublic(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestLogin(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": store.SeedUsername,
		"password": store.SeedPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, store.SeedUsername, body["username"])
	assert.Equal(t, string(model.RankSheriff), body["rank"])
	assert.NotEmpty(t, body["sessionToken"])
	assert.NotContains(t, body, "password")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e, _ := newTestServer(t)

	// Wrong password and unknown user must be indistinguishable.
	for _, creds := range []map[string]string{
		{"username": store.SeedUsername, "password": "falsch"},
		{"username": "niemand", "password": "egal"},
	} {
		rec := doJSON(t, e, http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Ungültiger Benutzername oder Passwort", decodeBody(t, rec)["message"])
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/cases", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Kein Session-Token", decodeBody(t, rec)["message"])

	rec = doJSON(t, e, http.MethodGet, "/api/cases", "kein-echtes-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Session ungültig oder abgelaufen", decodeBody(t, rec)["message"])
}

func TestBearerTokenAccepted(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, store.SeedUsername, store.SeedPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, store.SeedUsername, store.SeedPassword)

	rec := doJSON(t, e, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/cases", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordRotatesToken(t *testing.T) {
	e, _ := newTestServer(t)
	oldToken := login(t, e, store.SeedUsername, store.SeedPassword)

	rec := doJSON(t, e, http.MethodPost, "/api/auth/change-password", oldToken, map[string]string{
		"newPassword": "neuesPasswort",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	newToken, _ := decodeBody(t, rec)["sessionToken"].(string)
	require.NotEmpty(t, newToken)
	assert.NotEqual(t, oldToken, newToken)

	// Old token is dead, new one works.
	rec = doJSON(t, e, http.MethodGet, "/api/cases", oldToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(t, e, http.MethodGet, "/api/cases", newToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Only the new password logs in.
	rec = doJSON(t, e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": store.SeedUsername, "password": store.SeedPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	login(t, e, store.SeedUsername, "neuesPasswort")
}

func TestChangePasswordEnforcesMinLength(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, store.SeedUsername, store.SeedPassword)

	rec := doJSON(t, e, http.MethodPost, "/api/auth/change-password", token, map[string]string{
		"newPassword": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The session survives a rejected change.
	rec = doJSON(t, e, http.MethodGet, "/api/cases", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOnlySheriffCreatesUsers(t *testing.T) {
	e, _ := newTestServer(t)
	sheriffToken := login(t, e, store.SeedUsername, store.SeedPassword)
	chiefToken := createDeputy(t, e, sheriffToken, "chief", model.RankChiefDeputy)

	rec := doJSON(t, e, http.MethodPost, "/api/users", chiefToken, map[string]any{
		"username": "neuling", "password": "geheim", "rank": model.RankTrainee,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Nur der Sheriff kann Benutzer anlegen", decodeBody(t, rec)["message"])
}

func TestUserListOmitsPasswords(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, store.SeedUsername, store.SeedPassword)

	rec := doJSON(t, e, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.NotEmpty(t, users)
	for _, u := range users {
		assert.NotContains(t, u, "password")
	}
}

func TestCaseStatusFlowRecordsAudit(t *testing.T) {
	e, c := newTestServer(t)
	token := login(t, e, store.SeedUsername, store.SeedPassword)

	rec := doJSON(t, e, http.MethodPost, "/api/cases", token, map[string]string{
		"caseNumber": "C-001",
		"personName": "Micah Bell",
		"crime":      "Mord",
		"status":     model.CaseStatusOpen,
		"handler":    store.SeedUsername,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	caseID, _ := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, caseID)

	rec = doJSON(t, e, http.MethodPatch, "/api/cases/"+caseID+"/status", token, map[string]string{
		"status": model.CaseStatusClosed,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, ok := c.Store.GetCase(caseID)
	require.True(t, ok)
	assert.Equal(t, model.CaseStatusClosed, stored.Status)

	var found bool
	for _, entry := range c.Store.AllAuditLogs() {
		if entry.Action == "Status geändert" && entry.EntityID == caseID {
			found = true
			assert.Equal(t, "Fallakte C-001 Status: offen → abgeschlossen", entry.Details)
			assert.Equal(t, store.SeedUsername, entry.Username)
		}
	}
	assert.True(t, found, "status change must land in the audit trail")
}

func TestDuplicateCaseNumberConflicts(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, store.SeedUsername, store.SeedPassword)

	payload := map[string]string{
		"caseNumber": "C-001", "personName": "A", "crime": "x",
		"status": model.CaseStatusOpen, "handler": store.SeedUsername,
	}
	rec := doJSON(t, e, http.MethodPost, "/api/cases", token, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/cases", token, payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateMissingCaseIs404(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, store.SeedUsername, store.SeedPassword)

	rec := doJSON(t, e, http.MethodPatch, "/api/cases/fehlt/status", token, map[string]string{
		"status": model.CaseStatusClosed,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Fallakte nicht gefunden", decodeBody(t, rec)["message"])
}

func TestTraineeCannotDelete(t *testing.T) {
	e, c := newTestServer(t)
	sheriffToken := login(t, e, store.SeedUsername, store.SeedPassword)
	traineeToken := createDeputy(t, e, sheriffToken, "neuling", model.RankTrainee)

	rec := doJSON(t, e, http.MethodPost, "/api/fines", traineeToken, map[string]any{
		"violation": "Zu schnelles Reiten", "amount": 15,
	})
	require.Equal(t, http.StatusOK, rec.Code, "any deputy may create fines")
	fineID, _ := decodeBody(t, rec)["id"].(string)

	rec = doJSON(t, e, http.MethodDelete, "/api/fines/"+fineID, traineeToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Keine Berechtigung", decodeBody(t, rec)["message"])

	_, ok := c.Store.GetFine(fineID)
	assert.True(t, ok, "denied delete must not remove the fine")

	// A rank with the delete permission succeeds.
	rec = doJSON(t, e, http.MethodDelete, "/api/fines/"+fineID, sheriffToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, ok = c.Store.GetFine(fineID)
	assert.False(t, ok)
}

func TestTaskAssignmentGated(t *testing.T) {
	e, _ := newTestServer(t)
	sheriffToken := login(t, e, store.SeedUsername, store.SeedPassword)
	traineeToken := createDeputy(t, e, sheriffToken, "neuling", model.RankTrainee)

	payload := map[string]string{
		"title": "Patrouille", "description": "Hauptstraße",
		"assignedTo": "neuling", "assignedBy": store.SeedUsername,
		"status": model.TaskStatusOpen,
	}

	rec := doJSON(t, e, http.MethodPost, "/api/tasks", traineeToken, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Keine Berechtigung zum Zuweisen von Aufgaben", decodeBody(t, rec)["message"])

	rec = doJSON(t, e, http.MethodPost, "/api/tasks", sheriffToken, payload)
	require.Equal(t, http.StatusOK, rec.Code)
	taskID, _ := decodeBody(t, rec)["id"].(string)

	// The assignee may work the task without assign rights.
	rec = doJSON(t, e, http.MethodPatch, "/api/tasks/"+taskID+"/status", traineeToken, map[string]string{
		"status": model.TaskStatusDone,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// But transferring it stays gated.
	rec = doJSON(t, e, http.MethodPatch, "/api/tasks/"+taskID+"/transfer", traineeToken, map[string]string{
		"assignedTo": store.SeedUsername,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLawsEditingGated(t *testing.T) {
	e, _ := newTestServer(t)
	sheriffToken := login(t, e, store.SeedUsername, store.SeedPassword)
	traineeToken := createDeputy(t, e, sheriffToken, "neuling", model.RankTrainee)

	// Empty placeholder before the first save.
	rec := doJSON(t, e, http.MethodGet, "/api/laws", traineeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decodeBody(t, rec)["content"])

	rec = doJSON(t, e, http.MethodPost, "/api/laws", traineeToken, map[string]string{"content": "§1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/laws", sheriffToken, map[string]string{"content": "§1 Kein Mord"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/laws", traineeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "§1 Kein Mord", body["content"])
	assert.Equal(t, store.SeedUsername, body["updatedBy"])
}

func TestWeaponStatusVocabularyEnforced(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, store.SeedUsername, store.SeedPassword)

	rec := doJSON(t, e, http.MethodPost, "/api/weapons", token, map[string]string{
		"serialNumber": "SN-1", "weaponType": "Revolver", "owner": "Arthur",
		"category": model.WeaponCategoryCitizen, "status": model.WeaponStatusRegistered,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	weaponID, _ := body["id"].(string)
	assert.Equal(t, store.SeedUsername, body["createdBy"])

	rec = doJSON(t, e, http.MethodPatch, "/api/weapons/"+weaponID+"/status", token, map[string]string{
		"status": model.WeaponStatusInLocker,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "service-weapon status on a citizen weapon")

	rec = doJSON(t, e, http.MethodPatch, "/api/weapons/"+weaponID+"/status", token, map[string]string{
		"status": model.WeaponStatusConfiscated,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserNotesArePrivate(t *testing.T) {
	e, _ := newTestServer(t)
	sheriffToken := login(t, e, store.SeedUsername, store.SeedPassword)
	traineeToken := createDeputy(t, e, sheriffToken, "neuling", model.RankTrainee)

	rec := doJSON(t, e, http.MethodPost, "/api/notes/user", sheriffToken, map[string]string{
		"content": "geheime Notiz",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	noteID, _ := decodeBody(t, rec)["id"].(string)

	// The other deputy sees an empty list and cannot touch the note.
	rec = doJSON(t, e, http.MethodGet, "/api/notes/user", traineeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = doJSON(t, e, http.MethodPatch, "/api/notes/user/"+noteID, traineeToken, map[string]string{
		"content": "gekapert",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/api/notes/user/"+noteID, traineeToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The owner still can.
	rec = doJSON(t, e, http.MethodPatch, "/api/notes/user/"+noteID, sheriffToken, map[string]string{
		"content": "aktualisiert",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardStats(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, store.SeedUsername, store.SeedPassword)

	for i, status := range []string{model.CaseStatusOpen, model.CaseStatusInProgress, model.CaseStatusClosed} {
		rec := doJSON(t, e, http.MethodPost, "/api/cases", token, map[string]string{
			"caseNumber": "C-00" + string(rune('1'+i)), "personName": "A", "crime": "x",
			"status": status, "handler": store.SeedUsername,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, e, http.MethodPost, "/api/jail", token, map[string]any{
		"personName": "Micah Bell", "crime": "Mord", "durationMinutes": 30,
		"startTime": time.Now().Format(time.RFC3339), "handler": store.SeedUsername,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, e, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.InDelta(t, 2, body["activeCases"], 0)
	assert.InDelta(t, 1, body["currentInmates"], 0)
	assert.InDelta(t, 0, body["registeredWeapons"], 0)
}

func TestRecentAuditCapped(t *testing.T) {
	e, _ := newTestServer(t)
	token := login(t, e, store.SeedUsername, store.SeedPassword)

	for i := 0; i < 12; i++ {
		rec := doJSON(t, e, http.MethodPost, "/api/fines", token, map[string]any{
			"violation": "Verstoß", "amount": i,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, e, http.MethodGet, "/api/audit/recent", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	assert.Len(t, logs, recentAuditLimit)
}

func TestErrorResponseCarriesCorrelationID(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(t, e, http.MethodGet, "/api/cases", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeBody(t, rec)
	id, _ := body["correlation_id"].(string)
	assert.Len(t, strings.TrimSpace(id), 8)
}
