package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"attendcal/internal/attendance"
	"attendcal/internal/auth"
	"attendcal/internal/handler"
)

const (
	testUsername = "admin"
	testPassword = "secret"
)

type fixture struct {
	router *gin.Engine
	store  *attendance.FileStore
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := attendance.NewFileStore(filepath.Join(t.TempDir(), "attendance.json"))
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	authn := auth.New(auth.Credentials{Username: testUsername, PasswordHash: hash}, "test-secret", time.Hour)

	r := gin.New()
	handler.New(store, authn, nil, zerolog.Nop()).Register(r)
	return &fixture{router: r, store: store}
}

func (f *fixture) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/login", `{"username":"admin","password":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == auth.CookieName {
			return ck
		}
	}
	t.Fatal("login response did not set session cookie")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLoginSuccess(t *testing.T) {
	f := setup(t)
	w := f.do(t, http.MethodPost, "/api/login", `{"username":"admin","password":"secret"}`)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["ok"])
	require.Equal(t, "admin", body["username"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := setup(t)
	cases := []string{
		`{"username":"admin","password":"nope"}`,
		`{"username":"intruder","password":"secret"}`,
		`{}`,
		``,
	}
	for _, body := range cases {
		w := f.do(t, http.MethodPost, "/api/login", body)
		require.Equal(t, http.StatusUnauthorized, w.Code, body)
		resp := decode(t, w)
		require.Equal(t, false, resp["ok"])
		// generic message, no hint about which field was wrong
		require.Equal(t, "invalid credentials", resp["message"])
	}
}

func TestSessionLifecycle(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, false, body["logged_in"])
	require.Nil(t, body["username"])

	ck := f.login(t)
	w = f.do(t, http.MethodGet, "/api/session", "", ck)
	body = decode(t, w)
	require.Equal(t, true, body["logged_in"])
	require.Equal(t, "admin", body["username"])

	w = f.do(t, http.MethodPost, "/api/logout", "", ck)
	require.Equal(t, http.StatusOK, w.Code)
	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)

	w = f.do(t, http.MethodGet, "/api/session", "", cleared)
	body = decode(t, w)
	require.Equal(t, false, body["logged_in"])
	require.Nil(t, body["username"])
}

func TestCalendarLeapYear(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/api/calendar?year=2024&month=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["ok"])
	require.Equal(t, float64(2024), body["year"])
	require.Len(t, body["days"], 29)

	w = f.do(t, http.MethodGet, "/api/calendar?year=2023&month=2", "")
	require.Len(t, decode(t, w)["days"], 28)
}

func TestCalendarDefaultsToCurrentMonth(t *testing.T) {
	f := setup(t)
	w := f.do(t, http.MethodGet, "/api/calendar", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	now := time.Now()
	require.Equal(t, float64(now.Year()), body["year"])
	require.Equal(t, float64(now.Month()), body["month"])
}

func TestCalendarInvalidParams(t *testing.T) {
	f := setup(t)
	for _, target := range []string{
		"/api/calendar?year=2024&month=13",
		"/api/calendar?year=2024&month=0",
		"/api/calendar?year=banana&month=2",
		"/api/calendar?year=2024&month=banana",
	} {
		w := f.do(t, http.MethodGet, target, "")
		require.Equal(t, http.StatusBadRequest, w.Code, target)
		body := decode(t, w)
		require.Equal(t, false, body["ok"])
		require.Equal(t, "invalid year/month", body["message"])
	}
}

func TestPostAttendanceRequiresSession(t *testing.T) {
	f := setup(t)
	w := f.do(t, http.MethodPost, "/api/attendance", `{"date":"2024-06-10","status":"present"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	start, end, err := attendance.MonthRange(2024, 6)
	require.NoError(t, err)
	got, err := f.store.GetRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Empty(t, got, "store must be untouched by rejected writes")
}

func TestPostAttendanceRoundTrip(t *testing.T) {
	f := setup(t)
	ck := f.login(t)

	w := f.do(t, http.MethodPost, "/api/attendance", `{"date":"2024-06-10","status":"present","reason":"sick"}`, ck)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["ok"])
	require.Equal(t, "2024-06-10", body["date"])
	require.Equal(t, "present", body["status"])
	require.Equal(t, "sick", body["reason"])

	w = f.do(t, http.MethodGet, "/api/calendar?year=2024&month=6", "")
	days := decode(t, w)["days"].([]any)
	day := days[9].(map[string]any)
	require.Equal(t, "2024-06-10", day["date"])
	require.Equal(t, "present", day["status"])
	require.Equal(t, "sick", day["reason"])

	// writing none removes the record from subsequent reads
	w = f.do(t, http.MethodPost, "/api/attendance", `{"date":"2024-06-10","status":"none"}`, ck)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/calendar?year=2024&month=6", "")
	days = decode(t, w)["days"].([]any)
	day = days[9].(map[string]any)
	require.Equal(t, "none", day["status"])
	require.Equal(t, "", day["reason"])
}

func TestPostAttendanceValidation(t *testing.T) {
	f := setup(t)
	ck := f.login(t)

	cases := []struct {
		body    string
		message string
	}{
		{`{"date":"June 10th","status":"present"}`, "invalid date"},
		{`{"status":"present"}`, "invalid date"},
		{`{"date":"2023-02-29","status":"present"}`, "invalid date"},
		{`{"date":"2024-06-10","status":"bogus"}`, "invalid status"},
		{`{"date":"2024-06-10","status":"Present"}`, "invalid status"},
	}
	for _, tc := range cases {
		w := f.do(t, http.MethodPost, "/api/attendance", tc.body, ck)
		require.Equal(t, http.StatusBadRequest, w.Code, tc.body)
		body := decode(t, w)
		require.Equal(t, false, body["ok"])
		require.Equal(t, tc.message, body["message"])
	}

	start, end, err := attendance.MonthRange(2024, 6)
	require.NoError(t, err)
	got, err := f.store.GetRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Empty(t, got, "invalid writes must not alter stored data")
}

func TestPostAttendanceOmittedStatusDeletes(t *testing.T) {
	f := setup(t)
	ck := f.login(t)

	w := f.do(t, http.MethodPost, "/api/attendance", `{"date":"2024-06-11","status":"exam","reason":"finals"}`, ck)
	require.Equal(t, http.StatusOK, w.Code)

	// absent status behaves as none, which deletes
	w = f.do(t, http.MethodPost, "/api/attendance", `{"date":"2024-06-11"}`, ck)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "none", decode(t, w)["status"])

	start, end, err := attendance.MonthRange(2024, 6)
	require.NoError(t, err)
	got, err := f.store.GetRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Empty(t, got)
}
