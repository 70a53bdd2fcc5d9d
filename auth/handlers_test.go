package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/banconova-go/apperror"
	"github.com/user/banconova-go/config"
	"github.com/user/banconova-go/logging"
	"github.com/user/banconova-go/session"
)

type testEnv struct {
	handlers *Handlers
	store    *fakeStore
	verifier *fakeVerifier
	sessions *session.Manager
	memory   *session.MemoryStore
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	verifier := passingVerifier()
	svc := newTestService(store, verifier, &plainHasher{})
	memory := session.NewMemoryStore(nil)
	sessions := session.NewManager(memory, &config.SessionConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		CookieName: "banconova_session",
		TTL:        30 * time.Minute,
	}, nil)
	logger := logging.Discard()
	return &testEnv{
		handlers: NewHandlers(svc, sessions, apperror.NewWriter(logger, nil), logger),
		store:    store,
		verifier: verifier,
		sessions: sessions,
		memory:   memory,
	}
}

func (e *testEnv) post(t *testing.T, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, apperror.Result) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.9:51234"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handlers.HandleAuth().ServeHTTP(rec, req)

	var res apperror.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return rec, res
}

const registerBody = `{"accion":"registrar","username":"anaperez","firstName":"Ana","lastName":"Pérez",
"documentType":"CC","identity":"1020304050","fechaNacimiento":"1990-04-21","phone":"+57-3001234567",
"email":"ana@example.com","password":"s3guraClave","g-recaptcha-response":"tok"}`

func TestHandleAuthRejectsOtherMethods(t *testing.T) {
	env := newTestEnv()
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		env.handlers.HandleAuth().ServeHTTP(rec, httptest.NewRequest(method, "/login", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.JSONEq(t, `{"success":false,"message":"method not allowed"}`, rec.Body.String())
	}
}

func TestHandleAuthParseErrors(t *testing.T) {
	env := newTestEnv()
	tests := []struct {
		body string
		msg  string
	}{
		{`not json`, "invalid JSON"},
		{`["accion","login"]`, "invalid JSON"},
		{`{}`, "action not specified"},
		{`{"accion":" "}`, "action not specified"},
		{`{"accion":"borrar"}`, "action not recognized"},
	}
	for _, tc := range tests {
		rec, res := env.post(t, tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.body)
		assert.False(t, res.Success)
		assert.Equal(t, tc.msg, res.Message)
	}
}

func TestHandleAuthRejectsOversizedBody(t *testing.T) {
	env := newTestEnv()
	body := `{"accion":"login","username":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec, res := env.post(t, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON", res.Message)
}

func TestRegisterThenLoginThenLogout(t *testing.T) {
	env := newTestEnv()

	rec, res := env.post(t, registerBody)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, apperror.Result{Success: true, Message: "registration successful"}, res)
	assert.Equal(t, "203.0.113.9", env.verifier.lastIP)

	rec, res = env.post(t, registerBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "username or email already registered", res.Message)

	rec, res = env.post(t, `{"accion":"login","username":"anaperez","password":"s3guraClave"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, apperror.Result{Success: true, Message: "login successful"}, res)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "banconova_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, 1, env.memory.Len())

	load := httptest.NewRequest(http.MethodPost, "/dashboard", nil)
	load.AddCookie(cookie)
	s, err := env.sessions.Load(load.Context(), load)
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", s.Name)

	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logout.AddCookie(cookie)
	out := httptest.NewRecorder()
	env.handlers.HandleLogout().ServeHTTP(out, logout)
	assert.Equal(t, http.StatusOK, out.Code)
	assert.JSONEq(t, `{"success":true,"message":"logged out"}`, out.Body.String())
	assert.Equal(t, 0, env.memory.Len())
}

func TestLoginReplacesIncomingSession(t *testing.T) {
	env := newTestEnv()
	_, _ = env.post(t, registerBody)

	rec, _ := env.post(t, `{"accion":"login","username":"anaperez","password":"s3guraClave"}`)
	first := rec.Result().Cookies()[0]

	rec, _ = env.post(t, `{"accion":"login","username":"anaperez","password":"s3guraClave"}`, first)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.memory.Len())
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv()
	_, _ = env.post(t, registerBody)

	rec, res := env.post(t, `{"accion":"login","username":"anaperez","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid username or password", res.Message)
	assert.Empty(t, rec.Result().Cookies())

	rec, res = env.post(t, `{"accion":"login","username":"nadie","password":"s3guraClave"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid username or password", res.Message)

	rec, res = env.post(t, `{"accion":"login","username":"anaperez"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "credentials required", res.Message)
	assert.Contains(t, res.Errors, "password")
}

func TestRejectedRequestsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	env := newTestEnv()
	logger := logging.NewWithWriter(&buf, "info")
	env.handlers = NewHandlers(env.handlers.service, env.sessions, apperror.NewWriter(logger, nil), logger)

	_, _ = env.post(t, `{"accion":"login","username":"nadie","password":"s3guraClave"}`)
	_, _ = env.post(t, `{"accion":"registrar","g-recaptcha-response":"tok","username":"ana"}`)
	_, _ = env.post(t, registerBody)
	_, _ = env.post(t, registerBody)

	out := buf.String()
	assert.Contains(t, out, `"msg":"login rejected"`)
	assert.Contains(t, out, `"msg":"registration rejected"`)
	assert.Contains(t, out, `"msg":"registration conflict"`)
	assert.NotContains(t, out, "s3guraClave")
}

func TestRegisterValidationResponse(t *testing.T) {
	env := newTestEnv()
	rec, res := env.post(t, `{"accion":"registrar","g-recaptcha-response":"tok","username":"ana"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "all fields are required", res.Message)
	assert.Len(t, res.Errors, 8)
	assert.NotContains(t, res.Errors, "username")
	assert.Zero(t, env.store.existsCalls)
	assert.Zero(t, env.store.created)
}

func TestRegisterMissingFieldNeverWrites(t *testing.T) {
	for _, field := range []string{"firstName", "lastName", "documentType", "identity", "fechaNacimiento", "phone", "email", "password"} {
		t.Run(field, func(t *testing.T) {
			env := newTestEnv()
			var body map[string]any
			require.NoError(t, json.Unmarshal([]byte(registerBody), &body))
			delete(body, field)
			raw, err := json.Marshal(body)
			require.NoError(t, err)

			rec, res := env.post(t, string(raw))
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, "all fields are required", res.Message)
			assert.Equal(t, map[string]string{field: "this field is required"}, res.Errors)
			assert.Zero(t, env.store.created)
		})
	}
}

func TestRegisterSameUsernameOtherEmailConflicts(t *testing.T) {
	env := newTestEnv()
	rec, _ := env.post(t, registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, res := env.post(t, strings.Replace(registerBody, "ana@example.com", "otra@example.com", 1))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "username or email already registered", res.Message)
	assert.Equal(t, 1, env.store.created)
}

func TestRegisterCaptchaUnavailableResponse(t *testing.T) {
	env := newTestEnv()
	env.verifier.err = assert.AnError

	rec, res := env.post(t, registerBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "could not reach CAPTCHA service", res.Message)
	assert.Zero(t, env.store.created)
}

func TestHandleLogoutRejectsGet(t *testing.T) {
	env := newTestEnv()
	rec := httptest.NewRecorder()
	env.handlers.HandleLogout().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(r))
	r.RemoteAddr = "198.51.100.4"
	assert.Equal(t, "198.51.100.4", clientIP(r))
}
