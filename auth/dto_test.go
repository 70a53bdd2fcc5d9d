package auth

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Request
		wantErr error
	}{
		{"empty body", ``, nil, ErrInvalidJSON},
		{"array body", `[1,2]`, nil, ErrInvalidJSON},
		{"null body", `null`, nil, ErrInvalidJSON},
		{"broken json", `{"accion":`, nil, ErrInvalidJSON},
		{"nested object field", `{"accion":"login","username":{"a":1}}`, nil, ErrInvalidJSON},
		{"missing accion", `{"username":"ana"}`, nil, ErrActionMissing},
		{"blank accion", `{"accion":"   "}`, nil, ErrActionMissing},
		{"unknown accion", `{"accion":"transferir"}`, nil, ErrActionNotAllowed},
		{
			"login", `{"accion":" login ","username":"anaperez","password":"s3guraClave"}`,
			LoginRequest{Accion: "login", Username: "anaperez", Password: "s3guraClave"}, nil,
		},
		{
			"register with numeric fields",
			`{"accion":"registrar","username":"anaperez","identity":1020304050,"phone":3001234567,"g-recaptcha-response":"tok","fechaNacimiento":"1990-04-21"}`,
			RegisterRequest{
				Accion: "registrar", Username: "anaperez", Identity: "1020304050",
				Phone: "3001234567", CaptchaResponse: "tok", BirthDate: "1990-04-21",
			}, nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeRequest([]byte(tc.body))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRequestsRedactSecretsInLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Debug("decoded", "request", RegisterRequest{Username: "anaperez", Password: "hunter2222", CaptchaResponse: "tok-secret"})
	logger.Debug("decoded", "request", LoginRequest{Username: "anaperez", Password: "hunter3333"})

	out := buf.String()
	assert.Contains(t, out, "anaperez")
	assert.NotContains(t, out, "hunter2222")
	assert.NotContains(t, out, "hunter3333")
	assert.NotContains(t, out, "tok-secret")
	assert.Contains(t, out, "[REDACTED]")
}
