package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"client-vault/internal/http/middleware"
	apperrors "client-vault/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "not found", err: apperrors.NotFound("asset not found"), wantCode: http.StatusNotFound, wantMsg: "asset not found"},
		{name: "username taken", err: apperrors.UsernameTaken(), wantCode: http.StatusConflict, wantMsg: "username already exists"},
		{name: "email exists", err: apperrors.EmailExists(), wantCode: http.StatusConflict, wantMsg: "email already exists"},
		{name: "forbidden sentinel", err: apperrors.ErrForbidden, wantCode: http.StatusForbidden, wantMsg: "Forbidden"},
		{name: "echo error", err: echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), wantCode: http.StatusMethodNotAllowed, wantMsg: "nope"},
		{name: "internal hidden", err: apperrors.InternalServer("db password=hunter2 failed", errors.New("x")), wantCode: http.StatusInternalServerError, wantMsg: "Internal server error"},
		{name: "plain error", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			c.Set(middleware.RequestIDContextKey, "req-1")

			CustomHTTPErrorHandler(tt.err, c)

			require.Equal(t, tt.wantCode, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["error"])
			assert.Equal(t, "req-1", body["request_id"])
		})
	}
}
