package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/podiumpicks/podium-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"race not found", services.ErrRaceNotFound, http.StatusNotFound},
		{"prediction not found", services.ErrPredictionNotFound, http.StatusNotFound},
		{"nickname conflict", services.ErrUserNicknameConflict, http.StatusConflict},
		{"locked race", services.ErrPredictionLocked, http.StatusConflict},
		{"uploads disabled", services.ErrUploadsDisabled, http.StatusServiceUnavailable},
		{"duplicate riders", services.ErrPredictionSameRider, http.StatusBadRequest},
		{"inactive rider", services.ErrRiderInactive, http.StatusBadRequest},
		{"invalid invitation", services.ErrInvitationCodeInvalid, http.StatusBadRequest},
		{"bad credentials", services.ErrAuthInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(rec, req, tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"qatar"}`))
		var dst payload
		require.NoError(t, readJSON(httptest.NewRecorder(), req, &dst))
		assert.Equal(t, "qatar", dst.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bogus":1}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), req, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown key")
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var dst payload
		assert.EqualError(t, readJSON(httptest.NewRecorder(), req, &dst), "body must not be empty")
	})

	t.Run("two json values", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
		var dst payload
		assert.EqualError(t, readJSON(httptest.NewRecorder(), req, &dst), "body must only contain a single JSON value")
	})
}
