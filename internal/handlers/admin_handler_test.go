package handlers_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/lumina/internal/handlers"
	"github.com/BradenHooton/lumina/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestResetSystem(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{"not the owner", models.ErrUnauthorized, 403, "forbidden"},
		{"interrupted", context.Canceled, 503, "unavailable"},
		{"store failure", errors.New("boom"), 500, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAdmin := &handlers.MockAdminService{
				ResetSystemFunc: func(ctx context.Context, actor *models.SessionProjection) error {
					return tt.err
				},
			}

			handler := handlers.NewAdminHandler(mockAdmin)
			w := httptest.NewRecorder()
			handler.ResetSystem(w, httptest.NewRequest("POST", "/admin/reset", nil))

			handlers.AssertErrorResponse(t, w, tt.expectedStatus, tt.expectedError)
		})
	}
}

func TestResetSystem_Success(t *testing.T) {
	var actorID string
	mockAdmin := &handlers.MockAdminService{
		ResetSystemFunc: func(ctx context.Context, actor *models.SessionProjection) error {
			actorID = actor.Identifier
			return nil
		},
	}

	handler := handlers.NewAdminHandler(mockAdmin)
	req := handlers.WithSession(httptest.NewRequest("POST", "/admin/reset", nil), "MWTINC", models.RoleAdmin)

	w := httptest.NewRecorder()
	handler.ResetSystem(w, req)

	var resp handlers.ResetResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.True(t, resp.Reset)
	assert.Equal(t, "MWTINC", actorID)
}
