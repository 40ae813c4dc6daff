package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
)

func TestRespondAPIErrorMapsDomainErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "validation", err: apperrors.Validation("companyId is required"), wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "regulation", err: apperrors.ErrRegulationNotFound, wantStatus: http.StatusNotFound, wantCode: "regulation_not_found"},
		{name: "not found", err: apperrors.NotFound("evaluation %s", "x"), wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "conflict", err: apperrors.Conflict("dup"), wantStatus: http.StatusConflict, wantCode: "conflict"},
		{name: "persistence", err: apperrors.Persistence("evaluation", errors.New("boom")), wantStatus: http.StatusInternalServerError, wantCode: "persistence_failed"},
		{name: "schema", err: &apperrors.SchemaError{Table: "evaluations", Role: "id"}, wantStatus: http.StatusInternalServerError, wantCode: "schema_mismatch"},
		{name: "other", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "fallback"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondAPIError(c, tc.err, "fallback")

			if rec.Code != tc.wantStatus {
				t.Fatalf("status: got=%d want=%d", rec.Code, tc.wantStatus)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.wantCode {
				t.Fatalf("code: got=%q want=%q", env.Error.Code, tc.wantCode)
			}
			if env.Error.Message == "" {
				t.Fatalf("expected message")
			}
		})
	}
}

func TestPersistenceMessageHidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondAPIError(c, apperrors.Persistence("evaluation", errors.New("pq: secret detail")), "x")

	var env ErrorEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Error.Message != "could not persist evaluation" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
	if len(c.Errors) != 1 {
		t.Fatalf("expected cause recorded on context")
	}
}
