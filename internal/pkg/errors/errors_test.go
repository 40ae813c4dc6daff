package errors

import (
	"errors"
	"testing"
)

func TestTaggedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		err  error
		kind error
		msg  string
	}{
		{err: Validation(" companyId is required "), kind: ErrValidation, msg: "companyId is required"},
		{err: NotFound("evaluation %s", "e1"), kind: ErrNotFound, msg: "evaluation e1"},
		{err: Conflict("key %q exists", "GDPR-01"), kind: ErrConflict, msg: `key "GDPR-01" exists`},
	}
	for _, tc := range tests {
		if !errors.Is(tc.err, tc.kind) {
			t.Fatalf("%v does not match %v", tc.err, tc.kind)
		}
		if tc.err.Error() != tc.msg {
			t.Fatalf("message: got=%q want=%q", tc.err.Error(), tc.msg)
		}
	}
}

func TestRegulationNotFoundIsNotFound(t *testing.T) {
	if !errors.Is(ErrRegulationNotFound, ErrNotFound) {
		t.Fatalf("expected regulation not found to match ErrNotFound")
	}
}

func TestPersistenceErrorHidesCause(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := Persistence("evaluation", cause)
	if err.Error() != "could not persist evaluation" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, cause) {
		t.Fatalf("expected sentinel and cause reachable")
	}
}

func TestSchemaErrorMessage(t *testing.T) {
	err := &SchemaError{Table: "evaluations", Role: "id", Candidates: []string{"id", "evaluation_id"}}
	want := `schema: table "evaluations" has no column for role "id" (tried id, evaluation_id)`
	if err.Error() != want {
		t.Fatalf("got %q", err.Error())
	}
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema")
	}
}
