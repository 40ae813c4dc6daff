package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsCredentials(t *testing.T) {
	kv := sanitizeKVs([]interface{}{
		"email", "ana@example.com",
		"password", "hunter2",
		"access_token", "abc",
		"regulation", "GDPR",
		"company_id", "c-1",
		"user_id", "u-1",
	})
	got := map[string]interface{}{}
	for i := 0; i+1 < len(kv); i += 2 {
		got[kv[i].(string)] = kv[i+1]
	}

	for _, k := range []string{"email", "password", "access_token"} {
		if got[k] != "[REDACTED]" {
			t.Fatalf("%s: expected redaction, got %v", k, got[k])
		}
	}
	if got["regulation"] != "GDPR" || got["company_id"] != "c-1" {
		t.Fatalf("domain fields must pass through, got %v", got)
	}
	if s, _ := got["user_id"].(string); !strings.HasPrefix(s, "hash:") {
		t.Fatalf("user_id: expected hash, got %v", got["user_id"])
	}
}

func TestSanitizeValueRedactsBearerTokens(t *testing.T) {
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	if got := sanitizeValue("detail", jwt); got != "[REDACTED]" {
		t.Fatalf("expected JWT-looking value to be redacted, got %v", got)
	}
	if got := sanitizeValue("detail", "plain"); got != "plain" {
		t.Fatalf("plain value changed: %v", got)
	}
}
