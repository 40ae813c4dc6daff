package evaluation

import "github.com/google/uuid"

func newID() string { return uuid.NewString() }

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
