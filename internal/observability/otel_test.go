package observability

import (
	"context"
	"reflect"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		raw  string
		want map[string]string
	}{
		{raw: "", want: nil},
		{raw: "a=1", want: map[string]string{"a": "1"}},
		{raw: " a = 1 , b=2,broken,=x,c=", want: map[string]string{"a": "1", "b": "2"}},
		{raw: "k=v=w", want: map[string]string{"k": "v=w"}},
	}
	for _, tc := range tests {
		if got := ParseHeaders(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseHeaders(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestClampRatio(t *testing.T) {
	if clampRatio(-1) != 0 || clampRatio(2) != 1 || clampRatio(0.25) != 0.25 {
		t.Fatalf("clampRatio out of range")
	}
}

func TestStartSpanWithoutProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test")
	defer span.End()
	if ctx == nil {
		t.Fatalf("expected context")
	}
}
