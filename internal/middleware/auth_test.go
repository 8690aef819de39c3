package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenPassthrough(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", ""},
		{"bearer token", "Bearer tok123", "tok123"},
		{"case insensitive scheme", "bearer tok123", "tok123"},
		{"bare token", "tok123", "tok123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := TokenPassthrough()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetAuthToken(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/query", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnverifiedSubject(t *testing.T) {
	// Header/payload {"alg":"HS256","typ":"JWT"} {"sub":"user-1"}, signature irrelevant.
	jwtToken := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJ1c2VyLTEifQ.x"

	if got := unverifiedSubject(jwtToken); got != "user-1" {
		t.Errorf("subject = %q, want user-1", got)
	}
	if got := unverifiedSubject("opaque-token"); got != "" {
		t.Errorf("opaque token subject = %q, want empty", got)
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery(""); err == nil {
		t.Error("empty query should be rejected")
	}
	if err := ValidateQuery("best pizza"); err != nil {
		t.Errorf("valid query rejected: %v", err)
	}
	if err := ValidateQuery(string(make([]byte, 10001))); err == nil {
		t.Error("oversized query should be rejected")
	}
}
