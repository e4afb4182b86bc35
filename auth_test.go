package main

import (
	"net/http"
	"testing"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc-123", "abc-123", true},
		{"Bearer   padded  ", "padded", true},
		{"Bearer ", "", false},
		{"bearer abc", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStatelessRoutes(t *testing.T) {
	router := setupPublicTest()

	w := doJSONRequest(router, "GET", "/health", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"database":false,"status":"ok"}` {
		t.Errorf("unexpected health response %d: %s", w.Code, w.Body.String())
	}

	// Login, profile and history need a database and are not registered.
	for _, route := range []struct{ method, path string }{
		{"POST", "/api/login"},
		{"GET", "/api/profile"},
		{"GET", "/api/analyses?start=2026-10-01&end=2026-10-17"},
		{"DELETE", "/api/analyses/1"},
	} {
		w := doJSONRequest(router, route.method, route.path, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", route.method, route.path, w.Code)
		}
	}
}
