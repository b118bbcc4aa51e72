package selfupdate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewerVersion(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{"patch bump", "v1.2.3", "v1.2.4", true},
		{"minor bump", "1.2.3", "1.3.0", true},
		{"missing v prefix mixed", "1.2.3", "v1.2.4", true},
		{"same version", "v1.2.3", "v1.2.3", false},
		{"older release", "v2.0.0", "v1.9.9", false},
		{"garbage current", "not-a-version", "v1.0.0", false},
		{"garbage latest", "v1.0.0", "release-candidate", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newerVersion(tt.current, tt.latest); got != tt.want {
				t.Errorf("newerVersion(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}
}

func TestCheckFindsUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/abhisek/giasu/releases/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"tag_name": "v1.1.0", "html_url": "https://github.com/abhisek/giasu/releases/tag/v1.1.0"}`))
	}))
	defer srv.Close()

	c := NewChecker(WithBaseURL(srv.URL))
	result, err := c.Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !result.UpdateAvailable {
		t.Error("update not reported")
	}
	if result.LatestVersion != "v1.1.0" {
		t.Errorf("latest = %q", result.LatestVersion)
	}
}

func TestCheckDevBuildSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("dev build must not hit the API")
	}))
	defer srv.Close()

	c := NewChecker(WithBaseURL(srv.URL))
	result, err := c.Check(context.Background(), &CheckInput{Version: "(devel)"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.UpdateAvailable {
		t.Error("dev build reported an update")
	}
}

func TestCheckServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewChecker(WithBaseURL(srv.URL))
	if _, err := c.Check(context.Background(), &CheckInput{Version: "v1.0.0"}); err == nil {
		t.Fatal("expected error on HTTP 500")
	}
}
