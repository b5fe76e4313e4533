package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

func TestBuildRequestSetsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected method GET, got %s", r.Method)
		}
		if r.URL.Path != "/data.xml" {
			t.Errorf("expected path /data.xml, got %s", r.URL.Path)
		}
		if !strings.Contains(r.Header.Get("Accept"), "application/xml") {
			t.Errorf("expected xml accept header, got %q", r.Header.Get("Accept"))
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "pdu-exporter/") {
			t.Errorf("expected user agent, got %q", r.Header.Get("User-Agent"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := BuildRequest(context.Background(), server.URL+"/data.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed request: %v", err)
	}
	resp.Body.Close()
}

func TestBuildRequestRejectsBadURLs(t *testing.T) {
	cases := []string{"", "   ", "ftp://pdu/data.xml", "://nope"}
	for _, raw := range cases {
		_, err := BuildRequest(context.Background(), raw)
		if err == nil {
			t.Fatalf("expected error for %q", raw)
		}
		if !domain.IsKind(err, domain.KindInvalidConfig) {
			t.Fatalf("expected invalid_config for %q, got %v", raw, err)
		}
	}
}
