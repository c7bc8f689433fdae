package vpn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPResolver_PublicIP(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK, body: `{"origin": "203.0.113.7"}`, want: "203.0.113.7"},
		{name: "server error", status: http.StatusBadGateway, body: `{}`, wantErr: true},
		{name: "bad json", status: http.StatusOK, body: `<html>`, wantErr: true},
		{name: "empty origin", status: http.StatusOK, body: `{"origin": ""}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewHTTPResolver(srv.URL, time.Second).PublicIP(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("PublicIP() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PublicIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPResolver_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	if _, err := NewHTTPResolver(srv.URL, 50*time.Millisecond).PublicIP(context.Background()); err == nil {
		t.Error("PublicIP() should time out")
	}
}
