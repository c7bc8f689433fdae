package vpn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPResolver asks an origin-echo endpoint which address the request came from.
type HTTPResolver struct {
	url    string
	client *http.Client
}

type ipPayload struct {
	Origin string `json:"origin"`
}

// NewHTTPResolver returns a resolver for url with a per-lookup timeout.
func NewHTTPResolver(url string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// PublicIP performs one lookup.
func (r *HTTPResolver) PublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("public ip lookup: unexpected status %s", resp.Status)
	}

	var payload ipPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&payload); err != nil {
		return "", fmt.Errorf("public ip lookup: %w", err)
	}
	if payload.Origin == "" {
		return "", errors.New("public ip lookup: empty origin")
	}
	return payload.Origin, nil
}
