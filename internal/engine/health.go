package engine

import (
	"context"
	"io"
	"net/http"
)

const maxHealthBody = 64 << 10

// HealthCheck queries the worker's health endpoint once and returns the body
// verbatim. An UnreachableError is expected while the model is loading;
// callers poll with their own backoff and deadline.
func (s *Supervisor) HealthCheck(ctx context.Context) (string, error) {
	return CheckHealth(ctx, s.httpClient, s.healthURL)
}

// CheckHealth is HealthCheck without a supervisor. A nil client uses
// http.DefaultClient.
func CheckHealth(ctx context.Context, client *http.Client, url string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &UnreachableError{URL: url, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &UnreachableError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxHealthBody))
	if err != nil {
		return "", &UnreachableError{URL: url, Err: err}
	}
	return string(b), nil
}
