// Package githubapi reads commit history from the GitHub REST API.
package githubapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/huangsam/githours/internal/contract"
)

const defaultHTTPTimeout = 30 * time.Second

// NewHTTPClient returns the HTTP client for the configured auth mode. GitHub
// App installation auth wins over a token; with neither, requests are anonymous.
func NewHTTPClient(cfg contract.GitHubConfig, base http.RoundTripper) (*http.Client, error) {
	if base == nil {
		base = http.DefaultTransport
	}
	if !cfg.UsesApp() {
		return &http.Client{Transport: base, Timeout: defaultHTTPTimeout}, nil
	}
	if strings.TrimSpace(cfg.PrivateKeyPath) == "" {
		return nil, fmt.Errorf("private key path is required")
	}

	transport, err := ghinstallation.NewKeyFromFile(base, cfg.AppID, cfg.InstallationID, cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("create github app transport: %w", err)
	}
	if cfg.APIURL != "" {
		transport.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.APIURL), "/")
	}
	return &http.Client{Transport: transport, Timeout: defaultHTTPTimeout}, nil
}

// NewRESTClient creates a go-github client with optional token auth and API
// base URL override.
func NewRESTClient(httpClient *http.Client, token, apiBaseURL string) (*github.Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	trimmed := strings.TrimSpace(apiBaseURL)
	if trimmed == "" {
		return client, nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse github api base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse github api base url: missing scheme or host")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	client.BaseURL = parsed
	return client, nil
}
