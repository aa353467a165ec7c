package repository

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/emzola/bookform/internal/jsonlog"
)

type Repository interface {
	books
}

// Repository defines the app's repository layer. Records live behind the
// book API; the repository only speaks HTTP to it.
type repository struct {
	client  *http.Client
	baseURL *url.URL
	logger  *jsonlog.Logger
}

// New creates a new instance of Repository rooted at baseURL.
func New(client *http.Client, baseURL string, logger *jsonlog.Logger) (*repository, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse book API base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("book API base URL %q must be absolute", baseURL)
	}
	return &repository{client: client, baseURL: u, logger: logger}, nil
}
