package database

import (
	"context"
	"fmt"
	"net/url"

	"TrackingServer/internal/model"
)

// Service represents an external record store that accepts tracking rows.
type Service interface {
	// Inserts one row into the visitor tracking table
	InsertTracking(ctx context.Context, record model.TrackingRecord) error

	// Close releases any connection held by the store.
	Close() error
}

// New picks a store backend from the scheme of the configured url.
// http(s) urls talk to a PostgREST api, postgres urls connect directly.
func New(config model.StoreConfig) (Service, error) {
	u, err := url.Parse(config.Url)
	if err != nil {
		return nil, fmt.Errorf("store url could not be parsed: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return NewRestService(config, nil), nil
	case "postgres", "postgresql":
		db, err := NewPostgresService(config)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported store url scheme %q", u.Scheme)
	}
}
