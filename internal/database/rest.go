package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"TrackingServer/internal/model"
)

type restService struct {
	endpoint string
	key      string
	client   *http.Client
}

// NewRestService returns a store that inserts rows through a PostgREST api,
// such as the one in front of a Supabase project. A nil client means
// http.DefaultClient.
func NewRestService(config model.StoreConfig, client *http.Client) Service {
	if client == nil {
		client = http.DefaultClient
	}

	return &restService{
		endpoint: fmt.Sprintf("%s/rest/v1/%s", strings.TrimRight(config.Url, "/"), url.PathEscape(config.Table)),
		key:      config.Key,
		client:   client,
	}
}

func (s *restService) InsertTracking(ctx context.Context, record model.TrackingRecord) error {
	body, err := json.Marshal([]model.TrackingRecord{record})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.key))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		resBody, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("insert into %s failed with status %d: %s", s.endpoint, res.StatusCode, strings.TrimSpace(string(resBody)))
	}

	return nil
}

func (s *restService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
