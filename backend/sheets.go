package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"picklist/mappers"
	"picklist/model"
)

// envelope is the reply shape of every script endpoint call.
type envelope struct {
	Status  string           `json:"status"`
	Data    []map[string]any `json:"data"`
	Message string           `json:"message"`
}

// SheetsBackend is the spreadsheet script web endpoint: GET reads every row,
// POST applies one action or accepts a file upload.
type SheetsBackend struct {
	url    string
	client *http.Client
}

// NewSheetsBackend talks to the script deployed at url.
func NewSheetsBackend(url string, timeout time.Duration) *SheetsBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SheetsBackend{url: url, client: &http.Client{Timeout: timeout}}
}

func (s *SheetsBackend) Name() string { return KindSheets }

func (s *SheetsBackend) FetchAll(ctx context.Context) ([]model.InventoryItem, error) {
	env, err := s.do(ctx, http.MethodGet, "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from the server: %w", err)
	}
	return mappers.ToInventoryItems(env.Data), nil
}

func (s *SheetsBackend) Apply(ctx context.Context, m model.Mutation) (string, error) {
	if err := ValidateMutation(m); err != nil {
		return "", err
	}
	body, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", m.Action, err)
	}
	env, err := s.do(ctx, http.MethodPost, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if env.Message == "" {
		return successMessage(m), nil
	}
	return env.Message, nil
}

func (s *SheetsBackend) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	env, err := s.do(ctx, http.MethodPost, mw.FormDataContentType(), &buf)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	if env.Message == "" {
		return "File uploaded successfully!", nil
	}
	return env.Message, nil
}

func (s *SheetsBackend) Ping(ctx context.Context) (string, error) {
	return s.Apply(ctx, model.Mutation{Action: model.ActionTestConnection})
}

func (s *SheetsBackend) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// do sends one request and decodes the envelope. A non-2xx status or a
// status other than "success" is an error carrying the endpoint's message.
func (s *SheetsBackend) do(ctx context.Context, method, contentType string, body io.Reader) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.url, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if env.Status != "success" {
		if env.Message == "" {
			env.Message = "script returned status " + env.Status
		}
		return nil, errors.New(env.Message)
	}
	return &env, nil
}
