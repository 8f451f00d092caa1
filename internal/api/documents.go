// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// DOCUMENT LIBRARY
// =============================================================================

// Document ingestion states reported by the server.
const (
	DocStatusPending    = "pending"
	DocStatusProcessing = "processing"
	DocStatusReady      = "ready"
	DocStatusFailed     = "failed"
)

// IngestionRunning reports whether a status is non-terminal.
func IngestionRunning(status string) bool {
	return status == DocStatusPending || status == DocStatusProcessing
}

// Document is one entry in the server-side document library.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ListDocuments returns the user's document library.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/documents",
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}
	defer resp.Body.Close()

	var out struct {
		Documents []Document `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse document list: %w", err)
	}
	return out.Documents, nil
}

// UploadDocument sends file content for ingestion and returns the created
// document, typically in the pending state.
func (c *Client) UploadDocument(ctx context.Context, name string, content []byte) (*Document, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload form: %w", err)
	}

	resp, err := c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/api/documents",
		Body:        buf.Bytes(),
		ContentType: writer.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errorFromResponse(resp)
	}
	defer resp.Body.Close()

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	return &doc, nil
}

// DeleteDocument removes a document from the library.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/documents/" + url.PathEscape(id),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

// DocumentStatus polls the ingestion status of one document.
func (c *Client) DocumentStatus(ctx context.Context, id string) (string, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/documents/" + url.PathEscape(id) + "/status",
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", errorFromResponse(resp)
	}
	defer resp.Body.Close()

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse status response: %w", err)
	}
	return out.Status, nil
}

// WaitForIngestion polls until ingestion reaches a terminal state or ctx
// is cancelled. Polls are rate-limited so an eager caller cannot hammer
// the status endpoint.
func (c *Client) WaitForIngestion(ctx context.Context, id string, pollInterval time.Duration) (string, error) {
	limiter := rate.NewLimiter(rate.Every(pollInterval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
		status, err := c.DocumentStatus(ctx, id)
		if err != nil {
			return "", err
		}
		if !IngestionRunning(status) {
			return status, nil
		}
	}
}
