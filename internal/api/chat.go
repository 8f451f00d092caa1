// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// =============================================================================
// GENERATION
// =============================================================================

// GenerationOptions tune one generation turn. Zero values omit the field
// and let the server choose.
type GenerationOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// generationRequest is the body of a chat turn.
type generationRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
	GenerationOptions
}

// OpenGeneration starts a generation turn and returns the raw streaming
// response body. The caller decodes it with stream.NewDecoder and must
// close it; cancelling ctx aborts the read mid-stream.
func (c *Client) OpenGeneration(ctx context.Context, conversationID, message string, opts GenerationOptions) (io.ReadCloser, error) {
	body, err := json.Marshal(generationRequest{
		ConversationID:    conversationID,
		Message:           message,
		GenerationOptions: opts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation request: %w", err)
	}

	resp, err := c.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        "/api/chat",
		Body:        body,
		ContentType: "application/json",
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}
	if resp.Body == nil {
		return nil, &ProtocolError{Reason: "generation response has no body"}
	}
	return resp.Body, nil
}
