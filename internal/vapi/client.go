package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"intake/internal/apperr"
)

// DefaultBaseURL is the public Vapi REST endpoint.
const DefaultBaseURL = "https://api.vapi.ai"

// Customer is the party the assistant dials.
type Customer struct {
	Number string `json:"number"`
}

// CreateCallRequest is the body of POST /call.
type CreateCallRequest struct {
	Customer      Customer `json:"customer"`
	AssistantID   string   `json:"assistantId"`
	PhoneNumberID string   `json:"phoneNumberId,omitempty"`
}

// Client calls the Vapi REST API with a bearer token.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New creates a client with the given request timeout.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// CreateCall starts an outbound phone call and returns the created call
// object as sent by Vapi.
func (c *Client) CreateCall(ctx context.Context, call CreateCallRequest) (json.RawMessage, error) {
	body, err := json.Marshal(call)
	if err != nil {
		return nil, fmt.Errorf("encode call request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/call", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, apperr.Upstream("vapi.create_call", err.Error(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Upstream("vapi.create_call", "Failed to read call response", err)
	}
	if resp.StatusCode >= 300 {
		return nil, apperr.Upstream("vapi.create_call", upstreamMessage(respBody),
			fmt.Errorf("vapi error %s", resp.Status))
	}
	if !json.Valid(respBody) {
		return nil, apperr.Upstream("vapi.create_call", "Invalid response from voice API",
			fmt.Errorf("non-JSON body (%d bytes)", len(respBody)))
	}
	return json.RawMessage(respBody), nil
}

// upstreamMessage pulls a human-readable message out of a Vapi error body.
// Vapi sends message as a string or a list of validation strings.
func upstreamMessage(body []byte) string {
	var out struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err == nil {
		var single string
		if json.Unmarshal(out.Message, &single) == nil && single != "" {
			return single
		}
		var many []string
		if json.Unmarshal(out.Message, &many) == nil && len(many) > 0 {
			return strings.Join(many, "; ")
		}
		if out.Error != "" {
			return out.Error
		}
	}
	return "Failed to create call"
}

// ValidPhoneNumberID reports whether id is a canonical hyphenated UUID,
// the only form Vapi accepts for phoneNumberId.
func ValidPhoneNumberID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
