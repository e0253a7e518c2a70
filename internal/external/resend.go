package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"weatherguard/internal/types"
)

// resendAPIBase is the default Resend API base URL.
// Overridable in tests via ResendClientConfig.BaseURL.
const resendAPIBase = "https://api.resend.com"

// ResendClientConfig holds the configuration for a ResendClient.
type ResendClientConfig struct {
	APIKey  string
	BaseURL string // override for testing
	Logger  *slog.Logger
}

// ResendClient implements EmailProvider against the Resend /emails endpoint.
type ResendClient struct {
	base    *BaseClient
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

// NewResendClient builds a ResendClient routed through BaseClient resilience.
func NewResendClient(httpClient *http.Client, cfg ResendClientConfig) *ResendClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = resendAPIBase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ResendClient{
		base: NewBaseClient(httpClient, "resend", RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		}),
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

type resendMailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendSendResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send delivers a message through Resend and returns the message id.
// The Idempotency-Key header carries the caller's ReferenceID so a retried
// delivery attempt cannot double-send.
//
// Error mapping:
//   - 403 -> send_recipient_blocked (suppressed or rejected recipient)
//   - 429 and 5xx are retried by BaseClient, then surface as upstream codes
//   - other 4xx -> send_failed
func (r *ResendClient) Send(ctx context.Context, input types.SendInput) (string, error) {
	payload := resendMailPayload{
		From:    formatSender(input.From),
		To:      []string{input.To},
		Subject: input.Subject,
		HTML:    input.BodyHTML,
		Text:    input.BodyText,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected,
			"marshaling Resend payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected,
			"building Resend request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	idempotencyKey := input.ReferenceID
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := r.base.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var sendResp resendSendResponse
		if err := json.NewDecoder(resp.Body).Decode(&sendResp); err != nil {
			return "", types.NewAppError(types.ErrCodeParsePayload,
				"decoding Resend response", err)
		}
		return sendResp.ID, nil
	}

	return "", r.handleErrorResponse(resp)
}

func (r *ResendClient) handleErrorResponse(resp *http.Response) error {
	raw, readErr := io.ReadAll(resp.Body)
	msg := ""
	if readErr == nil {
		var payload resendErrorResponse
		if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
			msg = payload.Message
		} else {
			msg = string(raw)
		}
	}

	if resp.StatusCode == http.StatusForbidden {
		return types.NewAppError(types.ErrCodeSendBlocked,
			fmt.Sprintf("Resend blocked delivery: %s", msg), nil)
	}
	return types.NewAppError(types.ErrCodeSendFailed,
		fmt.Sprintf("Resend error (%d): %s", resp.StatusCode, msg), nil)
}

// formatSender renders "Name <address>" or the bare address when no display
// name is configured.
func formatSender(from types.SenderIdentity) string {
	if from.Name == "" {
		return from.Address
	}
	return fmt.Sprintf("%s <%s>", from.Name, from.Address)
}

var _ EmailProvider = (*ResendClient)(nil)
