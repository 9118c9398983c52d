package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hnafiah/rekapbot/internal/config"
)

// Client exposes the WhatsApp gateway operations used by the application.
type Client interface {
	SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendMessageResponse, error)
	SendDocument(ctx context.Context, req SendDocumentRequest) (*SendMessageResponse, error)
	GetGroupParticipants(ctx context.Context, groupID string) ([]Participant, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	session    string
}

// NewClient builds a gateway client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("X-Api-Key", cfg.APIKey).
		SetTimeout(30 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		session:    cfg.Session,
	}
}

// SendTextMessageRequest represents a plain text message payload.
type SendTextMessageRequest struct {
	ChatID string
	Body   string
}

// SendDocumentRequest uploads a generated file with a caption.
type SendDocumentRequest struct {
	ChatID   string
	FilePath string
	Filename string
	Caption  string
}

// SendMessageResponse mirrors the gateway's acknowledgement.
type SendMessageResponse struct {
	ID string `json:"id"`
}

// Participant is one group member with its admin flag.
type Participant struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
}

// apiError represents a gateway error payload.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SendTextMessage posts a text reply into the given conversation.
func (c *APIClient) SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendMessageResponse, error) {
	payload := map[string]any{
		"chatId": req.ChatID,
		"body":   req.Body,
	}

	result := new(SendMessageResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("/api/%s/send-text", c.session))
	if err != nil {
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}

	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}

// SendDocument uploads the file as a document message with a caption.
func (c *APIClient) SendDocument(ctx context.Context, req SendDocumentRequest) (*SendMessageResponse, error) {
	result := new(SendMessageResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFile("file", req.FilePath).
		SetFormData(map[string]string{
			"chatId":   req.ChatID,
			"filename": req.Filename,
			"caption":  req.Caption,
		}).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("/api/%s/send-file", c.session))
	if err != nil {
		return nil, fmt.Errorf("send whatsapp document: %w", err)
	}

	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}

// GetGroupParticipants fetches the member list of a group, including admin
// flags, for the admin gate.
func (c *APIClient) GetGroupParticipants(ctx context.Context, groupID string) ([]Participant, error) {
	var participants []Participant
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&participants).
		SetError(apiErr).
		Get(fmt.Sprintf("/api/%s/groups/%s/participants", c.session, groupID))
	if err != nil {
		return nil, fmt.Errorf("fetch group participants: %w", err)
	}

	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}

	return participants, nil
}

func checkStatus(resp *resty.Response, apiErr *apiError) error {
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}

	message := apiErr.Message
	if message == "" {
		message = apiErr.Error
	}
	return fmt.Errorf("whatsapp gateway error: status=%d, message=%s", resp.StatusCode(), message)
}
