package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hnafiah/rekapbot/internal/config"
	"github.com/hnafiah/rekapbot/internal/domain/models"
	client "github.com/hnafiah/rekapbot/pkg/clients/whatsapp"
)

const groupSuffix = "@g.us"

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Dispatcher is the command core this service delegates message text to.
type Dispatcher interface {
	HandleMessage(ctx context.Context, text string, auth models.AuthContext) (models.Reply, error)
}

// GatewayService is the production implementation backed by the WhatsApp
// gateway API.
type GatewayService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewGatewayService wires a new service instance.
func NewGatewayService(cfg config.WhatsAppConfig, client client.Client, dispatcher Dispatcher, logger *zap.Logger) *GatewayService {
	svc := &GatewayService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *GatewayService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads. Each message is handled
// independently; the first failure is reported after all are attempted.
func (s *GatewayService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, msg := range payload.Messages {
		if err := s.handleInboundMessage(ctx, msg); err != nil {
			s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (s *GatewayService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := strings.TrimSpace(msg.Body)
	if text == "" {
		return nil
	}

	auth := s.buildAuthContext(ctx, msg)

	reply, err := s.dispatcher.HandleMessage(ctx, text, auth)
	if err != nil {
		return fmt.Errorf("dispatch message %s: %w", msg.ID, err)
	}

	if reply.Text == "" {
		return nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.client.SendTextMessage(sendCtx, client.SendTextMessageRequest{
		ChatID: msg.From,
		Body:   reply.Text,
	}); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	if reply.Document != nil {
		if _, err := s.client.SendDocument(sendCtx, client.SendDocumentRequest{
			ChatID:   msg.From,
			FilePath: reply.Document.Path,
			Filename: reply.Document.Filename,
			Caption:  reply.Document.Caption,
		}); err != nil {
			return fmt.Errorf("send export document: %w", err)
		}
	}

	return nil
}

// buildAuthContext derives the admin-gate input from the inbound message.
// Member lookup failures leave the list empty, which the gate treats as
// deny; reports stay unaffected since they skip the gate entirely.
func (s *GatewayService) buildAuthContext(ctx context.Context, msg models.InboundMessage) models.AuthContext {
	isGroup := strings.HasSuffix(msg.From, groupSuffix)

	sender := msg.From
	if isGroup && msg.Author != "" {
		sender = msg.Author
	}

	auth := models.AuthContext{IsGroup: isGroup, SenderID: sender}
	if !isGroup {
		return auth
	}

	participants, err := s.client.GetGroupParticipants(ctx, msg.From)
	if err != nil {
		s.logger.Warn("group participant lookup failed", zap.String("group", msg.From), zap.Error(err))
		return auth
	}

	auth.Members = make([]models.GroupMember, 0, len(participants))
	for _, p := range participants {
		auth.Members = append(auth.Members, models.GroupMember{ID: p.ID, IsAdmin: p.IsAdmin})
	}
	return auth
}

// SendOutbound lets internal operators and the scheduler push messages.
func (s *GatewayService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		ChatID: req.To,
		Body:   req.Message,
	})
	return err
}
