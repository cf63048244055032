package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/service/commands"
	client "github.com/mamadbah2/mandi/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrMessagingDisabled is returned when no WhatsApp credentials were configured.
var ErrMessagingDisabled = errors.New("messaging disabled")

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	BroadcastAlerts(ctx context.Context) (int, error)
}

// Directory lists the users and recommendations alerts are sent from.
type Directory interface {
	ListUsers() []models.User
	ActiveRecommendations(userID string) []models.Recommendation
}

// Options configures a MetaWhatsAppService.
type Options struct {
	VerifyToken string
	Client      client.Client
	Dispatcher  commands.Dispatcher
	Directory   Directory
	Sessions    *SessionManager
	Logger      *zap.Logger
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
// A nil client turns every operation into ErrMessagingDisabled.
type MetaWhatsAppService struct {
	verifyToken string
	client      client.Client
	dispatcher  commands.Dispatcher
	directory   Directory
	sessions    *SessionManager
	logger      *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(opts Options) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		verifyToken: opts.VerifyToken,
		client:      opts.Client,
		dispatcher:  opts.Dispatcher,
		directory:   opts.Directory,
		sessions:    opts.Sessions,
		logger:      opts.Logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.sessions == nil {
		svc.sessions = NewSessionManager()
	}
	return svc
}

// Enabled reports whether outbound messages can be sent.
func (s *MetaWhatsAppService) Enabled() bool {
	return s.client != nil
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if !s.Enabled() {
		return "", ErrMessagingDisabled
	}

	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.verifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook answers every inbound message of the payload.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	if !s.Enabled() {
		return ErrMessagingDisabled
	}

	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	cmd := s.sessions.Complete(msg.From, models.ParseCommand(text))

	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	switch {
	case errors.Is(err, commands.ErrInvalidArguments):
		reply = "Tell me which crop, e.g. /prices wheat"
	case err != nil:
		return fmt.Errorf("command %s: %w", cmd.Type, err)
	case cmd.Type == models.CommandHelp:
		s.sessions.ClearSession(msg.From)
	default:
		s.sessions.Remember(msg.From, cmd)
	}

	return s.send(ctx, msg.From, reply)
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	if !s.Enabled() {
		return ErrMessagingDisabled
	}
	return s.send(ctx, req.To, req.Message)
}

// BroadcastAlerts sends every active recommendation carrying an alert to its
// user's phone and returns the number of messages delivered. Users without a
// phone number are skipped.
func (s *MetaWhatsAppService) BroadcastAlerts(ctx context.Context) (int, error) {
	if !s.Enabled() {
		return 0, ErrMessagingDisabled
	}

	var (
		sent     int
		firstErr error
	)
	for _, user := range s.directory.ListUsers() {
		if user.Phone == nil || *user.Phone == "" {
			continue
		}
		for _, rec := range s.directory.ActiveRecommendations(user.ID) {
			if rec.Alert == nil || *rec.Alert == "" {
				continue
			}
			if err := ctx.Err(); err != nil {
				return sent, err
			}

			body := fmt.Sprintf("Price alert: %s\n%s", *rec.Alert, rec.Text)
			if err := s.send(ctx, *user.Phone, body); err != nil {
				s.logger.Error("failed to send alert", zap.Error(err), zap.String("user_id", user.ID), zap.String("recommendation_id", rec.ID))
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			sent++
		}
	}

	s.logger.Info("alerts broadcast", zap.Int("sent", sent))
	return sent, firstErr
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendText(ctxWithTimeout, to, body)
	return err
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}

func joinArgs(args []string) string { return strings.Join(args, " ") }

func splitArgs(s string) []string { return strings.Fields(s) }
