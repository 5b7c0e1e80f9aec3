package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report/internal/config"
	"github.com/spec-kit/ticket-report/internal/events"
)

// NotificationService handles emitting notifications for report events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReportGenerated, n.handleReportGenerated)
	n.dispatcher.Subscribe(events.EventReportFailed, n.handleReportFailed)
	n.dispatcher.Subscribe(events.EventReportShared, n.handleReportShared)
}

func (n *NotificationService) handleReportGenerated(ctx context.Context, event events.Event) error {
	n.logger.Info("ReportGenerated", zap.String("client_id", event.ClientID), zap.Any("payload", event.Payload))
	if p, ok := event.Payload.(events.ReportGeneratedPayload); ok && p.Cached {
		return nil
	}
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleReportFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn("ReportFailed", zap.String("client_id", event.ClientID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleReportShared(ctx context.Context, event events.Event) error {
	n.logger.Info("ReportShared", zap.String("client_id", event.ClientID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || len(n.cfg.EmailTo) == 0 {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Strings("to", n.cfg.EmailTo),
		zap.String("client_id", event.ClientID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("client_id", event.ClientID),
		zap.String("event_type", string(event.Type)))
}
