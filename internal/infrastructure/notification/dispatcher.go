package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/propman/backend/internal/domain/notification"
)

// webhookPayload is the wire shape posted to the notification receiver
type webhookPayload struct {
	Template      string            `json:"template"`
	RecipientID   string            `json:"recipient_id"`
	RecipientType string            `json:"recipient_type"`
	SenderID      string            `json:"sender_id"`
	SenderType    string            `json:"sender_type"`
	Substitutions map[string]string `json:"substitutions,omitempty"`
	Link          string            `json:"link,omitempty"`
	SentAt        time.Time         `json:"sent_at"`
}

// WebhookDeliverer posts deliveries to an external notification service.
// Rendering the template into a message body is that service's job.
type WebhookDeliverer struct {
	endpoint    string
	linkBaseURL string
	client      *http.Client
	logger      *zap.Logger
}

// NewWebhookDeliverer creates a webhook deliverer
func NewWebhookDeliverer(endpoint, linkBaseURL string, timeout time.Duration, logger *zap.Logger) *WebhookDeliverer {
	return &WebhookDeliverer{
		endpoint:    endpoint,
		linkBaseURL: strings.TrimSuffix(linkBaseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Deliver posts the delivery as JSON. Relative links are resolved against
// the configured base URL.
func (d *WebhookDeliverer) Deliver(ctx context.Context, delivery notification.Delivery) error {
	link := delivery.Link
	if link != "" && strings.HasPrefix(link, "/") {
		link = d.linkBaseURL + link
	}

	body, err := json.Marshal(webhookPayload{
		Template:      string(delivery.Template),
		RecipientID:   delivery.Recipient.ID.String(),
		RecipientType: delivery.Recipient.Type.String(),
		SenderID:      delivery.Sender.ID.String(),
		SenderType:    delivery.Sender.Type.String(),
		Substitutions: delivery.Substitutions,
		Link:          link,
		SentAt:        time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notification receiver returned status %d", resp.StatusCode)
	}

	d.logger.Debug("notification delivered",
		zap.String("template", string(delivery.Template)),
		zap.String("recipient_id", delivery.Recipient.ID.String()))
	return nil
}

// LogDeliverer writes deliveries to the log instead of sending them.
// The default in development and in deployments without a receiver.
type LogDeliverer struct {
	logger *zap.Logger
}

// NewLogDeliverer creates a log-only deliverer
func NewLogDeliverer(logger *zap.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger.Named("notification")}
}

// Deliver logs the delivery and succeeds
func (d *LogDeliverer) Deliver(ctx context.Context, delivery notification.Delivery) error {
	d.logger.Info("notification",
		zap.String("template", string(delivery.Template)),
		zap.String("recipient_id", delivery.Recipient.ID.String()),
		zap.String("recipient_type", delivery.Recipient.Type.String()),
		zap.String("sender_type", delivery.Sender.Type.String()),
		zap.Any("substitutions", delivery.Substitutions),
		zap.String("link", delivery.Link))
	return nil
}

var _ notification.Deliverer = (*WebhookDeliverer)(nil)
var _ notification.Deliverer = (*LogDeliverer)(nil)
