package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProductChange describes an edit made through the storefront editor.
type ProductChange struct {
	ProductID     string
	ProductName   string
	ProductNumber string
	ChangedFields []string
	NewValue      map[string]interface{}
	ActorID       string
	ClientIP      string
	UserAgent     string
}

// Publisher wraps the go-shared events publisher for catalog edits
type Publisher struct {
	publisher *events.Publisher
	tenantID  string
	logger    *logrus.Entry
}

// NewPublisher connects to NATS and makes sure the products stream exists
func NewPublisher(natsURL, tenantID string, logger *logrus.Logger) (*Publisher, error) {
	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "storefront-bff"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		tenantID:  tenantID,
		logger:    logger.WithField("component", "catalog-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishProductUpdated publishes a product.updated event
func (p *Publisher) PublishProductUpdated(ctx context.Context, change ProductChange) error {
	event := events.NewProductEvent(events.ProductUpdated, p.tenantID)
	event.SourceID = uuid.New().String()
	event.ProductID = change.ProductID
	event.ProductName = change.ProductName
	event.SKU = change.ProductNumber
	event.ActorID = change.ActorID
	event.ClientIP = change.ClientIP
	event.UserAgent = change.UserAgent
	event.ChangeType = "updated"
	event.ChangedFields = change.ChangedFields
	event.NewValue = change.NewValue
	return p.publish(ctx, event)
}

// publish sends the event in the background so requests never wait on NATS
func (p *Publisher) publish(_ context.Context, event *events.ProductEvent) error {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		fields := logrus.Fields{
			"eventType": event.EventType,
			"productID": event.ProductID,
			"tenantID":  event.TenantID,
		}
		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(fields).WithError(err).Error("Failed to publish product event")
			return
		}
		p.logger.WithFields(fields).Info("Product event published")
	}()

	return nil
}
