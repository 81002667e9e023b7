package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/product-service/internal/events"
)

// AuditService writes an audit log line for every account and product event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventAccountRegistered, a.handleAccountEvent)
	a.dispatcher.Subscribe(events.EventAccountUpdated, a.handleAccountEvent)
	a.dispatcher.Subscribe(events.EventAccountDeactivated, a.handleAccountEvent)
	a.dispatcher.Subscribe(events.EventProductCreated, a.handleProductEvent)
	a.dispatcher.Subscribe(events.EventProductUpdated, a.handleProductEvent)
	a.dispatcher.Subscribe(events.EventProductDeleted, a.handleProductEvent)
}

func (a *AuditService) handleAccountEvent(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("account_id", event.SubjectID),
		zap.Time("at", event.Timestamp),
	}
	if changes, ok := event.Payload.(events.AccountUpdatedPayload); ok {
		fields = append(fields,
			zap.Bool("name_changed", changes.NameChanged),
			zap.Bool("email_changed", changes.EmailChanged),
			zap.Bool("password_changed", changes.PasswordChanged))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *AuditService) handleProductEvent(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("product_id", event.SubjectID),
		zap.String("actor_id", event.ActorID),
		zap.Time("at", event.Timestamp),
	}
	if payload, ok := event.Payload.(events.ProductPayload); ok {
		fields = append(fields,
			zap.String("owner_id", payload.OwnerID),
			zap.String("name", payload.Name),
			zap.Float64("price", payload.Price))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}
