package worker

import (
	"context"
	"fmt"

	"github.com/spec-kit/product-service/internal/events"
	"github.com/spec-kit/product-service/internal/service"
)

// ProductInvalidator drops cached copies of a product.
type ProductInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// StartAuditWorker registers audit log handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}

// StartCacheInvalidationWorker evicts cached products whenever one changes or
// is deleted. Handlers run synchronously with the publishing request.
func StartCacheInvalidationWorker(dispatcher events.Dispatcher, cache ProductInvalidator) {
	if dispatcher == nil || cache == nil {
		return
	}

	invalidate := func(ctx context.Context, event events.Event) error {
		if err := cache.Invalidate(ctx, event.SubjectID); err != nil {
			return fmt.Errorf("invalidate product %s: %w", event.SubjectID, err)
		}
		return nil
	}
	dispatcher.Subscribe(events.EventProductUpdated, invalidate)
	dispatcher.Subscribe(events.EventProductDeleted, invalidate)
}
