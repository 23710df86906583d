package services

import (
	"context"

	"productivity/internal/log"
	"productivity/internal/metrics"
)

const (
	ResourceExpense = "expense"
	ResourceTask    = "task"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// recordChanged counts the change and hands it to the notifier. Notification
// failures are logged and never fail the write that caused them.
func (o Options) recordChanged(ctx context.Context, resource, action, id, ownerID string) {
	metrics.RecordChange(resource, action)

	o.Logger.InfoContext(ctx, "Record "+action,
		log.NewFields().WithRecord(resource, id, ownerID).ToSlice()...)

	if o.Notifier == nil {
		return
	}
	if err := o.Notifier.Notify(ctx, resource, action, id, ownerID); err != nil {
		metrics.NotifyFailed()
		o.Logger.LogError(ctx, "Failed to publish change event", err, log.OpPublish,
			log.FieldResource, resource, log.FieldRecordID, id)
	}
}
