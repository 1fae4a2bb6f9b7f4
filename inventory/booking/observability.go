package booking

import (
	"context"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
)

// SpanNameProcessRequest is the span started for every request a worker processes.
const SpanNameProcessRequest = "booking.process_request"

const (
	logMsgBatchStarted     = "booking batch started"
	logMsgBatchFinished    = "booking batch finished"
	logMsgBatchCanceled    = "booking batch canceled"
	logMsgShutdownTimeout  = "booking batch exceeded shutdown timeout, canceling remaining requests"
	logMsgWorkersAbandoned = "booking workers did not stop within grace period, abandoning them"
	logMsgRequestRejected  = "booking request rejected"
	logMsgRequestSucceeded = "room booked"
	logMsgRequestFailed    = "room not available"
	logAttrRequestID       = "request_id"
	logAttrRoomID          = "room_id"
	logAttrGuest           = "guest"
	logAttrReason          = "reason"
	logAttrError           = "error"
	logAttrRequests        = "requests"
	logAttrWorkers         = "workers"
	logAttrSucceeded       = "succeeded"
	logAttrFailed          = "failed"
	logAttrNotStarted      = "not_started"
	logAttrComplete        = "complete"
	logAttrDurationMS      = "duration_ms"
	logAttrTimeoutMS       = "timeout_ms"
	logAttrGraceMS         = "grace_ms"
	logAttrAbandoned       = "abandoned"
	spanAttrRequestID      = "booking.request_id"
	spanAttrRoomID         = "room.id"
	spanAttrReason         = "booking.failure_reason"
)

func (c *Coordinator) startProcessSpan(ctx context.Context, request Request) (context.Context, inventory.SpanContext) {
	if c.tracingCollector == nil {
		return ctx, nil
	}

	return c.tracingCollector.StartSpan(ctx, SpanNameProcessRequest, map[string]string{
		spanAttrRequestID: request.ID().String(),
		spanAttrRoomID:    request.RoomID().String(),
	})
}

func (c *Coordinator) finishProcessSpan(span inventory.SpanContext, err error) {
	if c.tracingCollector == nil || span == nil {
		return
	}

	if err != nil {
		c.tracingCollector.FinishSpan(span, inventory.StatusError, map[string]string{
			spanAttrReason: inventory.FailureReason(err),
		})

		return
	}

	c.tracingCollector.FinishSpan(span, inventory.StatusSuccess, nil)
}

func (c *Coordinator) logInfo(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Coordinator) logWarn(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
