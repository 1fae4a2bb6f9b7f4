package inventory

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"
)

// Metric names, label keys, and status values used by the Inventory.
const (
	MetricBookDuration   = "inventory_book_duration_seconds"
	MetricBookCalls      = "inventory_book_calls_total"
	MetricBookRetries    = "inventory_book_retries_total"
	MetricReleaseCalls   = "inventory_release_calls_total"
	MetricAvailableUnits = "inventory_available_units"

	LabelStatus = "status"
	LabelReason = "reason"
	LabelRoomID = "room_id"

	StatusSuccess     = "success"
	StatusNotFound    = "not_found"
	StatusNoUnitsLeft = "no_units_left"
	StatusBusy        = "busy"
	StatusCanceled    = "canceled"
	StatusError       = "error"

	SpanNameBook = "inventory.book"
)

const (
	logMsgRoomNotFound         = "room not found"
	logMsgRetryingBooking      = "retrying booking"
	logMsgBookingSucceeded     = "booking succeeded"
	logMsgBookingFailed        = "booking failed after all attempts"
	logMsgBookingCanceled      = "booking canceled"
	logMsgReleaseUnknownRoom   = "attempted to release non-existent room"
	logMsgReleaseCanceled      = "release canceled"
	logMsgRoomReleased         = "room released"
	logMsgInventoryCleared     = "inventory cleared"
	logMsgInventoryInitialized = "inventory initialized"
	logAttrRoomID              = "room_id"
	logAttrGuest               = "guest"
	logAttrAttempt             = "attempt"
	logAttrAttempts            = "attempts"
	logAttrMaxAttempts         = "max_attempts"
	logAttrReason              = "reason"
	logAttrAvailableUnits      = "available_units"
	logAttrDurationMS          = "duration_ms"
	logAttrError               = "error"
	logAttrSeedEntries         = "seed_entries"
	logAttrRoomCount           = "room_count"
	spanAttrRoomID             = "room.id"
	spanAttrGuest              = "booking.guest"
	spanAttrAttempts           = "booking.attempts"
	spanAttrReason             = "booking.failure_reason"
	spanAttrDurationMS         = "duration_ms"
)

func (inv *Inventory) startBookSpan(ctx context.Context, id RoomID, guest string) (context.Context, SpanContext) {
	if inv.tracingCollector == nil {
		return ctx, nil
	}

	attrs := map[string]string{spanAttrRoomID: id.String()}
	if guest != "" {
		attrs[spanAttrGuest] = guest
	}

	return inv.tracingCollector.StartSpan(ctx, SpanNameBook, attrs)
}

// finishBook logs the outcome of TryBook and records its metrics and span status.
func (inv *Inventory) finishBook(
	ctx context.Context,
	span SpanContext,
	id RoomID,
	attempts int,
	err error,
	duration time.Duration,
) {
	status := FailureReason(err)

	switch {
	case err == nil:
		inv.logInfo(ctx, logMsgBookingSucceeded,
			logAttrRoomID, id.String(), logAttrAttempts, attempts, logAttrDurationMS, toMilliseconds(duration))

	case errors.Is(err, ErrRoomNotFound):
		inv.logWarn(ctx, logMsgRoomNotFound, logAttrRoomID, id.String())

	case errors.Is(err, ErrBookingCanceled):
		inv.logError(ctx, logMsgBookingCanceled, err, logAttrRoomID, id.String(), logAttrAttempts, attempts)

	default:
		inv.logWarn(ctx, logMsgBookingFailed,
			logAttrRoomID, id.String(), logAttrAttempts, attempts, logAttrReason, status)
	}

	inv.recordDuration(ctx, MetricBookDuration, duration, map[string]string{LabelStatus: status})
	inv.incrementCounter(ctx, MetricBookCalls, map[string]string{LabelStatus: status})

	if inv.tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		spanAttrAttempts:   strconv.Itoa(attempts),
		spanAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 2, 64),
	}
	if err != nil {
		attrs[spanAttrReason] = status
	}

	spanStatus := StatusSuccess
	if err != nil {
		spanStatus = StatusError
	}

	inv.tracingCollector.FinishSpan(span, spanStatus, attrs)
}

func (inv *Inventory) recordRetry(ctx context.Context, reason string) {
	inv.incrementCounter(ctx, MetricBookRetries, map[string]string{LabelReason: reason})
}

func (inv *Inventory) recordRelease(ctx context.Context, status string) {
	inv.incrementCounter(ctx, MetricReleaseCalls, map[string]string{LabelStatus: status})
}

func (inv *Inventory) recordAvailableUnits(ctx context.Context, id RoomID, units int) {
	if inv.metricsCollector == nil {
		return
	}

	labels := map[string]string{LabelRoomID: id.String()}

	if contextual, ok := inv.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, MetricAvailableUnits, float64(units), labels)
		return
	}

	inv.metricsCollector.RecordValue(MetricAvailableUnits, float64(units), labels)
}

func (inv *Inventory) recordDuration(ctx context.Context, metric string, d time.Duration, labels map[string]string) {
	if inv.metricsCollector == nil {
		return
	}

	if contextual, ok := inv.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	inv.metricsCollector.RecordDuration(metric, d, labels)
}

func (inv *Inventory) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if inv.metricsCollector == nil {
		return
	}

	if contextual, ok := inv.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	inv.metricsCollector.IncrementCounter(metric, labels)
}

func (inv *Inventory) logInfo(ctx context.Context, msg string, args ...any) {
	if inv.contextualLogger != nil {
		inv.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if inv.logger != nil {
		inv.logger.Info(msg, args...)
	}
}

func (inv *Inventory) logWarn(ctx context.Context, msg string, args ...any) {
	if inv.contextualLogger != nil {
		inv.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if inv.logger != nil {
		inv.logger.Warn(msg, args...)
	}
}

func (inv *Inventory) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if inv.contextualLogger != nil {
		inv.contextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if inv.logger != nil {
		inv.logger.Error(msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
