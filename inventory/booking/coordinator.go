package booking

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
)

const (
	defaultWorkers         = 5
	defaultShutdownTimeout = 60 * time.Second
	defaultShutdownGrace   = 5 * time.Second
)

// Booker books one unit of a room for a guest and an optional stay. *inventory.Inventory implements it.
//
// TryBookStay should return when ctx is done. A Booker that does not is abandoned once the
// shutdown grace period of a forced shutdown has elapsed.
type Booker interface {
	TryBookStay(ctx context.Context, roomID inventory.RoomID, guest string, stay inventory.Stay) error
}

// Coordinator drives batches of booking requests through a Booker with a bounded pool of workers.
type Coordinator struct {
	booker          Booker
	sink            MetricsSink
	workers         int
	shutdownTimeout time.Duration
	shutdownGrace   time.Duration

	logger           inventory.Logger
	contextualLogger inventory.ContextualLogger
	tracingCollector inventory.TracingCollector
}

// BatchResult is the outcome of Coordinator.Process.
//
// Requests holds the final value of every input request in input order. Requests that never reached a
// worker stay in StatusSubmitted; requests that were not pending on input are returned unchanged.
// Rejected, Succeeded, Failed, NotStarted and Abandoned always add up to len(Requests).
type BatchResult struct {
	Requests   []Request
	Succeeded  int
	Failed     int
	NotStarted int
	Rejected   int

	// Abandoned counts requests still in StatusRunning because their worker did not return
	// within the shutdown grace period.
	Abandoned int

	// Complete is true when all workers finished before the shutdown timeout without cancellation.
	Complete bool
	TimedOut bool
	Canceled bool
	Duration time.Duration
}

// NewCoordinator creates a Coordinator with 5 workers, a 60 second shutdown timeout and a 5 second
// shutdown grace period unless configured otherwise.
func NewCoordinator(booker Booker, sink MetricsSink, options ...Option) (*Coordinator, error) {
	if booker == nil {
		return nil, ErrNilBooker
	}

	if sink == nil {
		return nil, ErrNilMetricsSink
	}

	c := &Coordinator{
		booker:          booker,
		sink:            sink,
		workers:         defaultWorkers,
		shutdownTimeout: defaultShutdownTimeout,
		shutdownGrace:   defaultShutdownGrace,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Process submits all pending requests to the worker pool and waits for them.
//
// The wait is bounded by the shutdown timeout. When it elapses, or when ctx is canceled, in-flight
// bookings are canceled and queued requests are skipped. Process then waits at most the shutdown
// grace period for the workers to return. Bookings already done are never rolled back.
func (c *Coordinator) Process(ctx context.Context, requests []Request) BatchResult {
	start := time.Now()
	result := BatchResult{}
	state := newBatch(requests)

	workCtx, forceCancel := context.WithCancel(ctx)
	defer forceCancel()

	accepted := make([]int, 0, len(requests))
	for i, request := range requests {
		submitted, err := request.withStatus(StatusSubmitted)
		if err != nil {
			result.Rejected++
			c.logWarn(ctx, logMsgRequestRejected, logAttrRequestID, request.ID().String(), logAttrError, err.Error())

			continue
		}

		state.publish(i, submitted)
		accepted = append(accepted, i)
	}

	queue := make(chan int, len(accepted))
	for _, i := range accepted {
		queue <- i
	}
	close(queue)

	c.logInfo(ctx, logMsgBatchStarted, logAttrRequests, len(accepted), logAttrWorkers, c.workers)

	group := new(errgroup.Group)
	for range c.workers {
		group.Go(func() error {
			c.work(workCtx, queue, state)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()

	timer := time.NewTimer(c.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		result.Canceled = ctx.Err() != nil

	case <-timer.C:
		result.TimedOut = true
		c.logWarn(ctx, logMsgShutdownTimeout, logAttrTimeoutMS, c.shutdownTimeout.Milliseconds())
		forceCancel()
		c.awaitWorkers(ctx, done)

	case <-ctx.Done():
		result.Canceled = true
		forceCancel()
		c.awaitWorkers(ctx, done)
	}

	if result.Canceled {
		c.logWarn(ctx, logMsgBatchCanceled, logAttrError, context.Cause(ctx).Error())
	}

	result.Requests = state.seal()

	for _, i := range accepted {
		switch result.Requests[i].Status() {
		case StatusSucceeded:
			result.Succeeded++
		case StatusFailed:
			result.Failed++
		case StatusRunning:
			result.Abandoned++
		default:
			result.NotStarted++
		}
	}

	result.Complete = !result.TimedOut && !result.Canceled
	result.Duration = time.Since(start)

	c.logInfo(ctx, logMsgBatchFinished,
		logAttrSucceeded, result.Succeeded,
		logAttrFailed, result.Failed,
		logAttrNotStarted, result.NotStarted,
		logAttrAbandoned, result.Abandoned,
		logAttrComplete, result.Complete,
		logAttrDurationMS, result.Duration.Milliseconds(),
	)

	return result
}

// awaitWorkers waits for the canceled workers, at most for the shutdown grace period.
func (c *Coordinator) awaitWorkers(ctx context.Context, done <-chan struct{}) {
	grace := time.NewTimer(c.shutdownGrace)
	defer grace.Stop()

	select {
	case <-done:
	case <-grace.C:
		c.logWarn(ctx, logMsgWorkersAbandoned, logAttrGraceMS, c.shutdownGrace.Milliseconds())
	}
}

// work pulls request indexes until the queue is drained. Each index is owned by exactly one worker.
func (c *Coordinator) work(ctx context.Context, queue <-chan int, state *batch) {
	for i := range queue {
		if ctx.Err() != nil {
			continue
		}

		c.processRequest(ctx, i, state)
	}
}

func (c *Coordinator) processRequest(ctx context.Context, i int, state *batch) {
	sample := c.sink.StartBookingTimer()
	defer c.sink.StopBookingTimer(sample)

	c.sink.RecordConcurrentBooking()

	running, err := state.get(i).withStatus(StatusRunning)
	if err != nil {
		c.sink.RecordFailedBooking()
		return
	}

	state.publish(i, running)

	ctx, span := c.startProcessSpan(ctx, running)

	bookErr := c.book(ctx, running)

	next := StatusSucceeded
	if bookErr != nil {
		next = StatusFailed
	}

	final, _ := running.withStatus(next)
	state.publish(i, final)

	if bookErr != nil {
		c.sink.RecordFailedBooking()
		c.logWarn(ctx, logMsgRequestFailed,
			logAttrRequestID, final.ID().String(),
			logAttrRoomID, final.RoomID().String(),
			logAttrGuest, final.Guest(),
			logAttrReason, inventory.FailureReason(bookErr),
		)
	} else {
		c.sink.RecordSuccessfulBooking()
		c.logInfo(ctx, logMsgRequestSucceeded,
			logAttrRequestID, final.ID().String(),
			logAttrRoomID, final.RoomID().String(),
			logAttrGuest, final.Guest(),
		)
	}

	c.finishProcessSpan(span, bookErr)
}

// book calls the Booker and turns a panic into an error.
func (c *Coordinator) book(ctx context.Context, request Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBookingPanicked, r)
		}
	}()

	return c.booker.TryBookStay(ctx, request.RoomID(), request.Guest(), request.Stay())
}
