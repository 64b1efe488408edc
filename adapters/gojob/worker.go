package gojob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/leeford/team-request-app/core"
)

// ProvisionRunner is the slice of the core service the worker needs.
type ProvisionRunner interface {
	Provision(ctx context.Context, requestID string, ownerID string) error
}

// ProvisionWorker drains provisioning messages from a queue and runs them.
// The orchestrator already retries transient graph failures internally, so
// the worker only requeues when the run never started (lease conflicts);
// anything else is acked because the request record carries the outcome.
type ProvisionWorker struct {
	dequeuer   core.JobDequeuer
	runner     ProvisionRunner
	policy     RetryPolicy
	logger     glog.Logger
	retryDelay time.Duration
}

type WorkerOption func(*ProvisionWorker)

func WithWorkerLogger(logger glog.Logger) WorkerOption {
	return func(w *ProvisionWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithWorkerRetryDelay(delay time.Duration) WorkerOption {
	return func(w *ProvisionWorker) {
		if delay > 0 {
			w.retryDelay = delay
		}
	}
}

func NewProvisionWorker(dequeuer core.JobDequeuer, runner ProvisionRunner, policy RetryPolicy, options ...WorkerOption) (*ProvisionWorker, error) {
	if dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("gojob: provision runner is required")
	}
	worker := &ProvisionWorker{
		dequeuer:   dequeuer,
		runner:     runner,
		policy:     policy,
		logger:     glog.Nop(),
		retryDelay: 15 * time.Second,
	}
	for _, option := range options {
		option(worker)
	}
	return worker, nil
}

// Run consumes messages until the context is cancelled.
func (w *ProvisionWorker) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.logger.WithContext(ctx).Error("provision worker iteration failed", "error", err.Error())
		}
	}
}

// RunOnce processes a single delivery.
func (w *ProvisionWorker) RunOnce(ctx context.Context) error {
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return fmt.Errorf("gojob: dequeuer returned no delivery")
	}

	msg := delivery.Message()
	if msg == nil || !strings.EqualFold(msg.JobID, JobIDProvisionTeam) {
		return delivery.Nack(ctx, core.JobNackOptions{
			Requeue:    false,
			DeadLetter: true,
			Reason:     "unexpected job id",
		})
	}

	requestID, ownerID, err := ProvisionParameters(msg)
	if err != nil {
		return delivery.Nack(ctx, core.JobNackOptions{
			Requeue:    false,
			DeadLetter: true,
			Reason:     err.Error(),
		})
	}

	runErr := w.runner.Provision(ctx, requestID, ownerID)
	if runErr == nil {
		return delivery.Ack(ctx)
	}
	if errors.Is(runErr, core.ErrRequestLeaseHeld) {
		// Another worker owns the run; try again once the lease can expire.
		return delivery.Nack(ctx, core.JobNackOptions{
			Delay:   w.retryDelay,
			Requeue: true,
			Reason:  "provision lease held",
		})
	}

	w.logger.WithContext(ctx).Error("provision run failed",
		"request_id", requestID,
		"error", runErr.Error(),
	)
	return delivery.Ack(ctx)
}
