package gojob

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leeford/team-request-app/core"
)

type coreDeliveryStub struct {
	msg      *core.JobExecutionMessage
	acked    bool
	nackOpts *core.JobNackOptions
}

func (d *coreDeliveryStub) Message() *core.JobExecutionMessage {
	return d.msg
}

func (d *coreDeliveryStub) Ack(context.Context) error {
	d.acked = true
	return nil
}

func (d *coreDeliveryStub) Nack(_ context.Context, opts core.JobNackOptions) error {
	d.nackOpts = &opts
	return nil
}

type coreDequeuerStub struct {
	delivery *coreDeliveryStub
}

func (s *coreDequeuerStub) Dequeue(context.Context) (core.JobDelivery, error) {
	return s.delivery, nil
}

type provisionRunnerStub struct {
	requestID string
	ownerID   string
	err       error
}

func (r *provisionRunnerStub) Provision(_ context.Context, requestID string, ownerID string) error {
	r.requestID = requestID
	r.ownerID = ownerID
	return r.err
}

func TestProvisionWorker_AcksSuccessfulRun(t *testing.T) {
	delivery := &coreDeliveryStub{msg: NewProvisionMessage("req-1", "user-1")}
	runner := &provisionRunnerStub{}
	worker, err := NewProvisionWorker(&coreDequeuerStub{delivery: delivery}, runner, RetryPolicy{})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if runner.requestID != "req-1" || runner.ownerID != "user-1" {
		t.Fatalf("unexpected provision target: %q %q", runner.requestID, runner.ownerID)
	}
	if !delivery.acked {
		t.Fatalf("expected successful run to ack")
	}
}

func TestProvisionWorker_DeadLettersUnknownJob(t *testing.T) {
	delivery := &coreDeliveryStub{msg: &core.JobExecutionMessage{JobID: "teams.other"}}
	worker, err := NewProvisionWorker(&coreDequeuerStub{delivery: delivery}, &provisionRunnerStub{}, RetryPolicy{})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if delivery.nackOpts == nil || !delivery.nackOpts.DeadLetter {
		t.Fatalf("expected foreign job id to be dead-lettered, got %#v", delivery.nackOpts)
	}
}

func TestProvisionWorker_DeadLettersMalformedMessage(t *testing.T) {
	delivery := &coreDeliveryStub{msg: &core.JobExecutionMessage{
		JobID:      JobIDProvisionTeam,
		Parameters: map[string]any{paramRequestID: "req-1"},
	}}
	worker, err := NewProvisionWorker(&coreDequeuerStub{delivery: delivery}, &provisionRunnerStub{}, RetryPolicy{})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if delivery.nackOpts == nil || !delivery.nackOpts.DeadLetter || delivery.nackOpts.Requeue {
		t.Fatalf("expected malformed message to be dead-lettered, got %#v", delivery.nackOpts)
	}
}

func TestProvisionWorker_RequeuesLeaseConflicts(t *testing.T) {
	delivery := &coreDeliveryStub{msg: NewProvisionMessage("req-1", "user-1")}
	runner := &provisionRunnerStub{err: fmt.Errorf("busy: %w", core.ErrRequestLeaseHeld)}
	worker, err := NewProvisionWorker(
		&coreDequeuerStub{delivery: delivery},
		runner,
		RetryPolicy{},
		WithWorkerRetryDelay(time.Second),
	)
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if delivery.nackOpts == nil || !delivery.nackOpts.Requeue {
		t.Fatalf("expected lease conflict to requeue, got %#v", delivery.nackOpts)
	}
	if delivery.nackOpts.Delay != time.Second {
		t.Fatalf("expected configured retry delay, got %s", delivery.nackOpts.Delay)
	}
}

func TestProvisionWorker_AcksTerminalFailures(t *testing.T) {
	delivery := &coreDeliveryStub{msg: NewProvisionMessage("req-1", "user-1")}
	runner := &provisionRunnerStub{err: fmt.Errorf("provisioning failed")}
	worker, err := NewProvisionWorker(&coreDequeuerStub{delivery: delivery}, runner, RetryPolicy{})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}

	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if !delivery.acked {
		t.Fatalf("expected terminal failure to ack; the request record carries the outcome")
	}
	if delivery.nackOpts != nil {
		t.Fatalf("expected no nack for terminal failure, got %#v", delivery.nackOpts)
	}
}
