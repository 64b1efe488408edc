package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// GoroutineDispatcher runs provisioning workflows on in-process goroutines.
// It is the default dispatcher; deployments with a queue swap in the job
// adapter instead.
type GoroutineDispatcher struct {
	service *Service
	wg      sync.WaitGroup
}

func NewGoroutineDispatcher(service *Service) *GoroutineDispatcher {
	return &GoroutineDispatcher{service: service}
}

func (d *GoroutineDispatcher) Dispatch(ctx context.Context, requestID string, ownerID string) error {
	if d == nil || d.service == nil {
		return fmt.Errorf("core: provision dispatcher is not configured")
	}
	requestID = strings.TrimSpace(requestID)
	ownerID = strings.TrimSpace(ownerID)
	if requestID == "" || ownerID == "" {
		return fmt.Errorf("core: request id and owner id are required for dispatch")
	}

	// The workflow outlives the intake call that triggered it, so it runs
	// against a fresh context rather than the caller's.
	runCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.service.Provision(runCtx, requestID, ownerID); err != nil {
			d.service.logError(runCtx, "background provisioning run failed", map[string]any{
				"request_id": requestID,
				"owner_id":   ownerID,
				"error":      err.Error(),
			})
		}
	}()
	return nil
}

// Wait blocks until every dispatched workflow has returned.
func (d *GoroutineDispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
