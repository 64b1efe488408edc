package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const memberODataType = "#microsoft.graph.aadUserConversationMember"

// guestSettingTemplateID is the directory template for group guest access.
const guestSettingTemplateID = "08d542b9-071f-4e16-94b0-74abb372e3d9"

// Provision drives one request through the provisioning workflow until it
// reaches Complete or Failed. It is invoked once per accepted request,
// detached from the caller; progress is visible only through the persisted
// record's status, history and audit log.
//
// A lease on the request id is held for the whole run so at most one
// orchestration is ever active per request.
func (s *Service) Provision(ctx context.Context, requestID string, ownerID string) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	requestID = strings.TrimSpace(requestID)
	ownerID = strings.TrimSpace(ownerID)
	if requestID == "" || ownerID == "" {
		return s.mapError(fmt.Errorf("core: request id and owner id are required"))
	}
	if s.requestStore == nil || s.graphClient == nil {
		return s.mapError(fmt.Errorf("core: request store and graph client are required"))
	}

	unlock := func() {}
	if s.requestLocker != nil {
		handle, err := s.requestLocker.Acquire(ctx, requestID, s.leaseTTL())
		if err != nil {
			return s.mapError(err)
		}
		unlock = func() {
			_ = handle.Unlock(ctx)
		}
	}
	defer unlock()

	maxAttempts := s.config.Provisioning.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = DefaultConfig().Provisioning.MaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.runProvisionAttempt(ctx, requestID, ownerID, attempt)
		if err == nil {
			return nil
		}
		if IsNotFound(err) && attempt == 1 {
			// No record to update: nothing can be provisioned and nothing
			// can record the failure. Log and abort.
			s.logError(ctx, "team request missing at workflow entry", map[string]any{
				"request_id": requestID,
				"owner_id":   ownerID,
			})
			return s.mapError(err)
		}
		lastErr = err

		s.compensate(ctx, requestID, ownerID)

		if attempt == maxAttempts {
			break
		}
		s.logInfo(ctx, "provision attempt failed, scheduling retry", map[string]any{
			"request_id": requestID,
			"attempt":    attempt,
			"error":      err.Error(),
		})
		if waitErr := waitWithContext(ctx, s.config.Provisioning.RetryBackoff); waitErr != nil {
			return s.mapError(waitErr)
		}
	}

	if err := s.recordTerminalFailure(ctx, requestID, ownerID, lastErr); err != nil {
		return s.mapError(err)
	}
	return s.mapError(lastErr)
}

// runProvisionAttempt executes one full pass of the workflow. Any error is an
// attempt-level failure; the caller owns compensation and retry.
func (s *Service) runProvisionAttempt(ctx context.Context, requestID string, ownerID string, attempt int) error {
	startedAt := s.now()

	request, err := s.requestStore.Get(ctx, requestID, ownerID)
	if err != nil {
		return err
	}
	if len(request.TeamOwners) == 0 {
		return fmt.Errorf("%w: request %s has no owners", ErrInsufficientOwners, request.ID)
	}

	if err := request.TransitionTo(RequestStatusCreating, s.now()); err != nil {
		return err
	}
	request, err = s.requestStore.Upsert(ctx, request)
	if err != nil {
		return err
	}

	// The outgoing payload is audited before the call fires so a crash
	// mid-workflow still leaves a trail of what was attempted.
	body := buildTeamCreateBody(request)
	request.AppendGraphRequest("/teams", body)
	if request, err = s.requestStore.Upsert(ctx, request); err != nil {
		return err
	}

	handle, err := s.graphClient.CreateTeam(ctx, body)
	if err != nil {
		return err
	}

	status, err := s.awaitOperation(ctx, handle)
	if err != nil {
		return err
	}
	if status.TargetResourceID != "" {
		// Persist the id as soon as it is known, before confirming full
		// provisioning, so a crash or the compensation path can find and
		// delete a partially provisioned team instead of leaking it.
		request.CreatedTeamID = status.TargetResourceID
		if request, err = s.requestStore.Upsert(ctx, request); err != nil {
			return err
		}
	}
	if status.State == OperationStateFailed {
		return fmt.Errorf("%w: attempt %d", ErrOperationFailed, attempt)
	}
	if status.TargetResourceID == "" {
		return ErrNoOperationTargetID
	}

	if err := s.awaitReplication(ctx, request.CreatedTeamID); err != nil {
		return err
	}

	request, fire := s.prepareMemberships(ctx, request)
	if request, err = s.requestStore.Upsert(ctx, request); err != nil {
		return err
	}
	fire()

	if err := request.TransitionTo(RequestStatusComplete, s.now()); err != nil {
		return err
	}
	if _, err = s.requestStore.Upsert(ctx, request); err != nil {
		return err
	}

	s.observeOperation(ctx, startedAt, "provision", nil, map[string]any{
		"request_id": request.ID,
		"team_id":    request.CreatedTeamID,
		"attempt":    attempt,
	})
	return nil
}

// awaitOperation waits the initial delay, then polls the async creation at a
// fixed interval until it leaves the pending state. The wait is unbounded
// while pending; only context cancellation cuts it short.
func (s *Service) awaitOperation(ctx context.Context, handle OperationHandle) (OperationStatus, error) {
	if handle.IsZero() {
		return OperationStatus{}, fmt.Errorf("core: operation handle is required")
	}
	if err := waitWithContext(ctx, s.config.Provisioning.CreationPollDelay); err != nil {
		return OperationStatus{}, err
	}
	for {
		status, err := s.graphClient.PollOperation(ctx, handle)
		if err != nil {
			return OperationStatus{}, err
		}
		if status.State != OperationStatePending {
			return status, nil
		}
		if err := waitWithContext(ctx, s.config.Provisioning.PollInterval); err != nil {
			return OperationStatus{}, err
		}
	}
}

// awaitReplication polls the backing group until it is visible. NotFound
// means not yet replicated and is retried indefinitely; any other error is
// an attempt failure.
func (s *Service) awaitReplication(ctx context.Context, teamID string) error {
	for {
		_, err := s.graphClient.GetGroup(ctx, teamID)
		if err == nil {
			return nil
		}
		if !IsNotFound(err) {
			return err
		}
		if err := waitWithContext(ctx, s.config.Provisioning.ReplicationPollInterval); err != nil {
			return err
		}
	}
}

// prepareMemberships audits the member, owner and settings calls on the
// request and returns a fire function that dispatches them. Each call is
// best-effort: dispatched without waiting, not retried, failures logged and
// never surfaced into the workflow's error path. The caller persists the
// audited request before firing.
func (s *Service) prepareMemberships(ctx context.Context, request TeamRequest) (TeamRequest, func()) {
	teamID := request.CreatedTeamID

	type firedCall struct {
		run func() error
		uri string
	}
	var calls []firedCall

	for _, member := range request.TeamMembers {
		body := memberBody(member, "member")
		uri := fmt.Sprintf("/teams/%s/members", teamID)
		request.AppendGraphRequest(uri, body)
		calls = append(calls, firedCall{uri: uri, run: func() error {
			return s.graphClient.AddTeamMember(ctx, teamID, body)
		}})
	}
	// Owners include the initial owner from the creation payload; the
	// duplicate add is accepted by the external service.
	for _, owner := range request.TeamOwners {
		body := memberBody(owner, "owner")
		uri := fmt.Sprintf("/teams/%s/owners", teamID)
		request.AppendGraphRequest(uri, body)
		calls = append(calls, firedCall{uri: uri, run: func() error {
			return s.graphClient.AddTeamMember(ctx, teamID, body)
		}})
	}
	if !request.TeamAllowGuests {
		body := guestSettingBody()
		uri := fmt.Sprintf("/groups/%s/settings", teamID)
		request.AppendGraphRequest(uri, body)
		calls = append(calls, firedCall{uri: uri, run: func() error {
			return s.graphClient.CreateGroupSetting(ctx, teamID, body)
		}})
	}

	requestID := request.ID
	fire := func() {
		for _, call := range calls {
			go func(call firedCall) {
				if err := call.run(); err != nil {
					s.logError(ctx, "membership call failed", map[string]any{
						"request_id": requestID,
						"target_uri": call.uri,
						"error":      err.Error(),
					})
				}
			}(call)
		}
	}
	return request, fire
}

// compensate deletes any partially provisioned team recorded on the request
// and clears the id so the next attempt starts clean. Best effort: its own
// failures are logged and swallowed.
func (s *Service) compensate(ctx context.Context, requestID string, ownerID string) {
	request, err := s.requestStore.Get(ctx, requestID, ownerID)
	if err != nil {
		s.logError(ctx, "compensation load failed", map[string]any{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return
	}
	if strings.TrimSpace(request.CreatedTeamID) == "" {
		return
	}
	if err := s.graphClient.DeleteTeam(ctx, request.CreatedTeamID); err != nil {
		s.logError(ctx, "compensating delete failed", map[string]any{
			"request_id": requestID,
			"team_id":    request.CreatedTeamID,
			"error":      err.Error(),
		})
	}
	request.CreatedTeamID = ""
	if _, err := s.requestStore.Upsert(ctx, request); err != nil {
		s.logError(ctx, "compensation persist failed", map[string]any{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

func (s *Service) recordTerminalFailure(ctx context.Context, requestID string, ownerID string, cause error) error {
	request, err := s.requestStore.Get(ctx, requestID, ownerID)
	if err != nil {
		return err
	}
	if cause != nil {
		request.Error = cause.Error()
	}
	if err := request.TransitionTo(RequestStatusFailed, s.now()); err != nil {
		return err
	}
	if _, err := s.requestStore.Upsert(ctx, request); err != nil {
		return err
	}
	s.logError(ctx, "provisioning failed permanently", map[string]any{
		"request_id": requestID,
		"error":      request.Error,
	})
	return nil
}

func (s *Service) leaseTTL() time.Duration {
	ttl := s.config.Provisioning.LeaseTTL
	if ttl <= 0 {
		ttl = DefaultConfig().Provisioning.LeaseTTL
	}
	return ttl
}

func buildTeamCreateBody(request TeamRequest) TeamCreateBody {
	return TeamCreateBody{
		TemplateBind: fmt.Sprintf("https://graph.microsoft.com/v1.0/teamsTemplates('%s')", request.TeamTemplate.ID),
		DisplayName:  request.TeamDisplayName,
		Description:  request.TeamDescription,
		Visibility:   string(request.TeamVisibility),
		Members: []ConversationMemberBody{
			memberBody(request.TeamOwners[0], "owner"),
		},
	}
}

func memberBody(userBind string, role string) ConversationMemberBody {
	return ConversationMemberBody{
		ODataType: memberODataType,
		Roles:     []string{role},
		UserBind:  userBind,
	}
}

func guestSettingBody() GroupSettingBody {
	return GroupSettingBody{
		DisplayName: "GroupSettings",
		TemplateID:  guestSettingTemplateID,
		Values: []GroupSettingValue{
			{Name: "AllowToAddGuests", Value: "false"},
		},
	}
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
