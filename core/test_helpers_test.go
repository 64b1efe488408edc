package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type memoryRequestStore struct {
	mu        sync.Mutex
	byID      map[string]TeamRequest
	config    *AppConfig
	snapshots []TeamRequest
}

func newMemoryRequestStore() *memoryRequestStore {
	return &memoryRequestStore{byID: map[string]TeamRequest{}}
}

func (s *memoryRequestStore) Get(_ context.Context, id string, ownerID string) (TeamRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.byID[id]
	if !ok || request.RequestedByUserID != ownerID {
		return TeamRequest{}, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	return cloneRequest(request), nil
}

func (s *memoryRequestStore) ListForOwner(_ context.Context, ownerID string, limit int) ([]TeamRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []TeamRequest
	for _, request := range s.byID {
		if request.RequestedByUserID != ownerID {
			continue
		}
		out = append(out, cloneRequest(request))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memoryRequestStore) Upsert(_ context.Context, request TeamRequest) (TeamRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(request.ID) == "" {
		return TeamRequest{}, fmt.Errorf("memory request store: id is required")
	}
	s.byID[request.ID] = cloneRequest(request)
	s.snapshots = append(s.snapshots, cloneRequest(request))
	return cloneRequest(request), nil
}

func (s *memoryRequestStore) GetConfiguration(_ context.Context) (AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		config := DefaultAppConfig()
		s.config = &config
	}
	return *s.config, nil
}

func (s *memoryRequestStore) UpsertConfiguration(_ context.Context, config AppConfig) (AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	config.ID = AppConfigID
	s.config = &config
	return config, nil
}

func (s *memoryRequestStore) snapshotStatuses(id string) []RequestStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []RequestStatus
	for _, snapshot := range s.snapshots {
		if snapshot.ID == id {
			out = append(out, snapshot.Status)
		}
	}
	return out
}

func cloneRequest(request TeamRequest) TeamRequest {
	copied := request
	copied.StatusHistory = append([]StatusHistoryEntry(nil), request.StatusHistory...)
	copied.GraphRequests = append([]GraphRequestEntry(nil), request.GraphRequests...)
	copied.TeamOwners = append([]string(nil), request.TeamOwners...)
	copied.TeamMembers = append([]string(nil), request.TeamMembers...)
	return copied
}

// pollScript is one scripted PollOperation response.
type pollScript struct {
	status OperationStatus
	err    error
}

// scriptedGraphClient replays canned responses and records every mutating
// call. Scripts are consumed in order; when a script runs out the zero
// behavior applies (success, empty result).
type scriptedGraphClient struct {
	mu sync.Mutex

	users           []DirectoryUser
	teamsByName     []TeamSummary
	validateScripts [][]ValidationViolation
	validateErr     error

	createHandle OperationHandle
	createErrs   []error
	createCalls  []TeamCreateBody

	pollScripts []pollScript
	pollCalls   int

	getGroupErrs  []error
	getGroupCalls int

	memberCalls  []ConversationMemberBody
	settingCalls []GroupSettingBody
	deleteCalls  []string
	deleteErr    error
}

func (c *scriptedGraphClient) SearchUsers(context.Context, string) ([]DirectoryUser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]DirectoryUser(nil), c.users...), nil
}

func (c *scriptedGraphClient) FindTeamsByName(context.Context, string) ([]TeamSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]TeamSummary(nil), c.teamsByName...), nil
}

func (c *scriptedGraphClient) ValidateProperties(context.Context, ValidationProperties) ([]ValidationViolation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.validateErr != nil {
		return nil, c.validateErr
	}
	if len(c.validateScripts) == 0 {
		return nil, nil
	}
	violations := c.validateScripts[0]
	c.validateScripts = c.validateScripts[1:]
	return violations, nil
}

func (c *scriptedGraphClient) CreateTeam(_ context.Context, body TeamCreateBody) (OperationHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createCalls = append(c.createCalls, body)
	if len(c.createErrs) > 0 {
		err := c.createErrs[0]
		c.createErrs = c.createErrs[1:]
		if err != nil {
			return OperationHandle{}, err
		}
	}
	handle := c.createHandle
	if handle.IsZero() {
		handle = OperationHandle{Location: "/teams('t1')/operations('op1')"}
	}
	return handle, nil
}

func (c *scriptedGraphClient) PollOperation(context.Context, OperationHandle) (OperationStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollCalls++
	if len(c.pollScripts) == 0 {
		return OperationStatus{State: OperationStateSucceeded, TargetResourceID: "team-1"}, nil
	}
	script := c.pollScripts[0]
	c.pollScripts = c.pollScripts[1:]
	return script.status, script.err
}

func (c *scriptedGraphClient) GetGroup(_ context.Context, groupID string) (Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getGroupCalls++
	if len(c.getGroupErrs) > 0 {
		err := c.getGroupErrs[0]
		c.getGroupErrs = c.getGroupErrs[1:]
		if err != nil {
			return Group{}, err
		}
	}
	return Group{ID: groupID}, nil
}

func (c *scriptedGraphClient) AddTeamMember(_ context.Context, _ string, member ConversationMemberBody) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memberCalls = append(c.memberCalls, member)
	return nil
}

func (c *scriptedGraphClient) CreateGroupSetting(_ context.Context, _ string, setting GroupSettingBody) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settingCalls = append(c.settingCalls, setting)
	return nil
}

func (c *scriptedGraphClient) DeleteTeam(_ context.Context, teamID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteCalls = append(c.deleteCalls, teamID)
	return c.deleteErr
}

func (c *scriptedGraphClient) deletedTeams() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.deleteCalls...)
}

func (c *scriptedGraphClient) recordedMembers() []ConversationMemberBody {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ConversationMemberBody(nil), c.memberCalls...)
}

func (c *scriptedGraphClient) recordedSettings() []GroupSettingBody {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]GroupSettingBody(nil), c.settingCalls...)
}

// fastProvisionConfig returns a runtime config with sub-millisecond waits so
// workflow tests finish quickly.
func fastProvisionConfig() Config {
	cfg := DefaultConfig()
	cfg.Provisioning.RetryBackoff = time.Millisecond
	cfg.Provisioning.CreationPollDelay = time.Millisecond
	cfg.Provisioning.PollInterval = time.Millisecond
	cfg.Provisioning.ReplicationPollInterval = time.Millisecond
	return cfg
}

func seedRequest(t *testing.T, store *memoryRequestStore, id string) TeamRequest {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	request := TeamRequest{
		ID:                id,
		RequestedByUserID: "user-1",
		RequestedAt:       now,
		TeamDisplayName:   "Finance Ops",
		TeamDescription:   "Finance operations workspace",
		TeamVisibility:    TeamVisibilityPrivate,
		TeamTemplate:      TeamTemplate{ID: "standard", DisplayName: "Standard", ShortDescription: "Standard Team"},
		TeamOwners:        []string{UserBindURL("owner-1"), UserBindURL("owner-2")},
		TeamMembers:       []string{UserBindURL("member-1")},
		Status:            RequestStatusRequested,
		StatusHistory:     []StatusHistoryEntry{{Status: RequestStatusRequested, At: now}},
	}
	if _, err := store.Upsert(context.Background(), request); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return request
}

// waitFor polls a condition until it holds or the deadline passes.
func waitFor(t *testing.T, condition func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met: %s", message)
}
