package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// GraphClient is the typed façade over the external directory/graph API.
// Side effects are strictly external; the orchestrator decides which calls
// are retried and which are best-effort.
type GraphClient interface {
	// SearchUsers looks up directory users for owner/member selection.
	SearchUsers(ctx context.Context, query string) ([]DirectoryUser, error)
	// FindTeamsByName returns existing teams with the exact display name.
	FindTeamsByName(ctx context.Context, displayName string) ([]TeamSummary, error)
	// ValidateProperties checks candidate group properties ahead of creation.
	// A nil slice means the properties passed validation; a non-nil slice
	// carries the structured violations of a validation failure.
	ValidateProperties(ctx context.Context, props ValidationProperties) ([]ValidationViolation, error)
	// CreateTeam submits an asynchronous team creation. Acceptance yields an
	// operation handle; a non-accepted response is returned as an error.
	CreateTeam(ctx context.Context, body TeamCreateBody) (OperationHandle, error)
	// PollOperation fetches the current status of an in-flight creation.
	PollOperation(ctx context.Context, handle OperationHandle) (OperationStatus, error)
	// GetGroup reads the backing group; a not-yet-replicated group surfaces
	// as an error satisfying IsNotFound.
	GetGroup(ctx context.Context, groupID string) (Group, error)
	AddTeamMember(ctx context.Context, teamID string, member ConversationMemberBody) error
	CreateGroupSetting(ctx context.Context, groupID string, setting GroupSettingBody) error
	DeleteTeam(ctx context.Context, teamID string) error
}

// ValidationProperties is the payload of a directory validateProperties call.
type ValidationProperties struct {
	EntityType       string `json:"entityType"`
	DisplayName      string `json:"displayName"`
	OnBehalfOfUserID string `json:"onBehalfOfUserId,omitempty"`
}

const (
	ViolationContainsBlockedWord = "ContainsBlockedWord"
	ViolationMissingPrefixSuffix = "MissingPrefixSuffix"
	ViolationTargetDisplayName   = "displayName"
)

// ValidationViolation is one entry of a structured 422 validation failure.
type ValidationViolation struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Target      string `json:"target,omitempty"`
	BlockedWord string `json:"blockedWord,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
	Suffix      string `json:"suffix,omitempty"`
}

// TeamCreateBody is the wire shape of a team creation request.
type TeamCreateBody struct {
	TemplateBind string                   `json:"template@odata.bind"`
	DisplayName  string                   `json:"displayName"`
	Description  string                   `json:"description"`
	Visibility   string                   `json:"visibility"`
	Members      []ConversationMemberBody `json:"members"`
}

// ConversationMemberBody is the wire shape of a team membership grant.
type ConversationMemberBody struct {
	ODataType string   `json:"@odata.type"`
	Roles     []string `json:"roles"`
	UserBind  string   `json:"user@odata.bind"`
}

// GroupSettingBody is the wire shape of a directory group setting.
type GroupSettingBody struct {
	DisplayName string              `json:"displayName"`
	TemplateID  string              `json:"templateId"`
	Values      []GroupSettingValue `json:"values"`
}

type GroupSettingValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RequestStore is the persistence façade for team requests and the singleton
// app configuration. Upsert is the only mutation path; it fully replaces the
// stored record and returns the stored revision.
type RequestStore interface {
	Get(ctx context.Context, id string, ownerID string) (TeamRequest, error)
	ListForOwner(ctx context.Context, ownerID string, limit int) ([]TeamRequest, error)
	Upsert(ctx context.Context, request TeamRequest) (TeamRequest, error)
	GetConfiguration(ctx context.Context) (AppConfig, error)
	UpsertConfiguration(ctx context.Context, config AppConfig) (AppConfig, error)
}

type LockHandle interface {
	Unlock(ctx context.Context) error
}

// RequestLocker leases a request id for the lifetime of an orchestration
// run, enforcing at most one active run per request.
type RequestLocker interface {
	Acquire(ctx context.Context, requestID string, ttl time.Duration) (LockHandle, error)
}

// ProvisionDispatcher hands an accepted request to the orchestrator,
// detached from the caller. The only observable outcome of a dispatched run
// is the persisted record.
type ProvisionDispatcher interface {
	Dispatch(ctx context.Context, requestID string, ownerID string) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
