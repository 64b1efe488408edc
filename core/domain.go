package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidVisibility       = errors.New("core: invalid team visibility")
	ErrInvalidStatusTransition = errors.New("core: invalid request status transition")
	ErrRequestNotFound         = errors.New("core: team request not found")
	ErrMissingRequiredField    = errors.New("core: required field is missing")
	ErrInsufficientOwners      = errors.New("core: not enough team owners")
	ErrNoOperationTargetID     = errors.New("core: async operation returned no target resource id")
	ErrOperationFailed         = errors.New("core: async creation operation failed")
	ErrCreationNotAccepted     = errors.New("core: team creation was not accepted")
	ErrRequestLeaseHeld        = errors.New("core: provisioning lease already held")
)

type TeamVisibility string

const (
	TeamVisibilityPublic  TeamVisibility = "public"
	TeamVisibilityPrivate TeamVisibility = "private"
)

func (v TeamVisibility) Validate() error {
	normalized := TeamVisibility(strings.TrimSpace(strings.ToLower(string(v))))
	if normalized != TeamVisibilityPublic && normalized != TeamVisibilityPrivate {
		return fmt.Errorf("%w: %q", ErrInvalidVisibility, v)
	}
	return nil
}

type RequestStatus string

const (
	RequestStatusRequested RequestStatus = "Requested"
	RequestStatusApproved  RequestStatus = "Approved"
	RequestStatusDeclined  RequestStatus = "Declined"
	RequestStatusCreating  RequestStatus = "Creating"
	RequestStatusComplete  RequestStatus = "Complete"
	RequestStatusFailed    RequestStatus = "Failed"
)

// IsTerminal reports whether no further transition may leave the status.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusDeclined, RequestStatusComplete, RequestStatusFailed:
		return true
	}
	return false
}

type StatusHistoryEntry struct {
	Status RequestStatus
	At     time.Time
}

// GraphRequestEntry is one entry of the request's audit log: the target URI
// and body of a mutating external call, recorded before the call is sent.
type GraphRequestEntry struct {
	TargetURI string
	Body      any
}

type TeamTemplate struct {
	ID               string
	DisplayName      string
	ShortDescription string
}

// TeamRequest is the unit of work: a persisted provisioning request together
// with its orchestration state. Once intake has created it, the record is
// mutated exclusively by the orchestrator run that owns it.
type TeamRequest struct {
	ID                string
	RequestedByUserID string
	RequestedAt       time.Time

	TeamDisplayName string
	TeamDescription string
	TeamVisibility  TeamVisibility
	TeamAllowGuests bool
	TeamTemplate    TeamTemplate
	TeamOwners      []string
	TeamMembers     []string

	Status        RequestStatus
	StatusHistory []StatusHistoryEntry
	CreatedTeamID string
	Error         string
	GraphRequests []GraphRequestEntry
}

// TransitionTo advances the request status and appends the matching history
// entry. Re-entering Creating is the only permitted self-loop; it still
// appends a history entry, one per attempt.
func (r *TeamRequest) TransitionTo(status RequestStatus, now time.Time) error {
	if r == nil {
		return nil
	}
	if !requestTransitionAllowed(r.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, r.Status, status)
	}
	r.Status = status
	r.StatusHistory = append(r.StatusHistory, StatusHistoryEntry{Status: status, At: now.UTC()})
	return nil
}

func requestTransitionAllowed(current, next RequestStatus) bool {
	allowed := map[RequestStatus]map[RequestStatus]struct{}{
		RequestStatusRequested: {
			RequestStatusApproved: {},
			RequestStatusDeclined: {},
			RequestStatusCreating: {},
		},
		RequestStatusApproved: {
			RequestStatusCreating: {},
			RequestStatusDeclined: {},
		},
		RequestStatusCreating: {
			RequestStatusCreating: {},
			RequestStatusComplete: {},
			RequestStatusFailed:   {},
		},
	}
	_, ok := allowed[current][next]
	return ok
}

// AppendGraphRequest records an outgoing external call in the audit log.
func (r *TeamRequest) AppendGraphRequest(targetURI string, body any) {
	if r == nil {
		return
	}
	r.GraphRequests = append(r.GraphRequests, GraphRequestEntry{
		TargetURI: strings.TrimSpace(targetURI),
		Body:      body,
	})
}

// Validate checks the intake contract: every required field present, at
// least minimumOwners owners. Members are optional.
func (r *TeamRequest) Validate(minimumOwners int) error {
	if r == nil {
		return fmt.Errorf("%w: request is nil", ErrMissingRequiredField)
	}
	if strings.TrimSpace(r.RequestedByUserID) == "" {
		return fmt.Errorf("%w: requested by user id", ErrMissingRequiredField)
	}
	if strings.TrimSpace(r.TeamDisplayName) == "" {
		return fmt.Errorf("%w: team display name", ErrMissingRequiredField)
	}
	if strings.TrimSpace(r.TeamDescription) == "" {
		return fmt.Errorf("%w: team description", ErrMissingRequiredField)
	}
	if strings.TrimSpace(r.TeamTemplate.ID) == "" {
		return fmt.Errorf("%w: team template", ErrMissingRequiredField)
	}
	if err := r.TeamVisibility.Validate(); err != nil {
		return err
	}
	if len(r.TeamOwners) == 0 {
		return fmt.Errorf("%w: team owners", ErrMissingRequiredField)
	}
	if minimumOwners > 0 && len(r.TeamOwners) < minimumOwners {
		return fmt.Errorf("%w: got %d, need %d", ErrInsufficientOwners, len(r.TeamOwners), minimumOwners)
	}
	return nil
}

// AppConfig is the process-wide singleton configuration record, lazily
// created with defaults on first read.
type AppConfig struct {
	ID                     string
	TeamAllowGuestsDefault bool
	TeamVisibilityDefault  TeamVisibility
	MinimumTeamOwners      int
	TeamTemplates          []TeamTemplate
}

const AppConfigID = "0"

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ID:                     AppConfigID,
		TeamAllowGuestsDefault: false,
		TeamVisibilityDefault:  TeamVisibilityPrivate,
		MinimumTeamOwners:      2,
		TeamTemplates: []TeamTemplate{
			{
				ID:               "standard",
				DisplayName:      "Standard",
				ShortDescription: "Standard Team",
			},
		},
	}
}

// OperationHandle is the ephemeral reference returned when an asynchronous
// team creation is accepted; it is only ever used to poll for completion.
type OperationHandle struct {
	Location string
}

func (h OperationHandle) IsZero() bool {
	return strings.TrimSpace(h.Location) == ""
}

type OperationState string

const (
	OperationStatePending   OperationState = "pending"
	OperationStateSucceeded OperationState = "succeeded"
	OperationStateFailed    OperationState = "failed"
)

// OperationStatus is a snapshot of an in-flight async creation. A failed
// operation may still carry the id of a resource it partially materialized;
// the orchestrator records it so compensation can delete it.
type OperationStatus struct {
	State            OperationState
	TargetResourceID string
}

type DirectoryUser struct {
	ID          string
	DisplayName string
	JobTitle    string
}

type TeamSummary struct {
	ID          string
	DisplayName string
}

type Group struct {
	ID          string
	DisplayName string
}
