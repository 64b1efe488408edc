package graph

import (
	"strings"

	"github.com/leeford/team-request-app/core"
)

type userPayload struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	JobTitle    string `json:"jobTitle"`
}

type groupPayload struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// operationPayload is the wire shape of a teamsAsyncOperation resource.
type operationPayload struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	TargetResourceID string `json:"targetResourceId"`
	Error            *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// mapOperationState folds the service's operation statuses into the three
// states the workflow distinguishes. Anything not explicitly terminal is
// still pending.
func mapOperationState(status string) core.OperationState {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "succeeded":
		return core.OperationStateSucceeded
	case "failed":
		return core.OperationStateFailed
	default:
		return core.OperationStatePending
	}
}

// errorEnvelope is the standard Graph error body.
type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details []violationDetail `json:"details"`
		Inner   map[string]any    `json:"innerError"`
	} `json:"error"`
}

type violationDetail struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Target      string `json:"target"`
	BlockedWord string `json:"blockedWord"`
	Prefix      string `json:"prefix"`
	Suffix      string `json:"suffix"`
}
