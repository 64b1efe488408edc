package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TeamsErrorBadInput           = "TEAMS_BAD_INPUT"
	TeamsErrorRequestNotFound    = "TEAMS_REQUEST_NOT_FOUND"
	TeamsErrorNameRejected       = "TEAMS_NAME_REJECTED"
	TeamsErrorProvisioningFailed = "TEAMS_PROVISIONING_FAILED"
	TeamsErrorGraph              = "TEAMS_GRAPH_ERROR"
	TeamsErrorConflict           = "TEAMS_CONFLICT"
	TeamsErrorInternal           = "TEAMS_INTERNAL_ERROR"
)

func teamsErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureTeamsErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case errors.Is(err, ErrRequestNotFound):
		return wrapTeamsError(err, goerrors.CategoryNotFound, TeamsErrorRequestNotFound, "team request not found")
	case errors.Is(err, ErrOperationFailed), errors.Is(err, ErrCreationNotAccepted), errors.Is(err, ErrNoOperationTargetID):
		return wrapTeamsError(err, goerrors.CategoryExternal, TeamsErrorProvisioningFailed, "team provisioning failed")
	case errors.Is(err, ErrMissingRequiredField), errors.Is(err, ErrInsufficientOwners), errors.Is(err, ErrInvalidVisibility):
		return wrapTeamsError(err, goerrors.CategoryBadInput, TeamsErrorBadInput, "invalid team request input")
	case errors.Is(err, ErrInvalidStatusTransition), errors.Is(err, ErrRequestLeaseHeld):
		return wrapTeamsError(err, goerrors.CategoryConflict, TeamsErrorConflict, "team request is busy")
	case strings.Contains(msg, "lease already held"), strings.Contains(msg, "lock already held"):
		return newTeamsError(err.Error(), goerrors.CategoryConflict, TeamsErrorConflict)
	case strings.Contains(msg, "graph"):
		return newTeamsError(err.Error(), goerrors.CategoryExternal, TeamsErrorGraph)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newTeamsError(err.Error(), goerrors.CategoryBadInput, TeamsErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureTeamsErrorEnvelope(mapped)
}

func newTeamsError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureTeamsErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

// wrapTeamsError keeps the source error in the envelope so callers can
// still match sentinels with errors.Is after mapping.
func wrapTeamsError(err error, category goerrors.Category, textCode string, message string) *goerrors.Error {
	return ensureTeamsErrorEnvelope(
		goerrors.Wrap(err, category, message).
			WithTextCode(textCode),
	)
}

func ensureTeamsErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = teamsHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTeamsTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTeamsTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return TeamsErrorBadInput
	case goerrors.CategoryNotFound:
		return TeamsErrorRequestNotFound
	case goerrors.CategoryConflict:
		return TeamsErrorConflict
	case goerrors.CategoryExternal:
		return TeamsErrorGraph
	default:
		return TeamsErrorInternal
	}
}

func teamsHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether the error represents an explicit not-found
// signal from the store or the graph (the latter is a retryable condition
// during replication polling).
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRequestNotFound) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryNotFound
	}
	return false
}
