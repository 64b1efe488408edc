package graph

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/leeford/team-request-app/core"
)

// statusError converts a non-success response into a categorized error,
// carrying the upstream code and message when the body parses as a Graph
// error envelope.
func statusError(operation string, statusCode int, body []byte) *goerrors.Error {
	message := fmt.Sprintf("graph: %s returned status %d", operation, statusCode)
	var envelope errorEnvelope
	if len(body) > 0 && json.Unmarshal(body, &envelope) == nil {
		if upstream := strings.TrimSpace(envelope.Error.Message); upstream != "" {
			message = fmt.Sprintf("%s: %s", message, upstream)
		}
	}

	err := goerrors.New(message, categoryForStatus(statusCode)).WithCode(statusCode)
	if code := strings.TrimSpace(envelope.Error.Code); code != "" {
		err = err.WithMetadata(map[string]any{"graph_code": code})
	}
	return err
}

func categoryForStatus(statusCode int) goerrors.Category {
	switch statusCode {
	case http.StatusNotFound:
		return goerrors.CategoryNotFound
	case http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case http.StatusForbidden:
		return goerrors.CategoryAuthz
	case http.StatusConflict:
		return goerrors.CategoryConflict
	case http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	}
	if statusCode >= 400 && statusCode < 500 {
		return goerrors.CategoryBadInput
	}
	return goerrors.CategoryExternal
}

// parseValidationViolations extracts structured violations from a 422
// validateProperties response. A body that does not parse, or parses with no
// details, yields a single violation carrying the top-level message so
// callers always get something actionable.
func parseValidationViolations(body []byte) ([]core.ValidationViolation, error) {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return []core.ValidationViolation{{
			Code:    "ValidationFailed",
			Message: "The proposed properties failed validation",
		}}, nil
	}
	if len(envelope.Error.Details) == 0 {
		message := strings.TrimSpace(envelope.Error.Message)
		if message == "" {
			message = "The proposed properties failed validation"
		}
		return []core.ValidationViolation{{
			Code:    strings.TrimSpace(envelope.Error.Code),
			Message: message,
		}}, nil
	}
	violations := make([]core.ValidationViolation, 0, len(envelope.Error.Details))
	for _, detail := range envelope.Error.Details {
		violations = append(violations, core.ValidationViolation{
			Code:        strings.TrimSpace(detail.Code),
			Message:     strings.TrimSpace(detail.Message),
			Target:      strings.TrimSpace(detail.Target),
			BlockedWord: strings.TrimSpace(detail.BlockedWord),
			Prefix:      detail.Prefix,
			Suffix:      detail.Suffix,
		})
	}
	return violations, nil
}
