package core

import (
	"context"
	"fmt"
	"strings"
)

// maxNameRewrites bounds how many times a rejected name is rewritten with
// directory-policy decorations before validation gives up.
const maxNameRewrites = 3

// NameValidationResult reports the outcome of validating a proposed team
// name. TeamDisplayName carries the final name, including any prefix or
// suffix the directory naming policy imposed. Errors is empty when the name
// is acceptable.
type NameValidationResult struct {
	Query           string   `json:"query"`
	TeamDisplayName string   `json:"teamDisplayName"`
	Errors          []string `json:"errors"`
}

func (r NameValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// NameValidator negotiates a proposed team name with the directory: it
// checks policy compliance, applies any required prefix or suffix, and then
// checks the (possibly rewritten) name for uniqueness.
type NameValidator struct {
	client GraphClient
}

func NewNameValidator(client GraphClient) *NameValidator {
	return &NameValidator{client: client}
}

func (v *NameValidator) Validate(ctx context.Context, onBehalfOfUserID string, proposedName string) (NameValidationResult, error) {
	result := NameValidationResult{
		Query:           proposedName,
		TeamDisplayName: strings.TrimSpace(proposedName),
	}
	if v == nil || v.client == nil {
		return result, fmt.Errorf("core: graph client is required for name validation")
	}
	if result.TeamDisplayName == "" {
		result.Errors = append(result.Errors, "A team name is required")
		return result, nil
	}

	base := result.TeamDisplayName
	for rewrite := 0; ; rewrite++ {
		violations, err := v.client.ValidateProperties(ctx, ValidationProperties{
			EntityType:       "Group",
			DisplayName:      result.TeamDisplayName,
			OnBehalfOfUserID: onBehalfOfUserID,
		})
		if err != nil {
			return result, err
		}
		if len(violations) == 0 {
			break
		}

		rewritten := false
		for _, violation := range violations {
			switch violation.Code {
			case ViolationContainsBlockedWord:
				// Blocked words cannot be negotiated away; no rewrite.
				word := violation.BlockedWord
				if word == "" {
					word = "a blocked word"
				}
				result.Errors = append(result.Errors, fmt.Sprintf("The name contains the blocked word %q", word))
			case ViolationMissingPrefixSuffix:
				if violation.Target != ViolationTargetDisplayName {
					result.Errors = append(result.Errors, violation.Message)
					continue
				}
				result.TeamDisplayName = violation.Prefix + base + violation.Suffix
				rewritten = true
			default:
				result.Errors = append(result.Errors, violation.Message)
			}
		}
		if !rewritten || len(result.Errors) > 0 || rewrite >= maxNameRewrites {
			break
		}
	}
	if len(result.Errors) > 0 {
		return result, nil
	}

	teams, err := v.client.FindTeamsByName(ctx, result.TeamDisplayName)
	if err != nil {
		return result, err
	}
	for _, team := range teams {
		if strings.EqualFold(strings.TrimSpace(team.DisplayName), result.TeamDisplayName) {
			result.Errors = append(result.Errors, fmt.Sprintf("The name %q is already in use", result.TeamDisplayName))
			break
		}
	}
	return result, nil
}
