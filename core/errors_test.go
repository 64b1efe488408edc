package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestTeamsErrorMapper_SentinelCategories(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category goerrors.Category
		textCode string
		httpCode int
	}{
		{"not found", ErrRequestNotFound, goerrors.CategoryNotFound, TeamsErrorRequestNotFound, http.StatusNotFound},
		{"operation failed", ErrOperationFailed, goerrors.CategoryExternal, TeamsErrorProvisioningFailed, http.StatusBadGateway},
		{"creation not accepted", ErrCreationNotAccepted, goerrors.CategoryExternal, TeamsErrorProvisioningFailed, http.StatusBadGateway},
		{"missing field", ErrMissingRequiredField, goerrors.CategoryBadInput, TeamsErrorBadInput, http.StatusBadRequest},
		{"insufficient owners", ErrInsufficientOwners, goerrors.CategoryBadInput, TeamsErrorBadInput, http.StatusBadRequest},
		{"invalid transition", ErrInvalidStatusTransition, goerrors.CategoryConflict, TeamsErrorConflict, http.StatusConflict},
		{"lease held", ErrRequestLeaseHeld, goerrors.CategoryConflict, TeamsErrorConflict, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := teamsErrorMapper(fmt.Errorf("wrapped: %w", tc.err))
			if mapped == nil {
				t.Fatal("expected mapped error")
			}
			if mapped.Category != tc.category {
				t.Fatalf("expected category %s, got %s", tc.category, mapped.Category)
			}
			if mapped.TextCode != tc.textCode {
				t.Fatalf("expected text code %s, got %s", tc.textCode, mapped.TextCode)
			}
			if mapped.Code != tc.httpCode {
				t.Fatalf("expected http code %d, got %d", tc.httpCode, mapped.Code)
			}
		})
	}
}

func TestTeamsErrorMapper_KeepsSentinelsMatchable(t *testing.T) {
	mapped := teamsErrorMapper(fmt.Errorf("provision run: %w", ErrRequestLeaseHeld))
	if mapped == nil {
		t.Fatal("expected mapped error")
	}
	if !errors.Is(mapped, ErrRequestLeaseHeld) {
		t.Fatal("expected mapped error to still match the lease sentinel")
	}
}

func TestTeamsErrorMapper_PreservesRichErrors(t *testing.T) {
	original := goerrors.New("directory rejected the call", goerrors.CategoryExternal).
		WithTextCode(TeamsErrorGraph)
	mapped := teamsErrorMapper(original)
	if mapped != original {
		t.Fatal("expected the rich error to pass through")
	}
	if mapped.Code != http.StatusBadGateway {
		t.Fatalf("expected envelope to fill the http code, got %d", mapped.Code)
	}
}

func TestTeamsErrorMapper_NilAndFallback(t *testing.T) {
	if teamsErrorMapper(nil) != nil {
		t.Fatal("nil maps to nil")
	}
	mapped := teamsErrorMapper(fmt.Errorf("something odd happened"))
	if mapped == nil {
		t.Fatal("expected mapped error")
	}
	if mapped.TextCode == "" {
		t.Fatal("expected a default text code")
	}
	if mapped.Code == 0 {
		t.Fatal("expected a default http code")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(ErrRequestNotFound) {
		t.Fatal("sentinel must match")
	}
	if !IsNotFound(goerrors.New("missing", goerrors.CategoryNotFound)) {
		t.Fatal("not-found category must match")
	}
	if IsNotFound(goerrors.New("boom", goerrors.CategoryExternal)) {
		t.Fatal("other categories must not match")
	}
	if IsNotFound(nil) {
		t.Fatal("nil must not match")
	}
}
