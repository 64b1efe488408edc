package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/leeford/team-request-app/core"
)

type stubReadService struct {
	getRequestFn       func(ctx context.Context, id string, ownerID string) (core.TeamRequest, error)
	listRequestsFn     func(ctx context.Context, ownerID string) ([]core.TeamRequest, error)
	getConfigurationFn func(ctx context.Context) (core.AppConfig, error)
	searchUsersFn      func(ctx context.Context, query string) ([]core.DirectoryUser, error)
	validateTeamNameFn func(ctx context.Context, name string, onBehalfOfUserID string) (core.NameValidationResult, error)
}

func (s stubReadService) GetRequest(ctx context.Context, id string, ownerID string) (core.TeamRequest, error) {
	if s.getRequestFn == nil {
		return core.TeamRequest{}, fmt.Errorf("get request not configured")
	}
	return s.getRequestFn(ctx, id, ownerID)
}

func (s stubReadService) ListRequests(ctx context.Context, ownerID string) ([]core.TeamRequest, error) {
	if s.listRequestsFn == nil {
		return nil, fmt.Errorf("list requests not configured")
	}
	return s.listRequestsFn(ctx, ownerID)
}

func (s stubReadService) GetConfiguration(ctx context.Context) (core.AppConfig, error) {
	if s.getConfigurationFn == nil {
		return core.AppConfig{}, fmt.Errorf("get configuration not configured")
	}
	return s.getConfigurationFn(ctx)
}

func (s stubReadService) SearchUsers(ctx context.Context, query string) ([]core.DirectoryUser, error) {
	if s.searchUsersFn == nil {
		return nil, fmt.Errorf("search users not configured")
	}
	return s.searchUsersFn(ctx, query)
}

func (s stubReadService) ValidateTeamName(ctx context.Context, name string, onBehalfOfUserID string) (core.NameValidationResult, error) {
	if s.validateTeamNameFn == nil {
		return core.NameValidationResult{}, fmt.Errorf("validate name not configured")
	}
	return s.validateTeamNameFn(ctx, name, onBehalfOfUserID)
}

func TestGetTeamRequestQuery_DelegatesToReader(t *testing.T) {
	svc := stubReadService{
		getRequestFn: func(_ context.Context, id string, ownerID string) (core.TeamRequest, error) {
			if id != "req-1" || ownerID != "user-1" {
				t.Fatalf("unexpected lookup: %q %q", id, ownerID)
			}
			return core.TeamRequest{ID: id, Status: core.RequestStatusComplete}, nil
		},
	}

	request, err := NewGetTeamRequestQuery(svc).Query(context.Background(), GetTeamRequestMessage{
		RequestID: "req-1",
		OwnerID:   "user-1",
	})
	if err != nil {
		t.Fatalf("query request: %v", err)
	}
	if request.Status != core.RequestStatusComplete {
		t.Fatalf("unexpected request: %#v", request)
	}
}

func TestListTeamRequestsQuery_DelegatesToReader(t *testing.T) {
	svc := stubReadService{
		listRequestsFn: func(_ context.Context, ownerID string) ([]core.TeamRequest, error) {
			if ownerID != "user-1" {
				t.Fatalf("unexpected owner: %q", ownerID)
			}
			return []core.TeamRequest{{ID: "req-2"}, {ID: "req-1"}}, nil
		},
	}

	listed, err := NewListTeamRequestsQuery(svc).Query(context.Background(), ListTeamRequestsMessage{OwnerID: "user-1"})
	if err != nil {
		t.Fatalf("query list: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "req-2" {
		t.Fatalf("unexpected list: %#v", listed)
	}
}

func TestGetConfigurationQuery_DelegatesToReader(t *testing.T) {
	svc := stubReadService{
		getConfigurationFn: func(context.Context) (core.AppConfig, error) {
			return core.DefaultAppConfig(), nil
		},
	}

	config, err := NewGetConfigurationQuery(svc).Query(context.Background(), GetConfigurationMessage{})
	if err != nil {
		t.Fatalf("query configuration: %v", err)
	}
	if config.MinimumTeamOwners != 2 {
		t.Fatalf("unexpected configuration: %#v", config)
	}
}

func TestSearchUsersQuery_DelegatesToReader(t *testing.T) {
	svc := stubReadService{
		searchUsersFn: func(_ context.Context, query string) ([]core.DirectoryUser, error) {
			if query != "lee" {
				t.Fatalf("unexpected query: %q", query)
			}
			return []core.DirectoryUser{{ID: "user-1", DisplayName: "Lee"}}, nil
		},
	}

	users, err := NewSearchUsersQuery(svc).Query(context.Background(), SearchUsersMessage{Query: "lee"})
	if err != nil {
		t.Fatalf("query users: %v", err)
	}
	if len(users) != 1 || users[0].DisplayName != "Lee" {
		t.Fatalf("unexpected users: %#v", users)
	}
}

func TestValidateTeamNameQuery_DelegatesToReader(t *testing.T) {
	svc := stubReadService{
		validateTeamNameFn: func(_ context.Context, name string, onBehalfOfUserID string) (core.NameValidationResult, error) {
			if name != "Finance Ops" || onBehalfOfUserID != "user-1" {
				t.Fatalf("unexpected validation input: %q %q", name, onBehalfOfUserID)
			}
			return core.NameValidationResult{Query: name, TeamDisplayName: name}, nil
		},
	}

	result, err := NewValidateTeamNameQuery(svc).Query(context.Background(), ValidateTeamNameMessage{
		Name:             "Finance Ops",
		OnBehalfOfUserID: "user-1",
	})
	if err != nil {
		t.Fatalf("query name validation: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("expected valid result, got %#v", result)
	}
}

func TestQueries_NilReaderReturnsDependencyError(t *testing.T) {
	var q *GetTeamRequestQuery
	if _, err := q.Query(context.Background(), GetTeamRequestMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
	if _, err := NewSearchUsersQuery(nil).Query(context.Background(), SearchUsersMessage{Query: "x"}); err == nil {
		t.Fatalf("expected dependency error for nil reader")
	}
}

func TestQueryMessages_Validate(t *testing.T) {
	if err := (GetTeamRequestMessage{RequestID: "req-1", OwnerID: "user-1"}).Validate(); err != nil {
		t.Fatalf("expected valid get message, got %v", err)
	}
	if err := (GetTeamRequestMessage{RequestID: "req-1"}).Validate(); err == nil {
		t.Fatalf("expected missing owner to fail validation")
	}
	if err := (ListTeamRequestsMessage{}).Validate(); err == nil {
		t.Fatalf("expected missing owner to fail validation")
	}
	if err := (SearchUsersMessage{Query: "  "}).Validate(); err == nil {
		t.Fatalf("expected blank query to fail validation")
	}
	if err := (ValidateTeamNameMessage{Name: "Finance Ops"}).Validate(); err != nil {
		t.Fatalf("expected valid name message, got %v", err)
	}
}
