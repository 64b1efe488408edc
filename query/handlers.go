package query

import (
	"context"

	"github.com/leeford/team-request-app/core"
)

type TeamRequestReader interface {
	GetRequest(ctx context.Context, id string, ownerID string) (core.TeamRequest, error)
	ListRequests(ctx context.Context, ownerID string) ([]core.TeamRequest, error)
}

type ConfigurationReader interface {
	GetConfiguration(ctx context.Context) (core.AppConfig, error)
}

type DirectoryReader interface {
	SearchUsers(ctx context.Context, query string) ([]core.DirectoryUser, error)
	ValidateTeamName(ctx context.Context, name string, onBehalfOfUserID string) (core.NameValidationResult, error)
}

type GetTeamRequestQuery struct {
	reader TeamRequestReader
}

func NewGetTeamRequestQuery(reader TeamRequestReader) *GetTeamRequestQuery {
	return &GetTeamRequestQuery{reader: reader}
}

func (q *GetTeamRequestQuery) Query(ctx context.Context, msg GetTeamRequestMessage) (core.TeamRequest, error) {
	if q == nil || q.reader == nil {
		return core.TeamRequest{}, queryDependencyError("query: team request reader is required")
	}
	return q.reader.GetRequest(ctx, msg.RequestID, msg.OwnerID)
}

type ListTeamRequestsQuery struct {
	reader TeamRequestReader
}

func NewListTeamRequestsQuery(reader TeamRequestReader) *ListTeamRequestsQuery {
	return &ListTeamRequestsQuery{reader: reader}
}

func (q *ListTeamRequestsQuery) Query(ctx context.Context, msg ListTeamRequestsMessage) ([]core.TeamRequest, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: team request reader is required")
	}
	return q.reader.ListRequests(ctx, msg.OwnerID)
}

type GetConfigurationQuery struct {
	reader ConfigurationReader
}

func NewGetConfigurationQuery(reader ConfigurationReader) *GetConfigurationQuery {
	return &GetConfigurationQuery{reader: reader}
}

func (q *GetConfigurationQuery) Query(ctx context.Context, msg GetConfigurationMessage) (core.AppConfig, error) {
	if q == nil || q.reader == nil {
		return core.AppConfig{}, queryDependencyError("query: configuration reader is required")
	}
	return q.reader.GetConfiguration(ctx)
}

type SearchUsersQuery struct {
	reader DirectoryReader
}

func NewSearchUsersQuery(reader DirectoryReader) *SearchUsersQuery {
	return &SearchUsersQuery{reader: reader}
}

func (q *SearchUsersQuery) Query(ctx context.Context, msg SearchUsersMessage) ([]core.DirectoryUser, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: directory reader is required")
	}
	return q.reader.SearchUsers(ctx, msg.Query)
}

type ValidateTeamNameQuery struct {
	reader DirectoryReader
}

func NewValidateTeamNameQuery(reader DirectoryReader) *ValidateTeamNameQuery {
	return &ValidateTeamNameQuery{reader: reader}
}

func (q *ValidateTeamNameQuery) Query(ctx context.Context, msg ValidateTeamNameMessage) (core.NameValidationResult, error) {
	if q == nil || q.reader == nil {
		return core.NameValidationResult{}, queryDependencyError("query: directory reader is required")
	}
	return q.reader.ValidateTeamName(ctx, msg.Name, msg.OnBehalfOfUserID)
}
