package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetTeamRequest   = "teams.query.request.get"
	TypeListTeamRequests = "teams.query.request.list"
	TypeGetConfiguration = "teams.query.configuration.get"
	TypeSearchUsers      = "teams.query.users.search"
	TypeValidateTeamName = "teams.query.name.validate"
)

type GetTeamRequestMessage struct {
	RequestID string
	OwnerID   string
}

func (GetTeamRequestMessage) Type() string { return TypeGetTeamRequest }

func (m GetTeamRequestMessage) Validate() error {
	if strings.TrimSpace(m.RequestID) == "" {
		return fmt.Errorf("query: request id is required")
	}
	if strings.TrimSpace(m.OwnerID) == "" {
		return fmt.Errorf("query: owner id is required")
	}
	return nil
}

type ListTeamRequestsMessage struct {
	OwnerID string
}

func (ListTeamRequestsMessage) Type() string { return TypeListTeamRequests }

func (m ListTeamRequestsMessage) Validate() error {
	if strings.TrimSpace(m.OwnerID) == "" {
		return fmt.Errorf("query: owner id is required")
	}
	return nil
}

type GetConfigurationMessage struct{}

func (GetConfigurationMessage) Type() string { return TypeGetConfiguration }

func (GetConfigurationMessage) Validate() error { return nil }

type SearchUsersMessage struct {
	Query string
}

func (SearchUsersMessage) Type() string { return TypeSearchUsers }

func (m SearchUsersMessage) Validate() error {
	if strings.TrimSpace(m.Query) == "" {
		return fmt.Errorf("query: search query is required")
	}
	return nil
}

type ValidateTeamNameMessage struct {
	Name             string
	OnBehalfOfUserID string
}

func (ValidateTeamNameMessage) Type() string { return TypeValidateTeamName }

func (m ValidateTeamNameMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("query: team name is required")
	}
	return nil
}
