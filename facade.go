package teamrequests

import (
	"fmt"

	teamscommand "github.com/leeford/team-request-app/command"
	teamsquery "github.com/leeford/team-request-app/query"
)

// CommandQueryService is the full surface the facade dispatches against.
// *core.Service satisfies it.
type CommandQueryService interface {
	teamscommand.MutatingService
	teamsquery.TeamRequestReader
	teamsquery.ConfigurationReader
	teamsquery.DirectoryReader
}

type Commands struct {
	SubmitRequest       *teamscommand.SubmitTeamRequestCommand
	ProvisionTeam       *teamscommand.ProvisionTeamCommand
	UpdateConfiguration *teamscommand.UpdateConfigurationCommand
}

type Queries struct {
	GetRequest       *teamsquery.GetTeamRequestQuery
	ListRequests     *teamsquery.ListTeamRequestsQuery
	GetConfiguration *teamsquery.GetConfigurationQuery
	SearchUsers      *teamsquery.SearchUsersQuery
	ValidateTeamName *teamsquery.ValidateTeamNameQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("teamrequests: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SubmitRequest:       teamscommand.NewSubmitTeamRequestCommand(service),
		ProvisionTeam:       teamscommand.NewProvisionTeamCommand(service),
		UpdateConfiguration: teamscommand.NewUpdateConfigurationCommand(service),
	}
	facade.queries = Queries{
		GetRequest:       teamsquery.NewGetTeamRequestQuery(service),
		ListRequests:     teamsquery.NewListTeamRequestsQuery(service),
		GetConfiguration: teamsquery.NewGetConfigurationQuery(service),
		SearchUsers:      teamsquery.NewSearchUsersQuery(service),
		ValidateTeamName: teamsquery.NewValidateTeamNameQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
