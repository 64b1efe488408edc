package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/leeford/team-request-app/core"
)

var (
	_ gocmd.Querier[GetTeamRequestMessage, core.TeamRequest]            = (*GetTeamRequestQuery)(nil)
	_ gocmd.Querier[ListTeamRequestsMessage, []core.TeamRequest]        = (*ListTeamRequestsQuery)(nil)
	_ gocmd.Querier[GetConfigurationMessage, core.AppConfig]            = (*GetConfigurationQuery)(nil)
	_ gocmd.Querier[SearchUsersMessage, []core.DirectoryUser]           = (*SearchUsersQuery)(nil)
	_ gocmd.Querier[ValidateTeamNameMessage, core.NameValidationResult] = (*ValidateTeamNameQuery)(nil)
)
