package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SubmitTeamRequestMessage]   = (*SubmitTeamRequestCommand)(nil)
	_ gocmd.Commander[ProvisionTeamMessage]       = (*ProvisionTeamCommand)(nil)
	_ gocmd.Commander[UpdateConfigurationMessage] = (*UpdateConfigurationCommand)(nil)
)
