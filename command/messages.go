package command

import (
	"fmt"
	"strings"

	"github.com/leeford/team-request-app/core"
)

const (
	TypeSubmitTeamRequest   = "teams.command.request.submit"
	TypeProvisionTeam       = "teams.command.provision.run"
	TypeUpdateConfiguration = "teams.command.configuration.update"
)

type SubmitTeamRequestMessage struct {
	Input core.SubmitRequestInput
}

func (SubmitTeamRequestMessage) Type() string { return TypeSubmitTeamRequest }

func (m SubmitTeamRequestMessage) Validate() error {
	if strings.TrimSpace(m.Input.RequestedByUserID) == "" {
		return fmt.Errorf("command: requesting user id is required")
	}
	if strings.TrimSpace(m.Input.TeamDisplayName) == "" {
		return fmt.Errorf("command: team display name is required")
	}
	if len(m.Input.TeamOwnerIDs) == 0 {
		return fmt.Errorf("command: at least one team owner is required")
	}
	return nil
}

// ProvisionTeamMessage re-runs provisioning for a stored request, typically
// after a dispatch failure left it short of a terminal status.
type ProvisionTeamMessage struct {
	RequestID string
	OwnerID   string
}

func (ProvisionTeamMessage) Type() string { return TypeProvisionTeam }

func (m ProvisionTeamMessage) Validate() error {
	if strings.TrimSpace(m.RequestID) == "" {
		return fmt.Errorf("command: request id is required")
	}
	if strings.TrimSpace(m.OwnerID) == "" {
		return fmt.Errorf("command: owner id is required")
	}
	return nil
}

type UpdateConfigurationMessage struct {
	Config core.AppConfig
}

func (UpdateConfigurationMessage) Type() string { return TypeUpdateConfiguration }

func (m UpdateConfigurationMessage) Validate() error {
	if m.Config.MinimumTeamOwners < 1 {
		return fmt.Errorf("command: minimum team owners must be at least 1")
	}
	if err := m.Config.TeamVisibilityDefault.Validate(); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	return nil
}
