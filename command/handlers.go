package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/leeford/team-request-app/core"
)

type MutatingService interface {
	SubmitRequest(ctx context.Context, in core.SubmitRequestInput) (core.TeamRequest, error)
	Provision(ctx context.Context, requestID string, ownerID string) error
	UpdateConfiguration(ctx context.Context, config core.AppConfig) (core.AppConfig, error)
}

type SubmitTeamRequestCommand struct {
	service MutatingService
}

func NewSubmitTeamRequestCommand(service MutatingService) *SubmitTeamRequestCommand {
	return &SubmitTeamRequestCommand{service: service}
}

func (c *SubmitTeamRequestCommand) Execute(ctx context.Context, msg SubmitTeamRequestMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: submit request service is required")
	}
	out, err := c.service.SubmitRequest(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ProvisionTeamCommand struct {
	service MutatingService
}

func NewProvisionTeamCommand(service MutatingService) *ProvisionTeamCommand {
	return &ProvisionTeamCommand{service: service}
}

func (c *ProvisionTeamCommand) Execute(ctx context.Context, msg ProvisionTeamMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provision service is required")
	}
	return c.service.Provision(ctx, msg.RequestID, msg.OwnerID)
}

type UpdateConfigurationCommand struct {
	service MutatingService
}

func NewUpdateConfigurationCommand(service MutatingService) *UpdateConfigurationCommand {
	return &UpdateConfigurationCommand{service: service}
}

func (c *UpdateConfigurationCommand) Execute(ctx context.Context, msg UpdateConfigurationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: configuration service is required")
	}
	out, err := c.service.UpdateConfiguration(ctx, msg.Config)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
